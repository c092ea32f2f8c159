package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
)

const configCacheTTL = 30 * time.Second

// ConfigManager reads runtime settings from the sys_config table with a short
// cache, so hot paths do not hit the database on every call.
type ConfigManager struct {
	app *Application

	mu      sync.RWMutex
	values  map[string]string
	expires time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, values: map[string]string{}}
}

func (cm *ConfigManager) load() map[string]string {
	cm.mu.RLock()
	if time.Now().Before(cm.expires) {
		values := cm.values
		cm.mu.RUnlock()
		return values
	}
	cm.mu.RUnlock()

	var rows []domain.SysConfig
	if err := cm.app.DB().Find(&rows).Error; err != nil {
		return cm.values
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Type+"."+row.Name] = row.Value
	}

	cm.mu.Lock()
	cm.values = values
	cm.expires = time.Now().Add(configCacheTTL)
	cm.mu.Unlock()
	return values
}

func (cm *ConfigManager) GetString(category, key string) string {
	return cm.load()[category+"."+key]
}

func (cm *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(cm.load()[category+"."+key])
}

func (cm *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(cm.load()[category+"."+key])
}

// Invalidate drops the cache; the next read reloads from the database.
func (cm *ConfigManager) Invalidate() {
	cm.mu.Lock()
	cm.expires = time.Time{}
	cm.mu.Unlock()
}
