package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/pkg/common"
)

// checkSuper ensures a staff account exists for the admin tooling. The
// default password must be changed after first login.
func (a *Application) checkSuper() {
	const superEmail = "admin@procurement.local"
	const defaultPassword = "procurement"

	var operator domain.User
	err := a.gormDB.Where("email = ?", superEmail).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, herr := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			ID:            common.UUIDint64(),
			Email:         superEmail,
			Password:      string(hash),
			FirstName:     "administrator",
			EmailVerified: true,
			IsStaff:       true,
			LastLogin:     time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default staff account", zap.Error(err))
		} else {
			zap.L().Info("initialized default staff account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query staff account", zap.Error(err))
		return
	}

	if operator.IsStaff && strings.TrimSpace(operator.Password) != "" {
		return
	}

	updates := map[string]interface{}{
		"is_staff":   true,
		"updated_at": time.Now(),
	}
	if strings.TrimSpace(operator.Password) == "" {
		hash, herr := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if herr == nil {
			updates["password"] = string(hash)
		}
	}
	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair staff account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default staff account", zap.String("email", superEmail))
}

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var defaultSettings = []settingSchema{
	{Key: "system.page_size", Default: "20", Description: "Default page size for list endpoints"},
	{Key: "smtp.enabled", Default: "false", Description: "Deliver transactional mail over SMTP"},
	{Key: "orders.notify", Default: "true", Description: "Send order confirmation mail"},
	{Key: "import.max_goods", Default: "10000", Description: "Maximum goods accepted per price list"},
}

// checkSettings initializes missing sys_config rows with their defaults.
func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}

		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}
