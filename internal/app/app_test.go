package app

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alex-Easy/diploma-try-2/config"
	"github.com/Alex-Easy/diploma-try-2/internal/domain"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// In-memory sqlite is per connection, keep the pool at one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	a := NewApplication(config.DefaultAppConfig)
	a.OverrideDB(db)
	return a
}

func TestCheckSuperSeedsStaffAccount(t *testing.T) {
	a := newTestApplication(t)
	a.checkSuper()

	var operator domain.User
	if err := a.DB().Where("email = ?", "admin@procurement.local").First(&operator).Error; err != nil {
		t.Fatalf("staff account not created: %v", err)
	}
	if !operator.IsStaff || !operator.EmailVerified {
		t.Errorf("staff flags not set: %+v", operator)
	}
	if operator.Password == "" {
		t.Error("staff account has no password")
	}

	// A second run must not duplicate the account.
	a.checkSuper()
	var count int64
	a.DB().Model(&domain.User{}).Count(&count)
	if count != 1 {
		t.Errorf("users = %d, want 1", count)
	}
}

func TestCheckSuperRepairsDemotedAccount(t *testing.T) {
	a := newTestApplication(t)
	a.checkSuper()

	a.DB().Model(&domain.User{}).Where("email = ?", "admin@procurement.local").
		Update("is_staff", false)

	a.checkSuper()
	var operator domain.User
	if err := a.DB().Where("email = ?", "admin@procurement.local").First(&operator).Error; err != nil {
		t.Fatalf("load staff account: %v", err)
	}
	if !operator.IsStaff {
		t.Error("staff flag not repaired")
	}
}

func TestCheckSettingsSeedsDefaults(t *testing.T) {
	a := newTestApplication(t)
	a.checkSettings()

	var count int64
	a.DB().Model(&domain.SysConfig{}).Count(&count)
	if count != int64(len(defaultSettings)) {
		t.Errorf("settings = %d, want %d", count, len(defaultSettings))
	}

	if got := a.GetSettingsInt64Value("system", "page_size"); got != 20 {
		t.Errorf("page_size = %d, want 20", got)
	}
	if a.GetSettingsBoolValue("smtp", "enabled") {
		t.Error("smtp must be disabled by default")
	}
	if !a.GetSettingsBoolValue("orders", "notify") {
		t.Error("order notifications must be enabled by default")
	}
}

func TestConfigManagerCacheInvalidation(t *testing.T) {
	a := newTestApplication(t)
	a.checkSettings()

	if got := a.GetSettingsStringValue("system", "page_size"); got != "20" {
		t.Fatalf("page_size = %q, want 20", got)
	}

	a.DB().Model(&domain.SysConfig{}).
		Where("type = ? AND name = ?", "system", "page_size").
		Update("value", "50")

	// The cached value survives until the cache is dropped.
	if got := a.GetSettingsStringValue("system", "page_size"); got != "20" {
		t.Fatalf("cached page_size = %q, want 20", got)
	}
	a.ConfigMgr().Invalidate()
	if got := a.GetSettingsStringValue("system", "page_size"); got != "50" {
		t.Errorf("page_size after invalidate = %q, want 50", got)
	}
}
