package api

import (
	"github.com/asaskevich/EventBus"

	"github.com/Alex-Easy/diploma-try-2/config"
)

// SettingsReader exposes the runtime settings the handlers consult.
type SettingsReader interface {
	GetSettingsInt64Value(category, key string) int64
}

var (
	appConfig *config.AppConfig
	bus       EventBus.Bus
	settings  SettingsReader
)

// InitRouter registers every HTTP route on the initialized web server.
func InitRouter(cfg *config.AppConfig, b EventBus.Bus, s SettingsReader) {
	appConfig = cfg
	bus = b
	settings = s

	registerUserRoutes()
	registerContactRoutes()
	registerCatalogRoutes()
	registerBasketRoutes()
	registerOrderRoutes()
	registerPartnerRoutes()
	registerSystemRoutes()
}
