package webserver

import (
	"context"
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/config"
)

// ContextKeyDB is the echo context key the request-scoped *gorm.DB handle is
// stored under.
const ContextKeyDB = "db"

var server *WebServer

type WebServer struct {
	cfg  *config.AppConfig
	db   *gorm.DB
	root *echo.Echo
	pub  *echo.Group
	api  *echo.Group
}

// Init builds the global web server: echo instance, serializer, validator,
// recovery, DB injection and the JWT-protected api group.
func Init(cfg *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = &JsoniterSerializer{}
	e.Validator = NewPayloadValidator()

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyDB, db)
			return next(c)
		}
	})

	pub := e.Group("/api/v1")
	api := e.Group("/api/v1")
	api.Use(echojwt.WithConfig(JwtConfig(cfg.Web.JwtSecret)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	server = &WebServer{cfg: cfg, db: db, root: e, pub: pub, api: api}
	return server
}

// Instance returns the global web server.
func Instance() *WebServer {
	return server
}

func (ws *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", ws.cfg.Web.Host, ws.cfg.Web.Port)
	zap.S().Infof("web server listening on %s", addr)
	err := ws.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (ws *WebServer) Shutdown(ctx context.Context) error {
	return ws.root.Shutdown(ctx)
}

// Echo exposes the underlying echo instance (used in tests).
func (ws *WebServer) Echo() *echo.Echo {
	return ws.root
}

// Public route registration, no authentication.

func PubGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.pub.GET(path, h, m...)
}

func PubPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.pub.POST(path, h, m...)
}

// Authenticated api route registration.

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}
