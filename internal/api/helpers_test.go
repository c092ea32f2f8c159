package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alex-Easy/diploma-try-2/config"
	"github.com/Alex-Easy/diploma-try-2/internal/app"
	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
	"github.com/Alex-Easy/diploma-try-2/pkg/common"
)

func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// newTestServer wires the full routing stack against an in-memory database.
// Runtime settings are read from the same database through the application
// container.
func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	cfg := config.DefaultAppConfig
	a := app.NewApplication(cfg)
	a.OverrideDB(db)
	ws := webserver.Init(cfg, db)
	InitRouter(cfg, EventBus.New(), a)
	return ws.Echo(), db
}

func seedSetting(t *testing.T, db *gorm.DB, category, name, value string) {
	t.Helper()
	if err := db.Create(&domain.SysConfig{
		ID:    common.UUIDint64(),
		Type:  category,
		Name:  name,
		Value: value,
	}).Error; err != nil {
		t.Fatalf("seed setting: %v", err)
	}
}

func doJSON(e *echo.Echo, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// apiResponse covers both envelope shapes: code is 0 on success and a string
// code on failure.
type apiResponse struct {
	Code   json.RawMessage `json:"code"`
	Msg    string          `json:"msg"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
	Detail json.RawMessage `json:"detail"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	resp := decodeResponse(t, rec)
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("decode data %q: %v", string(resp.Data), err)
	}
}

type pagedData struct {
	Items json.RawMessage `json:"items"`
	Count int64           `json:"count"`
	Page  int             `json:"page"`
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := domain.User{
		ID:            common.UUIDint64(),
		Email:         email,
		Password:      string(hash),
		EmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func authToken(t *testing.T, user *domain.User) string {
	t.Helper()
	tokens, err := webserver.CreateTokenPair(config.DefaultAppConfig.Web.JwtSecret, user)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return tokens.Access
}

// seedCatalog creates one category, one shop and one product with stock 10.
func seedCatalog(t *testing.T, db *gorm.DB) *domain.Shop {
	t.Helper()
	if err := db.Create(&domain.Category{ID: 224, Name: "Smartphones"}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	shop := domain.Shop{Name: "Svyaznoy", State: true}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	product := domain.Product{
		ID:         4216292,
		CategoryID: 224,
		ShopID:     shop.ID,
		Name:       "Smartphone",
		Quantity:   10,
		Parameters: map[string]interface{}{},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &shop
}

func seedContact(t *testing.T, db *gorm.DB, userID int64) *domain.Contact {
	t.Helper()
	contact := domain.Contact{
		ID:     common.UUIDint64(),
		UserID: userID,
		City:   "Moscow",
		Street: "Tverskaya",
		House:  "1",
		Phone:  "+70000000000",
	}
	if err := db.Create(&contact).Error; err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return &contact
}
