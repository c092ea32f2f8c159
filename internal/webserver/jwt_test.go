package webserver

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
)

const testSecret = "test-secret"

func TestCreateTokenPair(t *testing.T) {
	user := &domain.User{ID: 12345, Email: "buyer@example.com", FirstName: "Ivan", LastName: "Petrov"}

	pair, err := CreateTokenPair(testSecret, user)
	if err != nil {
		t.Fatalf("CreateTokenPair: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("pair = %+v, want both tokens", pair)
	}

	for name, raw := range map[string]string{"access": pair.Access, "refresh": pair.Refresh} {
		claims := new(LoginClaims)
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("%s token invalid: %v", name, err)
		}
		if claims.Subject != "12345" {
			t.Errorf("%s subject = %q, want 12345", name, claims.Subject)
		}
		if claims.Email != "buyer@example.com" {
			t.Errorf("%s email = %q", name, claims.Email)
		}
		if claims.Typ != name {
			t.Errorf("typ = %q, want %q", claims.Typ, name)
		}
	}
}

func TestCurrentUserID(t *testing.T) {
	user := &domain.User{ID: 777, Email: "buyer@example.com"}
	pair, err := CreateTokenPair(testSecret, user)
	if err != nil {
		t.Fatalf("CreateTokenPair: %v", err)
	}

	claims := new(LoginClaims)
	token, err := jwt.ParseWithClaims(pair.Access, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())
	c.Set("user", token)

	if got := CurrentUserID(c); got != 777 {
		t.Errorf("CurrentUserID = %d, want 777", got)
	}
}

func TestCurrentUserIDUnauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

	if got := CurrentUserID(c); got != 0 {
		t.Errorf("CurrentUserID = %d, want 0", got)
	}
}
