package webserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// LoginClaims carries the authenticated identity inside bearer tokens.
type LoginClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Typ   string `json:"typ"`
	jwt.RegisteredClaims
}

// JwtConfig builds the echo-jwt middleware configuration for the api group.
// Missing and invalid tokens both map to 401, not the middleware's default 400.
func JwtConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(LoginClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token").SetInternal(err)
		},
	}
}

// TokenPair is the login response body: a short-lived access token and a
// long-lived refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// CreateTokenPair issues signed access and refresh tokens for a user.
func CreateTokenPair(secret string, user *domain.User) (*TokenPair, error) {
	now := time.Now()
	sign := func(typ string, ttl time.Duration) (string, error) {
		claims := LoginClaims{
			Email: user.Email,
			Name:  fmt.Sprintf("%s %s", user.FirstName, user.LastName),
			Typ:   typ,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   strconv.FormatInt(user.ID, 10),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	}

	access, err := sign("access", accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := sign("refresh", refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// CurrentUserID extracts the authenticated user id from the request token.
// It returns 0 when the route is unauthenticated.
func CurrentUserID(c echo.Context) int64 {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0
	}
	claims, ok := token.Claims.(*LoginClaims)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
