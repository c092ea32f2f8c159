package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/mailer"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
	"github.com/Alex-Easy/diploma-try-2/pkg/common"
)

func registerUserRoutes() {
	webserver.PubPOST("/user/register", registerUser)
	webserver.PubPOST("/user/register/confirm", confirmEmail)
	webserver.PubPOST("/user/login", loginUser)
	webserver.PubPOST("/user/password_reset", requestPasswordReset)
	webserver.PubPOST("/user/password_reset/confirm", confirmPasswordReset)
	webserver.ApiGET("/user/details", getUserDetails)
	webserver.ApiPUT("/user/details", updateUserDetails)
}

// normalizeEmail is applied to every email taken from a request body, so a
// padded or cased email always matches the stored form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registerPayload struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Position  string `json:"position"`
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration data", nil)
	}
	payload.Email = normalizeEmail(payload.Email)
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	email := payload.Email
	var count int64
	if err := GetDB(c).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", nil)
	}
	if count > 0 {
		return fail(c, http.StatusBadRequest, "DUPLICATE_EMAIL", "A user with this email already exists",
			map[string]string{"email": "duplicate"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", nil)
	}

	user := domain.User{
		ID:                     common.UUIDint64(),
		Email:                  email,
		Password:               string(hash),
		FirstName:              payload.FirstName,
		LastName:               payload.LastName,
		Company:                payload.Company,
		Position:               payload.Position,
		EmailVerificationToken: common.RandomToken(),
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", nil)
	}

	bus.Publish(mailer.TopicUserRegistered, user.Email, user.EmailVerificationToken)
	zap.L().Info("user registered", zap.String("email", user.Email))
	return created(c, user)
}

type emailConfirmPayload struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

func confirmEmail(c echo.Context) error {
	var payload emailConfirmPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse confirmation data", nil)
	}
	payload.Email = normalizeEmail(payload.Email)
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	var user domain.User
	err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}

	if user.EmailVerificationToken == "" || user.EmailVerificationToken != payload.Token {
		return fail(c, http.StatusBadRequest, "INVALID_TOKEN", "Invalid verification token", nil)
	}

	updates := map[string]interface{}{
		"email_verified":           true,
		"email_verification_token": "",
	}
	if err := GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to verify email", nil)
	}
	return ok(c, map[string]interface{}{"message": "Email verified"})
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func loginUser(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login data", nil)
	}
	payload.Email = normalizeEmail(payload.Email)
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	var user domain.User
	err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
	}

	tokens, err := webserver.CreateTokenPair(appConfig.Web.JwtSecret, &user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", nil)
	}

	GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())
	return ok(c, tokens)
}

type passwordResetPayload struct {
	Email string `json:"email" validate:"required,email"`
}

func requestPasswordReset(c echo.Context) error {
	var payload passwordResetPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reset request", nil)
	}
	payload.Email = normalizeEmail(payload.Email)
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	var user domain.User
	err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}

	token := common.RandomToken()
	if err := GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).
		Update("password_reset_token", token).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store reset token", nil)
	}

	bus.Publish(mailer.TopicUserPasswordReset, user.Email, token)
	return ok(c, map[string]interface{}{"message": "Password reset token sent"})
}

type passwordResetConfirmPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Token    string `json:"token" validate:"required"`
}

func confirmPasswordReset(c echo.Context) error {
	var payload passwordResetConfirmPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reset confirmation", nil)
	}
	payload.Email = normalizeEmail(payload.Email)
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	var user domain.User
	err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}

	if user.PasswordResetToken == "" || user.PasswordResetToken != payload.Token {
		return fail(c, http.StatusBadRequest, "INVALID_TOKEN", "Invalid password reset token", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", nil)
	}

	updates := map[string]interface{}{
		"password":             string(hash),
		"password_reset_token": "",
	}
	if err := GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update password", nil)
	}
	return ok(c, map[string]interface{}{"message": "Password updated"})
}

func getUserDetails(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}
	return ok(c, user)
}

type userEditPayload struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Company   *string `json:"company"`
	Position  *string `json:"position"`
}

func updateUserDetails(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}

	var payload userEditPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile data", nil)
	}
	if payload.Email != nil {
		*payload.Email = normalizeEmail(*payload.Email)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	updates := map[string]interface{}{}
	if payload.Email != nil {
		email := *payload.Email
		var count int64
		GetDB(c).Model(&domain.User{}).Where("email = ? AND id != ?", email, user.ID).Count(&count)
		if count > 0 {
			return fail(c, http.StatusBadRequest, "DUPLICATE_EMAIL", "A user with this email already exists",
				map[string]string{"email": "duplicate"})
		}
		updates["email"] = email
	}
	if payload.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", nil)
		}
		updates["password"] = string(hash)
	}
	if payload.FirstName != nil {
		updates["first_name"] = *payload.FirstName
	}
	if payload.LastName != nil {
		updates["last_name"] = *payload.LastName
	}
	if payload.Company != nil {
		updates["company"] = *payload.Company
	}
	if payload.Position != nil {
		updates["position"] = *payload.Position
	}

	if len(updates) > 0 {
		if err := GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", nil)
		}
	}

	var fresh domain.User
	if err := GetDB(c).First(&fresh, user.ID).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reload profile", nil)
	}
	return ok(c, fresh)
}
