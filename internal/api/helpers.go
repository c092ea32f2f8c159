package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
)

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextKeyDB).(*gorm.DB)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"msg":  "ok",
		"data": data,
	})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"code": 0,
		"msg":  "ok",
		"data": data,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return ok(c, map[string]interface{}{
		"items":     rows,
		"count":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	body := map[string]interface{}{
		"code":  code,
		"error": msg,
	}
	if detail != nil {
		body["detail"] = detail
	}
	return c.JSON(status, body)
}

// failValidation maps go-playground field errors to a field->tag detail map.
func failValidation(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request fields", fields)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
}

// parsePagination reads page/page_size query params. The default page size
// comes from the system.page_size setting.
func parsePagination(c echo.Context) (page int, pageSize int) {
	page = 1
	pageSize = 20
	if settings != nil {
		if v := settings.GetSettingsInt64Value("system", "page_size"); v > 0 {
			pageSize = int(v)
		}
	}
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// currentUser loads the authenticated user row. A token whose subject no
// longer exists yields gorm.ErrRecordNotFound.
func currentUser(c echo.Context) (*domain.User, error) {
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user domain.User
	if err := GetDB(c).First(&user, uid).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
