package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/basket"
	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/mailer"
	"github.com/Alex-Easy/diploma-try-2/internal/order"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/order", listOrders)
	webserver.ApiPOST("/order", createOrder)
}

type orderCreatePayload struct {
	Contact string `json:"contact"`
}

func createOrder(c echo.Context) error {
	var payload orderCreatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order data", nil)
	}
	if payload.Contact == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Contact is required",
			map[string]string{"contact": "required"})
	}
	contactID, err := strconv.ParseInt(payload.Contact, 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID",
			map[string]string{"contact": "invalid"})
	}

	uid := webserver.CurrentUserID(c)
	svc := order.NewService(GetDB(c))
	placed, err := svc.Place(c.Request().Context(), uid, contactID)
	switch {
	case err == nil:
		var user domain.User
		if GetDB(c).First(&user, uid).Error == nil {
			bus.Publish(mailer.TopicOrderCreated, user.Email, placed.ID)
		}
		return created(c, placed)
	case errors.Is(err, order.ErrContactNotFound):
		return fail(c, http.StatusBadRequest, "CONTACT_NOT_FOUND", err.Error(),
			map[string]string{"contact": "not found"})
	case errors.Is(err, order.ErrEmptyBasket):
		return fail(c, http.StatusBadRequest, "EMPTY_BASKET", err.Error(), nil)
	case basket.IsInsufficientStock(err):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to place order", nil)
	}
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Order{}).Where("user_id = ?", webserver.CurrentUserID(c))
	base, err := applyOrderDateFilters(c, base)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse date filter", nil)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", nil)
	}

	var orders []domain.Order
	err = base.Preload("Contact").
		Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&orders).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", nil)
	}
	return paged(c, orders, total, page, pageSize)
}

// applyOrderDateFilters narrows an order query by the since/until query
// params. Dates are parsed leniently (dateparse accepts most formats).
func applyOrderDateFilters(c echo.Context, base *gorm.DB) (*gorm.DB, error) {
	if v := c.QueryParam("since"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return nil, err
		}
		base = base.Where("created_at >= ?", t)
	}
	if v := c.QueryParam("until"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return nil, err
		}
		base = base.Where("created_at <= ?", t)
	}
	return base, nil
}
