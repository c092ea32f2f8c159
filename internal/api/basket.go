package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Alex-Easy/diploma-try-2/internal/basket"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
)

func registerBasketRoutes() {
	webserver.ApiGET("/basket", getBasket)
	webserver.ApiPOST("/basket", addToBasket)
	webserver.ApiPUT("/basket", updateBasket)
	webserver.ApiDELETE("/basket", removeFromBasket)
}

type basketAddPayload struct {
	Product  int64 `json:"product" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required"`
}

func addToBasket(c echo.Context) error {
	var payload basketAddPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse basket item", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	svc := basket.NewService(GetDB(c))
	line, err := svc.Add(c.Request().Context(), webserver.CurrentUserID(c), payload.Product, payload.Quantity)
	switch {
	case err == nil:
		return created(c, line)
	case errors.Is(err, basket.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	case errors.Is(err, basket.ErrQuantityNotPositive):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case basket.IsInsufficientStock(err):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add basket item", nil)
	}
}

func getBasket(c echo.Context) error {
	svc := basket.NewService(GetDB(c))
	lines, err := svc.List(c.Request().Context(), webserver.CurrentUserID(c))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query basket", nil)
	}
	return ok(c, lines)
}

type basketUpdatePayload struct {
	Items []basket.QuantityUpdate `json:"items" validate:"required,min=1"`
}

func updateBasket(c echo.Context) error {
	var payload basketUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse basket update", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	svc := basket.NewService(GetDB(c))
	err := svc.UpdateQuantities(c.Request().Context(), webserver.CurrentUserID(c), payload.Items)

	var lineErr *basket.LineNotFoundError
	switch {
	case err == nil:
		return ok(c, map[string]interface{}{"updated": len(payload.Items)})
	case errors.As(err, &lineErr):
		return fail(c, http.StatusNotFound, "BASKET_ITEM_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, basket.ErrQuantityNotPositive):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case basket.IsInsufficientStock(err):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update basket", nil)
	}
}

type basketRemovePayload struct {
	// Line ids are serialized as strings, like every snowflake id in the API.
	Items []string `json:"items" validate:"required,min=1"`
}

func removeFromBasket(c echo.Context) error {
	var payload basketRemovePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse basket removal", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	ids := make([]int64, 0, len(payload.Items))
	for _, raw := range payload.Items {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid basket item ID", nil)
		}
		ids = append(ids, id)
	}

	svc := basket.NewService(GetDB(c))
	deleted, err := svc.Remove(c.Request().Context(), webserver.CurrentUserID(c), ids)
	switch {
	case err == nil:
		return ok(c, map[string]interface{}{"deleted": deleted})
	case errors.Is(err, basket.ErrItemsNotFound):
		return fail(c, http.StatusBadRequest, "BASKET_ITEMS_NOT_FOUND", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove basket items", nil)
	}
}
