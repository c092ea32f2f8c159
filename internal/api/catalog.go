package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.PubGET("/shops", listShops)
	webserver.PubGET("/categories", listCategories)
	webserver.PubGET("/products", listProducts)
}

// listShops returns active shops only.
func listShops(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Shop{}).Where("state = ?", true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query shops", nil)
	}

	var shops []domain.Shop
	if err := base.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&shops).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query shops", nil)
	}
	return paged(c, shops, total, page, pageSize)
}

func listCategories(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Category{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", nil)
	}

	var categories []domain.Category
	if err := base.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", nil)
	}
	return paged(c, categories, total, page, pageSize)
}

// listProducts supports shop_id and category_id filters. Unknown and
// malformed filter values yield an empty page, not an error.
func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Product{})
	if v := c.QueryParam("shop_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return paged(c, []domain.Product{}, 0, page, pageSize)
		}
		base = base.Where("shop_id = ?", id)
	}
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return paged(c, []domain.Product{}, 0, page, pageSize)
		}
		base = base.Where("category_id = ?", id)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}

	var products []domain.Product
	err := base.Preload("Category").Preload("Shop").
		Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	return paged(c, products, total, page, pageSize)
}
