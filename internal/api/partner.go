package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/guonaihong/gout"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/pricelist"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
)

func registerPartnerRoutes() {
	webserver.ApiPOST("/partner/update", partnerUpdate)
	webserver.ApiPOST("/partner/pricelist/:shop_id", partnerUploadPricelist)
	webserver.ApiGET("/partner/pricelist/:shop_id/export", partnerExportPricelist)
	webserver.ApiGET("/partner/state", getPartnerState)
	webserver.ApiPOST("/partner/state", setPartnerState)
	webserver.ApiGET("/partner/orders", listPartnerOrders)
	webserver.ApiGET("/partner/orders/export", exportPartnerOrders)
}

type partnerUpdatePayload struct {
	Filename string `json:"filename"`
	Url      string `json:"url"`
}

// partnerUpdate imports a full price-list document. The document arrives as a
// multipart upload, as a filename inside the configured data directory, or as
// a URL fetched over HTTP.
func partnerUpdate(c echo.Context) error {
	data, handled := readPricelistSource(c)
	if handled {
		return nil
	}

	doc, err := pricelist.ParseDocument(data)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PRICELIST", err.Error(), nil)
	}

	result, err := newImporter(c).ImportDocument(c.Request().Context(), doc)
	switch {
	case err == nil:
		return ok(c, result)
	case pricelist.IsCategoryNotFound(err):
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", err.Error(), nil)
	case pricelist.IsGoodsLimit(err):
		return fail(c, http.StatusBadRequest, "PRICELIST_TOO_LARGE", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "IMPORT_FAILED", "Price list import failed", nil)
	}
}

// readPricelistSource resolves the document bytes from one of the three
// transports. handled=true means an error response was already written.
func readPricelistSource(c echo.Context) (data []byte, handled bool) {
	if fh, err := c.FormFile("file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			_ = fail(c, http.StatusBadRequest, "INVALID_UPLOAD", "Unable to open uploaded file", nil)
			return nil, true
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			_ = fail(c, http.StatusBadRequest, "INVALID_UPLOAD", "Unable to read uploaded file", nil)
			return nil, true
		}
		return data, false
	}

	var payload partnerUpdatePayload
	if err := c.Bind(&payload); err != nil {
		_ = fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse update request", nil)
		return nil, true
	}

	switch {
	case payload.Filename != "":
		path, err := resolveDataFile(appConfig.System.Datadir, payload.Filename)
		if err != nil {
			_ = fail(c, http.StatusBadRequest, "INVALID_FILENAME", err.Error(), nil)
			return nil, true
		}
		data, err := os.ReadFile(path)
		if err != nil {
			_ = fail(c, http.StatusNotFound, "FILE_NOT_FOUND",
				fmt.Sprintf("Price list file %s not found", payload.Filename), nil)
			return nil, true
		}
		return data, false

	case payload.Url != "":
		var body []byte
		err := gout.GET(payload.Url).SetTimeout(30 * time.Second).BindBody(&body).Do()
		if err != nil {
			zap.L().Warn("price list fetch failed", zap.String("url", payload.Url), zap.Error(err))
			_ = fail(c, http.StatusBadRequest, "FETCH_FAILED", "Unable to fetch price list from url", nil)
			return nil, true
		}
		return body, false

	default:
		_ = fail(c, http.StatusBadRequest, "MISSING_SOURCE",
			"Provide a price list as file upload, filename or url", nil)
		return nil, true
	}
}

// newImporter builds a price-list importer capped by the import.max_goods
// setting.
func newImporter(c echo.Context) *pricelist.Importer {
	importer := pricelist.NewImporter(GetDB(c))
	if settings != nil {
		importer.MaxGoods = settings.GetSettingsInt64Value("import", "max_goods")
	}
	return importer
}

// resolveDataFile confines filename references to the data directory. The
// original design accepted arbitrary caller-supplied paths; that traversal
// hole is closed here.
func resolveDataFile(datadir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", errors.New("filename must be relative to the data directory")
	}
	clean := filepath.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", errors.New("invalid price list filename")
	}
	return filepath.Join(datadir, clean), nil
}

// partnerUploadPricelist imports a goods-only document into an existing shop.
func partnerUploadPricelist(c echo.Context) error {
	shopID, err := parseIDParam(c, "shop_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "MISSING_FILE", "Price list file is required", nil)
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_UPLOAD", "Unable to open uploaded file", nil)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_UPLOAD", "Unable to read uploaded file", nil)
	}

	goods, err := pricelist.ParseGoods(data)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PRICELIST", err.Error(), nil)
	}

	result, err := newImporter(c).ImportGoods(c.Request().Context(), shopID, goods)
	switch {
	case err == nil:
		return ok(c, result)
	case pricelist.IsCategoryNotFound(err):
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", err.Error(), nil)
	case pricelist.IsGoodsLimit(err):
		return fail(c, http.StatusBadRequest, "PRICELIST_TOO_LARGE", err.Error(), nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found", nil)
	default:
		return fail(c, http.StatusInternalServerError, "IMPORT_FAILED", "Price list import failed", nil)
	}
}

// partnerExportPricelist streams a shop's products as CSV.
func partnerExportPricelist(c echo.Context) error {
	shopID, err := parseIDParam(c, "shop_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}

	var shop domain.Shop
	if err := GetDB(c).First(&shop, shopID).Error; err != nil {
		return fail(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found", nil)
	}

	var products []domain.Product
	if err := GetDB(c).Where("shop_id = ?", shopID).Order("id ASC").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}

	goods := make([]pricelist.Good, 0, len(products))
	for _, p := range products {
		goods = append(goods, pricelist.Good{
			ID:       p.ID,
			Category: p.CategoryID,
			Name:     p.Name,
			Model:    p.Model,
			Price:    p.Price,
			PriceRrc: p.PriceRrc,
			Quantity: p.Quantity,
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="pricelist-%d.csv"`, shopID))
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&goods, c.Response())
}

type partnerStatePayload struct {
	ShopID int64  `json:"shop_id" validate:"required"`
	State  string `json:"state" validate:"required"`
}

func getPartnerState(c echo.Context) error {
	raw := c.QueryParam("shop_id")
	if raw == "" {
		return fail(c, http.StatusBadRequest, "MISSING_SHOP_ID", "shop_id query parameter is required", nil)
	}
	shopID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}

	var shop domain.Shop
	if err := GetDB(c).First(&shop, shopID).Error; err != nil {
		return fail(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found", nil)
	}

	state := "off"
	if shop.State {
		state = "on"
	}
	return ok(c, map[string]interface{}{"shop_id": shop.ID, "name": shop.Name, "state": state})
}

func setPartnerState(c echo.Context) error {
	var payload partnerStatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse state request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}
	if payload.State != "on" && payload.State != "off" {
		return fail(c, http.StatusBadRequest, "INVALID_STATE", `State must be "on" or "off"`, nil)
	}

	var shop domain.Shop
	if err := GetDB(c).First(&shop, payload.ShopID).Error; err != nil {
		return fail(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found", nil)
	}

	if err := GetDB(c).Model(&domain.Shop{}).Where("id = ?", shop.ID).
		Update("state", payload.State == "on").Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update shop state", nil)
	}
	return ok(c, map[string]interface{}{"shop_id": shop.ID, "state": payload.State})
}

// listPartnerOrders returns orders that still reference a contact; orders
// whose contact was deleted carry no shipping address and are skipped.
func listPartnerOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Order{}).Where("contact_id IS NOT NULL")
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

// exportPartnerOrders streams the partner order list as an xlsx workbook.
func exportPartnerOrders(c echo.Context) error {
	base := GetDB(c).Model(&domain.Order{}).Where("contact_id IS NOT NULL")
	base, err := applyOrderDateFilters(c, base)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse date filter", nil)
	}

	var orders []domain.Order
	if err := base.Preload("Contact").Order("created_at DESC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", nil)
	}

	const sheet = "Sheet1"
	f := excelize.NewFile()
	headers := []string{"Order ID", "User ID", "Status", "Created", "City", "Street", "House", "Phone"}
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%s1", string(rune('A'+i))), h)
	}
	for row, o := range orders {
		cells := []interface{}{
			o.ID, o.UserID, o.Status, o.CreatedAt.Format(time.RFC3339), "", "", "", "",
		}
		if o.Contact != nil {
			cells[4] = o.Contact.City
			cells[5] = o.Contact.Street
			cells[6] = o.Contact.House
			cells[7] = o.Contact.Phone
		}
		for col, v := range cells {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", string(rune('A'+col)), row+2), v)
		}
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
