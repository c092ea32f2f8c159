package pricelist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
)

// CategoryNotFoundError reports a good that references a category neither
// declared in the document nor already present in the catalog. Imports fail
// hard on this instead of inventing a placeholder category.
type CategoryNotFoundError struct {
	CategoryID int64
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("Category with id %d not found", e.CategoryID)
}

// GoodsLimitError reports a document exceeding the configured goods cap.
type GoodsLimitError struct {
	Count int
	Limit int64
}

func (e *GoodsLimitError) Error() string {
	return fmt.Sprintf("Price list has %d goods, the limit is %d", e.Count, e.Limit)
}

// IsGoodsLimit reports whether err is a goods-cap rejection.
func IsGoodsLimit(err error) bool {
	var gle *GoodsLimitError
	return errors.As(err, &gle)
}

// ImportResult summarizes a finished import.
type ImportResult struct {
	Shop     *domain.Shop `json:"shop"`
	Created  int          `json:"created"`
	Updated  int          `json:"updated"`
	Imported int          `json:"imported"`
}

// Importer upserts shops, categories and products from price-list documents.
// Each good is committed independently: a failure partway through leaves the
// goods already processed in place.
type Importer struct {
	db *gorm.DB

	// MaxGoods caps the number of goods accepted per document. Zero means
	// no cap. Fed by the import.max_goods setting.
	MaxGoods int64
}

func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// ImportDocument imports a full price list: get-or-create the shop by name,
// get-or-create every declared category, then upsert each good by id.
func (im *Importer) ImportDocument(ctx context.Context, doc *Document) (*ImportResult, error) {
	if im.MaxGoods > 0 && int64(len(doc.Goods)) > im.MaxGoods {
		return nil, &GoodsLimitError{Count: len(doc.Goods), Limit: im.MaxGoods}
	}

	db := im.db.WithContext(ctx)

	shop := domain.Shop{Name: doc.Shop, State: true}
	if err := db.Where("name = ?", doc.Shop).FirstOrCreate(&shop).Error; err != nil {
		return nil, err
	}

	declared := make(map[int64]string, len(doc.Categories))
	for _, cat := range doc.Categories {
		declared[cat.ID] = cat.Name
		row := domain.Category{ID: cat.ID, Name: cat.Name}
		if err := db.Where("id = ?", cat.ID).FirstOrCreate(&row).Error; err != nil {
			return nil, err
		}
	}

	result := &ImportResult{Shop: &shop}
	for i := range doc.Goods {
		good := &doc.Goods[i]
		if _, ok := declared[good.Category]; !ok {
			var count int64
			if err := db.Model(&domain.Category{}).Where("id = ?", good.Category).Count(&count).Error; err != nil {
				return result, err
			}
			if count == 0 {
				return result, &CategoryNotFoundError{CategoryID: good.Category}
			}
		}
		if err := im.upsertGood(db, shop.ID, good, result); err != nil {
			return result, err
		}
	}

	zap.L().Info("price list imported",
		zap.String("shop", shop.Name),
		zap.Int("categories", len(doc.Categories)),
		zap.Int("goods", result.Imported))
	return result, nil
}

// ImportGoods imports a goods-only list into an existing shop. Every
// referenced category must already exist.
func (im *Importer) ImportGoods(ctx context.Context, shopID int64, goods []Good) (*ImportResult, error) {
	if im.MaxGoods > 0 && int64(len(goods)) > im.MaxGoods {
		return nil, &GoodsLimitError{Count: len(goods), Limit: im.MaxGoods}
	}

	db := im.db.WithContext(ctx)

	var shop domain.Shop
	if err := db.First(&shop, shopID).Error; err != nil {
		return nil, err
	}

	result := &ImportResult{Shop: &shop}
	for i := range goods {
		good := &goods[i]
		var count int64
		if err := db.Model(&domain.Category{}).Where("id = ?", good.Category).Count(&count).Error; err != nil {
			return result, err
		}
		if count == 0 {
			return result, &CategoryNotFoundError{CategoryID: good.Category}
		}
		if err := im.upsertGood(db, shop.ID, good, result); err != nil {
			return result, err
		}
	}

	zap.L().Info("goods list imported",
		zap.String("shop", shop.Name),
		zap.Int("goods", result.Imported))
	return result, nil
}

func (im *Importer) upsertGood(db *gorm.DB, shopID int64, good *Good, result *ImportResult) error {
	params := good.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}
	row := domain.Product{
		ID:         good.ID,
		CategoryID: good.Category,
		ShopID:     shopID,
		Name:       good.Name,
		Model:      good.Model,
		Price:      good.Price,
		PriceRrc:   good.PriceRrc,
		Quantity:   good.Quantity,
		Parameters: params,
	}

	var existing int64
	if err := db.Model(&domain.Product{}).Where("id = ?", good.ID).Count(&existing).Error; err != nil {
		return err
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return err
	}

	if existing > 0 {
		result.Updated++
	} else {
		result.Created++
	}
	result.Imported++
	return nil
}

// IsCategoryNotFound reports whether err is a missing-category import failure.
func IsCategoryNotFound(err error) bool {
	var cnf *CategoryNotFoundError
	return errors.As(err, &cnf)
}
