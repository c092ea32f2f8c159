package basket

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/pkg/common"
)

var (
	// ErrQuantityNotPositive rejects zero or negative basket quantities.
	ErrQuantityNotPositive = errors.New("Quantity must be greater than zero")

	// ErrItemsNotFound is returned when a bulk remove matches nothing.
	ErrItemsNotFound = errors.New("Basket items not found")

	// ErrProductNotFound is returned when the referenced product does not exist.
	ErrProductNotFound = errors.New("Product not found")
)

// InsufficientStockError is returned when a requested quantity exceeds the
// product's on-hand stock.
type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for product %d", e.ProductID)
}

// IsInsufficientStock reports whether err is a stock shortfall.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// LineNotFoundError is returned when a bulk update references a line that does
// not exist or belongs to another user.
type LineNotFoundError struct {
	LineID int64
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("Basket item %d not found", e.LineID)
}

// QuantityUpdate is one entry of a bulk quantity overwrite.
type QuantityUpdate struct {
	ID       int64 `json:"id,string"`
	Quantity int64 `json:"quantity"`
}

// Service implements the per-user basket. Every operation is scoped to the
// owning user; lines of other users are invisible to it.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add puts quantity units of a product into the user's basket. An existing
// line for the same product accumulates instead of duplicating. The combined
// quantity is checked against current stock.
func (s *Service) Add(ctx context.Context, userID, productID, quantity int64) (*domain.Basket, error) {
	if quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}

	var line *domain.Basket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		var existing domain.Basket
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > product.Quantity {
				return &InsufficientStockError{ProductID: productID}
			}
			existing = domain.Basket{
				ID:        common.UUIDint64(),
				UserID:    userID,
				ProductID: productID,
				Quantity:  quantity,
			}
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if existing.Quantity+quantity > product.Quantity {
				return &InsufficientStockError{ProductID: productID}
			}
			existing.Quantity += quantity
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}
		line = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// List returns the user's basket lines with product detail embedded.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Basket, error) {
	var lines []domain.Basket
	err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Preload("Product.Shop").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// UpdateQuantities overwrites line quantities in bulk. The whole batch is one
// transaction: the first unknown line or stock shortfall aborts it with no
// partial effect.
func (s *Service) UpdateQuantities(ctx context.Context, userID int64, items []QuantityUpdate) error {
	if len(items) == 0 {
		return ErrItemsNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.Quantity <= 0 {
				return ErrQuantityNotPositive
			}

			var line domain.Basket
			err := tx.Where("id = ? AND user_id = ?", item.ID, userID).First(&line).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &LineNotFoundError{LineID: item.ID}
			} else if err != nil {
				return err
			}

			var product domain.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				return err
			}
			if item.Quantity > product.Quantity {
				return &InsufficientStockError{ProductID: product.ID}
			}

			if err := tx.Model(&domain.Basket{}).Where("id = ?", line.ID).
				Update("quantity", item.Quantity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Remove deletes the given lines if they belong to the user. Matching nothing
// at all is an error.
func (s *Service) Remove(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrItemsNotFound
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&domain.Basket{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrItemsNotFound
	}
	return res.RowsAffected, nil
}
