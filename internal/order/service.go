package order

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/basket"
	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/pkg/common"
)

var (
	// ErrEmptyBasket rejects placement when the user has nothing to order.
	ErrEmptyBasket = errors.New("Basket is empty")

	// ErrContactNotFound is returned when the contact does not exist or
	// belongs to another user.
	ErrContactNotFound = errors.New("Contact not found")
)

// Service turns a basket into an order. Placement is a single transaction:
// validate all lines, reserve stock, create the order, clear the basket.
// Any failure rolls the whole unit back.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Place creates one order for the user's entire basket, shipping to contactID.
//
// Stock is reserved with a guarded decrement (quantity = quantity - n only
// where quantity >= n), so concurrent placements against the same product
// cannot jointly overdraw it: the loser sees zero rows affected and the
// transaction rolls back.
func (s *Service) Place(ctx context.Context, userID, contactID int64) (*domain.Order, error) {
	var placed *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact domain.Contact
		err := tx.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		} else if err != nil {
			return err
		}

		var lines []domain.Basket
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyBasket
		}

		for _, line := range lines {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND quantity >= ?", line.ProductID, line.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &basket.InsufficientStockError{ProductID: line.ProductID}
			}
		}

		row := domain.Order{
			ID:        common.UUIDint64(),
			UserID:    userID,
			ContactID: &contact.ID,
			Status:    domain.OrderStatusCreated,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&domain.Basket{}).Error; err != nil {
			return err
		}

		placed = &row
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.Int64("user_id", userID))
	return placed, nil
}
