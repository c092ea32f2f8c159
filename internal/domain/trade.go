package domain

import "time"

// Basket is one pending purchase line. One row per (user, product) pair.
type Basket struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `gorm:"index;uniqueIndex:idx_basket_user_product" json:"user_id,string"`
	ProductID int64     `gorm:"uniqueIndex:idx_basket_user_product" json:"product_id"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `json:"product,omitempty"`
}

func (Basket) TableName() string {
	return "baskets"
}

const OrderStatusCreated = "created"

// Order references the contact it ships to. The contact reference survives
// contact deletion as NULL.
type Order struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `gorm:"index" json:"user_id,string"`
	ContactID *int64    `gorm:"index" json:"contact_id,string,omitempty"`
	Status    string    `gorm:"size:50;default:created" json:"status"`
	CreatedAt time.Time `json:"created_at"`

	Contact *Contact `gorm:"constraint:OnDelete:SET NULL" json:"contact,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
