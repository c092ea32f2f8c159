package domain

import "time"

// Shop owns products. State gates visibility in the public shop list and
// whether the partner currently accepts orders. There is no column default
// for State; create sites set it explicitly.
type Shop struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255" json:"name" form:"name"`
	Url       string    `gorm:"size:255" json:"url" form:"url"`
	State     bool      `json:"state" form:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Shop) TableName() string {
	return "shops"
}

// Category id is assigned by the price-list documents, never auto-generated.
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:255" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// Product id is assigned by the price-list documents; imports upsert by id.
// Quantity is on-hand stock and must never go negative.
type Product struct {
	ID         int64                  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CategoryID int64                  `gorm:"index" json:"category_id"`
	ShopID     int64                  `gorm:"index" json:"shop_id"`
	Name       string                 `gorm:"size:255" json:"name"`
	Model      string                 `gorm:"size:255" json:"model"`
	Price      float64                `json:"price"`
	PriceRrc   float64                `json:"price_rrc"`
	Quantity   int64                  `json:"quantity"`
	Parameters map[string]interface{} `gorm:"serializer:json" json:"parameters"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`

	Category *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Shop     *Shop     `gorm:"constraint:OnDelete:CASCADE" json:"shop,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
