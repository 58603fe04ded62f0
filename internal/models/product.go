package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is sold through submissions. Products are disabled, never deleted.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	IsActive    bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// UserProductPrice is the price UserID charges the buyers they referred for ProductID.
type UserProductPrice struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;uniqueIndex:idx_user_product_price" json:"user_id"`
	ProductID   uint            `gorm:"not null;uniqueIndex:idx_user_product_price;index" json:"product_id"`
	CustomPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"custom_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (UserProductPrice) TableName() string { return "user_product_prices" }
