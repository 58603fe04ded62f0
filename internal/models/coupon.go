package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;size:40;not null" json:"code"` // always uppercase
	UserID        uint            `gorm:"not null;index" json:"user_id"`            // creator
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	DiscountType  string          `gorm:"size:20;not null" json:"discount_type"` // percentage | fixed
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	FinalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_price"` // advisory snapshot at creation
	IsUnique      bool            `gorm:"not null" json:"is_unique"`
	MaxUses       *int            `json:"max_uses"`
	CurrentUses   int             `gorm:"not null;default:0" json:"current_uses"`
	IsActive      bool            `gorm:"not null;index" json:"is_active"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Coupon) TableName() string { return "coupons" }

func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}

func (c *Coupon) ExpiredAt(t time.Time) bool {
	return c.ExpiresAt != nil && t.After(*c.ExpiresAt)
}
