package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionEarning is the margin owed to a buyer's referrer for one paid submission.
// The unique index on SubmissionID makes creation idempotent at the data layer.
type CommissionEarning struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	SubmissionID      uint            `gorm:"not null;uniqueIndex" json:"submission_id"`
	BeneficiaryUserID uint            `gorm:"not null;index" json:"beneficiary_user_id"`
	BuyerUserID       uint            `gorm:"not null;index" json:"buyer_user_id"`
	ProductID         uint            `gorm:"not null" json:"product_id"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CommissionAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_amount"`
	Status            string          `gorm:"size:20;not null;index" json:"status"` // pending | withdrawn
	AvailableAt       time.Time       `gorm:"not null;index" json:"available_at"`
	WithdrawnAt       *time.Time      `json:"withdrawn_at"`
	WithdrawalID      *uint           `gorm:"index" json:"withdrawal_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Buyer   *User    `gorm:"foreignKey:BuyerUserID" json:"buyer,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CommissionEarning) TableName() string { return "commission_earnings" }
