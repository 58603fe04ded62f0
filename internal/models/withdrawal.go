package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal groups the commissions released together by one withdrawal request.
type Withdrawal struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Reference       string          `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CommissionCount int             `gorm:"not null" json:"commission_count"`
	PixKey          string          `gorm:"size:140" json:"pix_key"`
	Status          string          `gorm:"size:20;not null;index" json:"status"` // requested | paid
	PaidAt          *time.Time      `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	User        *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Commissions []CommissionEarning `gorm:"foreignKey:WithdrawalID" json:"commissions,omitempty"`
}

func (Withdrawal) TableName() string { return "withdrawals" }
