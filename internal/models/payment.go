package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment is the local ledger of gateway charges. The submission carries the
// mirror fields the UI reads; this row keeps the raw gateway payload.
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	SubmissionID   uint            `gorm:"not null;index" json:"submission_id"`
	Provider       string          `gorm:"size:30;not null" json:"provider"`
	ProviderRef    string          `gorm:"size:64;uniqueIndex" json:"provider_ref"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status         string          `gorm:"size:30;not null;index" json:"status"`
	IdempotencyKey string          `gorm:"size:64;uniqueIndex" json:"-"`
	RawPayload     datatypes.JSON  `json:"raw_payload,omitempty"`
	DueDate        *time.Time      `json:"due_date"`
	CompletedAt    *time.Time      `json:"completed_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
