package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Submission is a priced batch of end-customer records under one product.
// UnitPrice is resolved once at creation and never changes.
type Submission struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	CouponID      *uint           `gorm:"index" json:"coupon_id"`
	Title         string          `gorm:"size:200;not null" json:"title"`
	Notes         string          `gorm:"type:text" json:"notes"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	IsPaid        bool            `gorm:"not null;index" json:"is_paid"`
	PaymentID     string          `gorm:"size:64;index" json:"payment_id"`
	PaymentStatus string          `gorm:"size:30" json:"payment_status"`
	PaymentURL    string          `gorm:"size:512" json:"payment_url"`
	QRCodeData    string          `gorm:"type:text" json:"qr_code_data"`
	PaidAt        *time.Time      `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Clients []SubmissionClient `gorm:"foreignKey:SubmissionID" json:"clients,omitempty"`
	Product *Product           `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	User    *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Submission) TableName() string { return "submissions" }

type SubmissionClient struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Document     string    `gorm:"size:14;not null;index" json:"document"`
	Status       string    `gorm:"size:20;not null;index" json:"status"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (SubmissionClient) TableName() string { return "submission_clients" }
