package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalGiroRequest is a working-capital loan request reviewed by admins.
type CapitalGiroRequest struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	CompanyName     string          `gorm:"size:200;not null" json:"company_name"`
	Document        string          `gorm:"size:14;not null" json:"document"`
	RequestedAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"requested_amount"`
	MonthlyRevenue  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"monthly_revenue"`
	Purpose         string          `gorm:"type:text" json:"purpose"`
	Phone           string          `gorm:"size:20" json:"phone"`
	Status          string          `gorm:"size:20;not null;index" json:"status"`
	AdminNotes      string          `gorm:"type:text" json:"admin_notes"`
	ReviewedBy      *uint           `json:"reviewed_by"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CapitalGiroRequest) TableName() string { return "capital_giro_requests" }
