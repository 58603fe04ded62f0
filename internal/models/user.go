package models

import (
	"time"

	"hubln/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:120;not null" json:"name"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:20;not null;index" json:"role"` // USER | ADMIN
	ReferralCode    string         `gorm:"uniqueIndex;size:8;not null" json:"referral_code"`
	ReferredBy      *string        `gorm:"size:8;index" json:"referred_by"` // another user's ReferralCode, not a foreign key
	Document        string         `gorm:"size:14" json:"document"`         // CPF or CNPJ digits
	Phone           string         `gorm:"size:20" json:"phone"`
	PixKey          string         `gorm:"size:140" json:"pix_key"`
	AsaasCustomerID string         `gorm:"size:64" json:"-"`
	IsActive        bool           `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// ReferrerCode returns the code of the user who referred u, or "" when none.
func (u *User) ReferrerCode() string {
	if u.ReferredBy == nil {
		return ""
	}
	return *u.ReferredBy
}
