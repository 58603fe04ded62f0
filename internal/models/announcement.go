package models

import "time"

type Announcement struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Content       string     `gorm:"type:text" json:"content"`
	ImageURL      string     `gorm:"size:512" json:"image_url"`
	ImagePublicID string     `gorm:"size:255" json:"-"`
	IsActive      bool       `gorm:"not null;index" json:"is_active"`
	Priority      int        `gorm:"not null;default:0" json:"priority"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedBy     uint       `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Announcement) TableName() string { return "announcements" }
