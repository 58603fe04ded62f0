package repository

import (
	"time"

	"hubln/internal/models"

	"gorm.io/gorm"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(a *models.Announcement) error {
	return r.db.Create(a).Error
}

func (r *AnnouncementRepository) GetByID(id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepository) Update(a *models.Announcement) error {
	return r.db.Save(a).Error
}

func (r *AnnouncementRepository) Delete(id uint) error {
	return r.db.Delete(&models.Announcement{}, id).Error
}

// ListVisible returns active, unexpired announcements, highest priority first.
func (r *AnnouncementRepository) ListVisible(now time.Time) ([]models.Announcement, error) {
	var list []models.Announcement
	err := r.db.Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, now).
		Order("priority DESC, created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *AnnouncementRepository) ListAll() ([]models.Announcement, error) {
	var list []models.Announcement
	err := r.db.Order("created_at DESC").Find(&list).Error
	return list, err
}
