package repository

import (
	"hubln/internal/models"

	"gorm.io/gorm"
)

type CapitalGiroRepository struct {
	db *gorm.DB
}

func NewCapitalGiroRepository(db *gorm.DB) *CapitalGiroRepository {
	return &CapitalGiroRepository{db: db}
}

func (r *CapitalGiroRepository) Create(req *models.CapitalGiroRequest) error {
	return r.db.Create(req).Error
}

func (r *CapitalGiroRepository) GetByID(id uint) (*models.CapitalGiroRequest, error) {
	var req models.CapitalGiroRequest
	if err := r.db.Preload("User").First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *CapitalGiroRepository) Update(req *models.CapitalGiroRequest) error {
	return r.db.Omit("User").Save(req).Error
}

func (r *CapitalGiroRepository) List(userID uint, status string, page, limit int) ([]models.CapitalGiroRequest, int64, error) {
	q := r.db.Model(&models.CapitalGiroRequest{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.CapitalGiroRequest
	err := q.Preload("User").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
