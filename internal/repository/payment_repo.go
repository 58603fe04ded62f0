package repository

import (
	"hubln/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByProviderRef(ref string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("provider_ref = ?", ref).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListBySubmission(submissionID uint) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.Where("submission_id = ?", submissionID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *PaymentRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}
