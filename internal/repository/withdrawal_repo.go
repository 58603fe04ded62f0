package repository

import (
	"time"

	"hubln/internal/domain"
	"hubln/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

func (r *WithdrawalRepository) Create(w *models.Withdrawal) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.Preload("Commissions").First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) Update(w *models.Withdrawal) error {
	return r.db.Save(w).Error
}

// MarkPaid moves a requested withdrawal to paid; zero rows means it was not requested.
func (r *WithdrawalRepository) MarkPaid(id uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, domain.WithdrawalRequested).
		Updates(map[string]interface{}{"status": domain.WithdrawalPaid, "paid_at": at})
	return res.RowsAffected, res.Error
}

func (r *WithdrawalRepository) List(userID uint, status string, page, limit int) ([]models.Withdrawal, int64, error) {
	q := r.db.Model(&models.Withdrawal{})
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
	var list []models.Withdrawal
	err := q.Preload("User").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
