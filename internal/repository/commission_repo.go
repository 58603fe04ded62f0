package repository

import (
	"time"

	"hubln/internal/domain"
	"hubln/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) WithTx(tx *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: tx}
}

func (r *CommissionRepository) Create(c *models.CommissionEarning) error {
	return r.db.Create(c).Error
}

func (r *CommissionRepository) GetBySubmissionID(submissionID uint) (*models.CommissionEarning, error) {
	var c models.CommissionEarning
	if err := r.db.Where("submission_id = ?", submissionID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LockByIDs loads the rows with FOR UPDATE where the dialect supports it.
func (r *CommissionRepository) LockByIDs(ids []uint) ([]models.CommissionEarning, error) {
	var list []models.CommissionEarning
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

// MarkWithdrawn flips only rows that are still withdrawable for userID.
func (r *CommissionRepository) MarkWithdrawn(userID uint, ids []uint, withdrawalID uint, now time.Time) (int64, error) {
	res := r.db.Model(&models.CommissionEarning{}).
		Where("id IN ? AND beneficiary_user_id = ? AND status = ? AND available_at <= ?",
			ids, userID, domain.CommissionPending, now).
		Updates(map[string]interface{}{
			"status":        domain.CommissionWithdrawn,
			"withdrawn_at":  now,
			"withdrawal_id": withdrawalID,
		})
	return res.RowsAffected, res.Error
}

func (r *CommissionRepository) ListByBeneficiary(userID uint, status string, limit, offset int) ([]models.CommissionEarning, int64, error) {
	q := r.db.Model(&models.CommissionEarning{}).Where("beneficiary_user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.CommissionEarning
	err := q.Preload("Buyer").Preload("Product").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

type sumRow struct {
	Total decimal.Decimal
}

func (r *CommissionRepository) sum(q *gorm.DB) (decimal.Decimal, error) {
	var row sumRow
	err := q.Select("COALESCE(SUM(commission_amount), 0) AS total").Scan(&row).Error
	return row.Total, err
}

// SumAvailable is the withdrawable total: pending rows past their holding period.
func (r *CommissionRepository) SumAvailable(userID uint, now time.Time) (decimal.Decimal, error) {
	return r.sum(r.db.Model(&models.CommissionEarning{}).
		Where("beneficiary_user_id = ? AND status = ? AND available_at <= ?", userID, domain.CommissionPending, now))
}

// SumHeld is the pending total still inside the holding period.
func (r *CommissionRepository) SumHeld(userID uint, now time.Time) (decimal.Decimal, error) {
	return r.sum(r.db.Model(&models.CommissionEarning{}).
		Where("beneficiary_user_id = ? AND status = ? AND available_at > ?", userID, domain.CommissionPending, now))
}

func (r *CommissionRepository) SumByStatus(userID uint, status string) (decimal.Decimal, error) {
	q := r.db.Model(&models.CommissionEarning{})
	if userID != 0 {
		q = q.Where("beneficiary_user_id = ?", userID)
	}
	return r.sum(q.Where("status = ?", status))
}
