package repository

import (
	"hubln/internal/models"

	"gorm.io/gorm"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) WithTx(tx *gorm.DB) *CouponRepository {
	return &CouponRepository{db: tx}
}

func (r *CouponRepository) Create(c *models.Coupon) error {
	return r.db.Create(c).Error
}

func (r *CouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode looks up an already-normalised (uppercase) code.
func (r *CouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepository) GetActiveByID(id uint) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.Where("id = ? AND is_active = ?", id, true).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepository) CodeExists(code string) (bool, error) {
	var n int64
	err := r.db.Model(&models.Coupon{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

// IncrementUses atomically bumps current_uses by one.
func (r *CouponRepository) IncrementUses(id uint) (int64, error) {
	res := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	return res.RowsAffected, res.Error
}

func (r *CouponRepository) ListByUser(userID uint) ([]models.Coupon, error) {
	var list []models.Coupon
	err := r.db.Where("user_id = ?", userID).Preload("Product").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *CouponRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Coupon{}).Where("id = ?", id).Update("is_active", false).Error
}
