package repository

import (
	"crypto/rand"
	"errors"
	"fmt"

	"hubln/internal/domain"
	"hubln/internal/models"

	"gorm.io/gorm"
)

// referralAlphabet omits characters that are easy to misread (0/O, 1/I).
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GenerateReferralCode returns a random uppercase code of domain.ReferralCodeLength chars.
func GenerateReferralCode() (string, error) {
	b := make([]byte, domain.ReferralCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = referralAlphabet[int(b[i])%len(referralAlphabet)]
	}
	return string(b), nil
}

// CreateWithCode inserts u with a freshly generated unique referral code,
// retrying on collision.
func (r *ReferralRepository) CreateWithCode(u *models.User) error {
	for i := 0; i < 10; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			return err
		}
		u.ReferralCode = code
		err = r.db.Create(u).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		var clash int64
		r.db.Model(&models.User{}).Where("referral_code = ?", code).Count(&clash)
		if clash == 0 {
			// duplicate on another unique column (email)
			return err
		}
		u.ID = 0
	}
	return fmt.Errorf("failed to generate a unique referral code after retries")
}

// ReferredUser is a direct referral with its paid activity.
type ReferredUser struct {
	ID                   uint   `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	ReferralCode         string `json:"referral_code"`
	PaidSubmissionsCount int64  `json:"paid_submissions_count"`
}

// ListReferredBy returns the users whose referred_by equals code.
func (r *ReferralRepository) ListReferredBy(code string, limit, offset int) ([]ReferredUser, int64, error) {
	q := r.db.Model(&models.User{}).Where("referred_by = ?", code)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	out := make([]ReferredUser, 0, len(users))
	for _, u := range users {
		var paid int64
		r.db.Model(&models.Submission{}).Where("user_id = ? AND is_paid = ?", u.ID, true).Count(&paid)
		out = append(out, ReferredUser{
			ID:                   u.ID,
			Name:                 u.Name,
			Email:                u.Email,
			ReferralCode:         u.ReferralCode,
			PaidSubmissionsCount: paid,
		})
	}
	return out, total, nil
}
