package repository

import (
	"hubln/internal/domain"
	"hubln/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers           int64            `json:"total_users"`
	TotalSubmissions     int64            `json:"total_submissions"`
	PaidSubmissions      int64            `json:"paid_submissions"`
	SubmissionsByStatus  map[string]int64 `json:"submissions_by_status"`
	TotalClients         int64            `json:"total_clients"`
	PaidRevenue          decimal.Decimal  `json:"paid_revenue"`
	CommissionsPending   decimal.Decimal  `json:"commissions_pending"`
	CommissionsWithdrawn decimal.Decimal  `json:"commissions_withdrawn"`
	OpenCapitalGiro      int64            `json:"open_capital_giro_requests"`
	RequestedWithdrawals int64            `json:"requested_withdrawals"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	s := DashboardStats{SubmissionsByStatus: map[string]int64{}}
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.Submission{}).Count(&s.TotalSubmissions)
	r.db.Model(&models.Submission{}).Where("is_paid = ?", true).Count(&s.PaidSubmissions)
	r.db.Model(&models.SubmissionClient{}).Count(&s.TotalClients)

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Submission{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		s.SubmissionsByStatus[row.Status] = row.Count
	}

	var rev sumRow
	if err := r.db.Model(&models.Submission{}).Select("COALESCE(SUM(total_amount), 0) AS total").Where("is_paid = ?", true).Scan(&rev).Error; err != nil {
		return nil, err
	}
	s.PaidRevenue = rev.Total

	commissions := NewCommissionRepository(r.db)
	var err error
	if s.CommissionsPending, err = commissions.SumByStatus(0, domain.CommissionPending); err != nil {
		return nil, err
	}
	if s.CommissionsWithdrawn, err = commissions.SumByStatus(0, domain.CommissionWithdrawn); err != nil {
		return nil, err
	}

	r.db.Model(&models.CapitalGiroRequest{}).
		Where("status IN ?", []string{domain.CapitalGiroPending, domain.CapitalGiroUnderReview}).
		Count(&s.OpenCapitalGiro)
	r.db.Model(&models.Withdrawal{}).Where("status = ?", domain.WithdrawalRequested).Count(&s.RequestedWithdrawals)
	return &s, nil
}

// ListUsers returns users with search, role filter, and pagination.
func (r *AdminRepository) ListUsers(search, role string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		q = q.Where("name LIKE ? OR email LIKE ? OR referral_code = ?", "%"+search+"%", "%"+search+"%", search)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	q.Count(&total)
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}
