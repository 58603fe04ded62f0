package service

import (
	"fmt"
	"strings"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"

	"github.com/shopspring/decimal"
)

type CapitalGiroService struct {
	repo     *repository.CapitalGiroRepository
	notifier Notifier
	now      func() time.Time
}

func NewCapitalGiroService(repo *repository.CapitalGiroRepository, notifier Notifier) *CapitalGiroService {
	return &CapitalGiroService{repo: repo, notifier: notifier, now: time.Now}
}

type CapitalGiroInput struct {
	CompanyName     string
	Document        string
	RequestedAmount decimal.Decimal
	MonthlyRevenue  decimal.Decimal
	Purpose         string
	Phone           string
}

func (s *CapitalGiroService) Create(userID uint, in CapitalGiroInput) (*models.CapitalGiroRequest, error) {
	company := SanitizeName(in.CompanyName)
	if len(company) < 2 {
		return nil, apperr.Invalid("company name is required")
	}
	doc := DigitsOnly(in.Document)
	if !ValidDocument(doc) {
		return nil, apperr.Invalid("document must be a CPF (11 digits) or CNPJ (14 digits)")
	}
	if !in.RequestedAmount.IsPositive() {
		return nil, apperr.Invalid("requested amount must be greater than zero")
	}
	if in.MonthlyRevenue.IsNegative() {
		return nil, apperr.Invalid("monthly revenue cannot be negative")
	}
	req := &models.CapitalGiroRequest{
		UserID:          userID,
		CompanyName:     company,
		Document:        doc,
		RequestedAmount: roundMoney(in.RequestedAmount),
		MonthlyRevenue:  roundMoney(in.MonthlyRevenue),
		Purpose:         strings.TrimSpace(in.Purpose),
		Phone:           strings.TrimSpace(in.Phone),
		Status:          domain.CapitalGiroPending,
	}
	if err := s.repo.Create(req); err != nil {
		return nil, apperr.Internal(err)
	}
	return req, nil
}

func (s *CapitalGiroService) List(userID uint, status string, page, limit int) ([]models.CapitalGiroRequest, int64, error) {
	list, total, err := s.repo.List(userID, status, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func isCapitalGiroFinal(status string) bool {
	return status == domain.CapitalGiroApproved || status == domain.CapitalGiroRejected
}

// Review moves a request to under_review, approved or rejected. Decided
// requests cannot change again.
func (s *CapitalGiroService) Review(id, adminID uint, status, notes string) (*models.CapitalGiroRequest, error) {
	switch status {
	case domain.CapitalGiroUnderReview, domain.CapitalGiroApproved, domain.CapitalGiroRejected:
	default:
		return nil, apperr.Invalid("invalid review status: " + status)
	}
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrCapitalGiroNotFound)
	}
	if isCapitalGiroFinal(req.Status) {
		return nil, ErrCapitalGiroFinal
	}
	now := s.now()
	req.Status = status
	req.AdminNotes = strings.TrimSpace(notes)
	req.ReviewedBy = &adminID
	req.ReviewedAt = &now
	if err := s.repo.Update(req); err != nil {
		return nil, apperr.Internal(err)
	}
	if s.notifier != nil {
		_ = s.notifier.Notify(req.UserID, domain.NotifCapitalGiro, "Capital de giro",
			fmt.Sprintf("Sua solicitação de capital de giro para %s está: %s.", req.CompanyName, status),
			map[string]interface{}{"request_id": req.ID, "status": status})
	}
	return req, nil
}
