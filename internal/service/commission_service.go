package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CommissionService struct {
	db          *gorm.DB
	commissions *repository.CommissionRepository
	withdrawals *repository.WithdrawalRepository
	users       *repository.UserRepository
	products    *repository.ProductRepository
	prices      *repository.PriceRepository
	submissions *repository.SubmissionRepository
	notifier    Notifier
	now         func() time.Time
}

func NewCommissionService(
	db *gorm.DB,
	commissions *repository.CommissionRepository,
	withdrawals *repository.WithdrawalRepository,
	users *repository.UserRepository,
	products *repository.ProductRepository,
	prices *repository.PriceRepository,
	submissions *repository.SubmissionRepository,
	notifier Notifier,
) *CommissionService {
	return &CommissionService{
		db:          db,
		commissions: commissions,
		withdrawals: withdrawals,
		users:       users,
		products:    products,
		prices:      prices,
		submissions: submissions,
		notifier:    notifier,
		now:         time.Now,
	}
}

// WithTx binds every repository to tx. The notifier is kept so callers can
// still notify after commit.
func (s *CommissionService) WithTx(tx *gorm.DB) *CommissionService {
	return &CommissionService{
		db:          tx,
		commissions: s.commissions.WithTx(tx),
		withdrawals: s.withdrawals.WithTx(tx),
		users:       s.users.WithTx(tx),
		products:    s.products.WithTx(tx),
		prices:      s.prices.WithTx(tx),
		submissions: s.submissions.WithTx(tx),
		notifier:    s.notifier,
		now:         s.now,
	}
}

type CommissionInput struct {
	SubmissionID uint
	BuyerUserID  uint
	ProductID    uint
	UnitPrice    decimal.Decimal
	Quantity     int
	TotalAmount  decimal.Decimal
}

// CommissionResult reports the outcome of a creation attempt. Commission is
// nil for every no-op except the already-exists case.
type CommissionResult struct {
	Commission *models.CommissionEarning `json:"commission,omitempty"`
	Created    bool                      `json:"created"`
	Message    string                    `json:"message"`
}

const (
	msgCommissionExists     = "commission already exists for this submission"
	msgNoReferrer           = "buyer has no referrer; no commission generated"
	msgNoCustomPrice        = "referrer has no custom price for this product; no commission generated"
	msgNoPositiveCommission = "unit price does not exceed base price; no commission generated"
	msgCommissionCreated    = "commission created"
)

// CreateCommissionEarnings credits the buyer's direct referrer with the
// margin between the paid unit price and the product's base price.
func (s *CommissionService) CreateCommissionEarnings(in CommissionInput) (*CommissionResult, error) {
	existing, err := s.commissions.GetBySubmissionID(in.SubmissionID)
	if err == nil {
		return &CommissionResult{Commission: existing, Message: msgCommissionExists}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	buyer, err := s.users.GetByID(in.BuyerUserID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	code := buyer.ReferrerCode()
	if code == "" {
		return &CommissionResult{Message: msgNoReferrer}, nil
	}
	referrer, err := s.users.GetByReferralCode(code)
	if err != nil {
		return nil, notFound(err, ErrReferrerNotFound)
	}

	if _, err := s.prices.Get(referrer.ID, in.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CommissionResult{Message: msgNoCustomPrice}, nil
		}
		return nil, apperr.Internal(err)
	}

	product, err := s.products.GetByID(in.ProductID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	perUnit := in.UnitPrice.Sub(product.BasePrice)
	if !perUnit.IsPositive() || in.Quantity <= 0 {
		return &CommissionResult{Message: msgNoPositiveCommission}, nil
	}

	now := s.now()
	c := &models.CommissionEarning{
		SubmissionID:      in.SubmissionID,
		BeneficiaryUserID: referrer.ID,
		BuyerUserID:       buyer.ID,
		ProductID:         in.ProductID,
		UnitPrice:         roundMoney(in.UnitPrice),
		Quantity:          in.Quantity,
		TotalAmount:       roundMoney(in.TotalAmount),
		CommissionAmount:  roundMoney(perUnit.Mul(decimal.NewFromInt(int64(in.Quantity)))),
		Status:            domain.CommissionPending,
		AvailableAt:       now.Add(domain.CommissionHoldingPeriod),
	}
	if err := s.commissions.Create(c); err != nil {
		// A concurrent confirmation won the unique index on submission_id.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, gerr := s.commissions.GetBySubmissionID(in.SubmissionID)
			if gerr != nil {
				return nil, apperr.Internal(gerr)
			}
			return &CommissionResult{Commission: existing, Message: msgCommissionExists}, nil
		}
		return nil, apperr.Internal(err)
	}
	slog.Info("commission created",
		"submission_id", c.SubmissionID, "beneficiary_id", c.BeneficiaryUserID,
		"amount", c.CommissionAmount.StringFixed(2), "available_at", c.AvailableAt)
	return &CommissionResult{Commission: c, Created: true, Message: msgCommissionCreated}, nil
}

// CreateCommissionForSubmission loads a paid submission and runs
// CreateCommissionEarnings for it.
func (s *CommissionService) CreateCommissionForSubmission(submissionID uint) (*CommissionResult, error) {
	sub, err := s.submissions.GetByID(submissionID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if !sub.IsPaid {
		return nil, ErrNotPaid
	}
	res, err := s.CreateCommissionEarnings(CommissionInput{
		SubmissionID: sub.ID,
		BuyerUserID:  sub.UserID,
		ProductID:    sub.ProductID,
		UnitPrice:    sub.UnitPrice,
		Quantity:     sub.Quantity,
		TotalAmount:  sub.TotalAmount,
	})
	if err != nil {
		return nil, err
	}
	if res.Created {
		s.notifyCreated(res.Commission)
	}
	return res, nil
}

func (s *CommissionService) notifyCreated(c *models.CommissionEarning) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(c.BeneficiaryUserID, domain.NotifCommissionCreated, "Nova comissão",
		fmt.Sprintf("Você ganhou R$ %s. Disponível para saque em %s.",
			c.CommissionAmount.StringFixed(2), c.AvailableAt.Format("02/01/2006")),
		map[string]interface{}{"commission_id": c.ID, "submission_id": c.SubmissionID})
	if err != nil {
		slog.Warn("notify commission", "commission_id", c.ID, "error", err)
	}
}

type Balance struct {
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
	Withdrawn decimal.Decimal `json:"withdrawn"`
	Total     decimal.Decimal `json:"total"`
}

// GetAvailableBalance splits a user's commissions into withdrawable, held
// and already-withdrawn totals.
func (s *CommissionService) GetAvailableBalance(userID uint) (*Balance, error) {
	now := s.now()
	available, err := s.commissions.SumAvailable(userID, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	held, err := s.commissions.SumHeld(userID, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	withdrawn, err := s.commissions.SumByStatus(userID, domain.CommissionWithdrawn)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Balance{
		Available: roundMoney(available),
		Pending:   roundMoney(held),
		Withdrawn: roundMoney(withdrawn),
		Total:     roundMoney(available.Add(held).Add(withdrawn)),
	}, nil
}

func (s *CommissionService) ListMine(userID uint, status string, page, limit int) ([]models.CommissionEarning, int64, error) {
	list, total, err := s.commissions.ListByBeneficiary(userID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

// WithdrawCommissions releases every listed commission or none of them.
func (s *CommissionService) WithdrawCommissions(userID uint, commissionIDs []uint) (*models.Withdrawal, error) {
	ids := uniqueIDs(commissionIDs)
	if len(ids) == 0 {
		return nil, apperr.Invalid("no commissions selected")
	}
	var w *models.Withdrawal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		commissions := s.commissions.WithTx(tx)
		withdrawals := s.withdrawals.WithTx(tx)
		now := s.now()

		rows, err := commissions.LockByIDs(ids)
		if err != nil {
			return apperr.Internal(err)
		}
		byID := make(map[uint]models.CommissionEarning, len(rows))
		for _, r := range rows {
			byID[r.ID] = r
		}
		var bad []string
		amount := decimal.Zero
		for _, id := range ids {
			r, ok := byID[id]
			if !ok || r.BeneficiaryUserID != userID || r.Status != domain.CommissionPending || r.AvailableAt.After(now) {
				bad = append(bad, fmt.Sprintf("#%d", id))
				continue
			}
			amount = amount.Add(r.CommissionAmount)
		}
		if len(bad) > 0 {
			return ErrSomeUnavailable.WithMessage("commissions not available for withdrawal: %s", strings.Join(bad, ", "))
		}

		user, err := s.users.WithTx(tx).GetByID(userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		w = &models.Withdrawal{
			UserID:          userID,
			Reference:       "WD-" + strings.ToUpper(uuid.NewString()[:13]),
			Amount:          roundMoney(amount),
			CommissionCount: len(ids),
			PixKey:          user.PixKey,
			Status:          domain.WithdrawalRequested,
		}
		if err := withdrawals.Create(w); err != nil {
			return apperr.Internal(err)
		}
		n, err := commissions.MarkWithdrawn(userID, ids, w.ID, now)
		if err != nil {
			return apperr.Internal(err)
		}
		if n != int64(len(ids)) {
			return ErrSomeUnavailable.WithMessage("%d of %d commissions changed concurrently", int64(len(ids))-n, len(ids))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("commissions withdrawn", "user_id", userID, "withdrawal_id", w.ID,
		"count", w.CommissionCount, "amount", w.Amount.StringFixed(2))
	return w, nil
}

func (s *CommissionService) ListWithdrawals(userID uint, status string, page, limit int) ([]models.Withdrawal, int64, error) {
	list, total, err := s.withdrawals.List(userID, status, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

// MarkWithdrawalPaid records the PIX transfer of a requested withdrawal.
func (s *CommissionService) MarkWithdrawalPaid(id uint) (*models.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrWithdrawalNotFound)
	}
	n, err := s.withdrawals.MarkPaid(id, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if n == 0 {
		return nil, apperr.New(apperr.StateConflict, "WithdrawalNotRequested", "withdrawal is already "+w.Status)
	}
	w, err = s.withdrawals.GetByID(id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(w.UserID, domain.NotifWithdrawalPaid, "Saque pago",
			fmt.Sprintf("Seu saque %s de R$ %s foi pago.", w.Reference, w.Amount.StringFixed(2)),
			map[string]interface{}{"withdrawal_id": w.ID}); err != nil {
			slog.Warn("notify withdrawal", "withdrawal_id", w.ID, "error", err)
		}
	}
	return w, nil
}
