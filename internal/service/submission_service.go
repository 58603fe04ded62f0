package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"
	"hubln/pkg/payment"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubmissionService struct {
	db          *gorm.DB
	submissions *repository.SubmissionRepository
	products    *repository.ProductRepository
	coupons     *repository.CouponRepository
	pricing     *PricingService
	status      *StatusService
	notifier    Notifier
}

func NewSubmissionService(
	db *gorm.DB,
	submissions *repository.SubmissionRepository,
	products *repository.ProductRepository,
	coupons *repository.CouponRepository,
	pricing *PricingService,
	status *StatusService,
	notifier Notifier,
) *SubmissionService {
	return &SubmissionService{
		db:          db,
		submissions: submissions,
		products:    products,
		coupons:     coupons,
		pricing:     pricing,
		status:      status,
		notifier:    notifier,
	}
}

type CreateSubmissionInput struct {
	Title     string
	ProductID uint
	Clients   []ClientData
	Notes     string
	CouponID  *uint
}

func normalizeClients(in []ClientData) ([]ClientData, error) {
	if len(in) == 0 {
		return nil, ErrInvalidClient.WithMessage("at least one client is required")
	}
	out := make([]ClientData, 0, len(in))
	for i, c := range in {
		n, ok := c.Normalize()
		if !ok {
			return nil, ErrInvalidClient.WithMessage(
				"client %d: name must have at least 2 characters and document must have 11 or 14 digits", i+1)
		}
		out = append(out, n)
	}
	return out, nil
}

// CreateSubmission prices and persists a submission with its clients in one
// transaction. A coupon, when active, is applied to the already-resolved unit
// price and its usage counter is incremented.
func (s *SubmissionService) CreateSubmission(buyerUserID uint, in CreateSubmissionInput) (*models.Submission, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	clients, err := normalizeClients(in.Clients)
	if err != nil {
		return nil, err
	}

	var created *models.Submission
	err = s.db.Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		coupons := s.coupons.WithTx(tx)
		submissions := s.submissions.WithTx(tx)

		product, err := products.GetByID(in.ProductID)
		if err != nil {
			return notFound(err, ErrProductNotFound)
		}
		if !product.IsActive {
			return ErrProductNotFound
		}

		unitPrice, err := s.pricing.WithTx(tx).ResolvePrice(buyerUserID, product.ID)
		if err != nil {
			return err
		}

		var couponID *uint
		if in.CouponID != nil {
			c, err := coupons.GetActiveByID(*in.CouponID)
			switch {
			case err == nil:
				unitPrice = ApplyDiscount(unitPrice, c.DiscountType, c.DiscountValue)
				if _, err := coupons.IncrementUses(c.ID); err != nil {
					return apperr.Internal(err)
				}
				couponID = &c.ID
			case errors.Is(err, gorm.ErrRecordNotFound):
				slog.Warn("coupon ignored on submission", "coupon_id", *in.CouponID, "user_id", buyerUserID)
			default:
				return apperr.Internal(err)
			}
		}

		quantity := len(clients)
		sub := &models.Submission{
			UserID:      buyerUserID,
			ProductID:   product.ID,
			CouponID:    couponID,
			Title:       title,
			Notes:       strings.TrimSpace(in.Notes),
			UnitPrice:   roundMoney(unitPrice),
			Quantity:    quantity,
			TotalAmount: roundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
			Status:      domain.StatusPending,
		}
		if err := submissions.Create(sub); err != nil {
			return apperr.Internal(err)
		}

		rows := make([]models.SubmissionClient, 0, quantity)
		for _, c := range clients {
			rows = append(rows, models.SubmissionClient{
				SubmissionID: sub.ID,
				Name:         c.Name,
				Document:     c.Document,
				Status:       domain.StatusPending,
			})
		}
		if err := submissions.CreateClients(rows); err != nil {
			return apperr.Internal(err)
		}
		if _, err := s.status.WithTx(tx).UpdateSubmissionStatus(sub.ID); err != nil {
			return err
		}

		created, err = submissions.GetWithClients(sub.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("submission created",
		"submission_id", created.ID, "user_id", buyerUserID, "quantity", created.Quantity,
		"unit_price", created.UnitPrice.StringFixed(2), "coupon_id", created.CouponID)
	return created, nil
}

func canAccess(sub *models.Submission, actorID uint, isAdmin bool) bool {
	return isAdmin || sub.UserID == actorID
}

// hasOpenCharge reports whether a PIX charge for the current total may still
// be paid.
func hasOpenCharge(sub *models.Submission) bool {
	return sub.PaymentID != "" && !payment.IsFinal(sub.PaymentStatus)
}

func (s *SubmissionService) GetSubmission(id, actorID uint, isAdmin bool) (*models.Submission, error) {
	sub, err := s.submissions.GetWithClients(id)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if !canAccess(sub, actorID, isAdmin) {
		return nil, ErrForbidden
	}
	return sub, nil
}

func (s *SubmissionService) List(f repository.SubmissionFilter, page, limit int) ([]models.Submission, int64, error) {
	list, total, err := s.submissions.List(f, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

// DeleteSubmissionClient removes one client and recounts the parent. The parent
// is locked so the paid check cannot race a payment confirmation, and it may
// not change while an open charge bills the current total.
func (s *SubmissionService) DeleteSubmissionClient(clientID, actorID uint, isAdmin bool) (*models.Submission, error) {
	var out *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		client, err := submissions.GetClient(clientID)
		if err != nil {
			return notFound(err, ErrClientNotFound)
		}
		sub, err := submissions.LockByID(client.SubmissionID)
		if err != nil {
			return notFound(err, ErrSubmissionNotFound)
		}
		if !canAccess(sub, actorID, isAdmin) {
			return ErrForbidden
		}
		if sub.IsPaid {
			return ErrCannotModifyPaid
		}
		if hasOpenCharge(sub) {
			return ErrChargeOpen
		}
		if err := submissions.DeleteClient(client.ID); err != nil {
			return apperr.Internal(err)
		}
		remaining, err := submissions.CountClients(sub.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		err = submissions.UpdateFields(sub.ID, map[string]interface{}{
			"quantity":     int(remaining),
			"total_amount": roundMoney(sub.UnitPrice.Mul(decimal.NewFromInt(remaining))),
		})
		if err != nil {
			return apperr.Internal(err)
		}
		if _, err := s.status.WithTx(tx).UpdateSubmissionStatus(sub.ID); err != nil {
			return err
		}
		out, err = submissions.GetWithClients(sub.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SubmissionService) DeleteSubmission(id, actorID uint, isAdmin bool) error {
	_, err := s.DeleteMultipleSubmissions([]uint{id}, actorID, isAdmin)
	return err
}

// DeleteMultipleSubmissions deletes all of ids or none of them. Admins bypass
// ownership but never the paid check.
func (s *SubmissionService) DeleteMultipleSubmissions(ids []uint, actorID uint, isAdmin bool) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, apperr.Invalid("no submissions selected")
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		list, err := submissions.LockByIDs(ids)
		if err != nil {
			return apperr.Internal(err)
		}
		if len(list) != len(ids) {
			return ErrSubmissionNotFound.WithMessage("%d of %d submissions were not found", len(ids)-len(list), len(ids))
		}
		var paid, charged []string
		for i := range list {
			if !canAccess(&list[i], actorID, isAdmin) {
				return ErrForbidden
			}
			if list[i].IsPaid {
				paid = append(paid, fmt.Sprintf("#%d", list[i].ID))
			} else if hasOpenCharge(&list[i]) {
				charged = append(charged, fmt.Sprintf("#%d", list[i].ID))
			}
		}
		if len(paid) > 0 {
			return ErrCannotModifyPaid.WithMessage("paid submissions cannot be deleted: %s", strings.Join(paid, ", "))
		}
		if len(charged) > 0 {
			return ErrChargeOpen.WithMessage("submissions with an open PIX charge cannot be deleted: %s", strings.Join(charged, ", "))
		}
		if err := submissions.DeleteWithClients(ids); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info("submissions deleted", "count", len(ids), "actor_id", actorID, "admin", isAdmin)
	return len(ids), nil
}

func (s *SubmissionService) UpdateClientStatus(clientID uint, status string, notes *string) ([]uint, error) {
	return s.BulkUpdateClientStatus([]uint{clientID}, status, notes)
}

// BulkUpdateClientStatus sets status on every client or fails the whole
// batch, then re-derives each affected submission's status. It returns the
// affected submission ids.
func (s *SubmissionService) BulkUpdateClientStatus(clientIDs []uint, status string, notes *string) ([]uint, error) {
	if !domain.IsValidClientStatus(status) {
		return nil, apperr.Invalid("invalid status: " + status)
	}
	clientIDs = uniqueIDs(clientIDs)
	if len(clientIDs) == 0 {
		return nil, apperr.Invalid("no clients selected")
	}
	var affected []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		clients, err := submissions.GetClientsByIDs(clientIDs)
		if err != nil {
			return apperr.Internal(err)
		}
		if len(clients) != len(clientIDs) {
			return ErrClientNotFound.WithMessage("%d of %d clients were not found", len(clientIDs)-len(clients), len(clientIDs))
		}
		if err := submissions.UpdateClientsStatus(clientIDs, status, notes); err != nil {
			return apperr.Internal(err)
		}
		seen := map[uint]bool{}
		for _, c := range clients {
			if !seen[c.SubmissionID] {
				seen[c.SubmissionID] = true
				affected = append(affected, c.SubmissionID)
			}
		}
		statuses := s.status.WithTx(tx)
		for _, id := range affected {
			if _, err := statuses.UpdateSubmissionStatus(id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatusChange(affected)
	return affected, nil
}

func (s *SubmissionService) notifyStatusChange(submissionIDs []uint) {
	if s.notifier == nil {
		return
	}
	for _, id := range submissionIDs {
		sub, err := s.submissions.GetByID(id)
		if err != nil {
			continue
		}
		if err := s.notifier.Notify(sub.UserID, domain.NotifSubmissionStatus, "Status atualizado",
			fmt.Sprintf("A submissão \"%s\" agora está %s.", sub.Title, sub.Status),
			map[string]interface{}{"submission_id": sub.ID, "status": sub.Status}); err != nil {
			slog.Warn("notify submission status", "submission_id", sub.ID, "error", err)
		}
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
