package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"
	"hubln/pkg/payment"

	"github.com/getsentry/sentry-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const providerAsaas = "asaas"

var ErrAlreadyPaid = apperr.New(apperr.StateConflict, "AlreadyPaid", "submission is already paid")

// PaymentService drives PIX charges for submissions and mirrors the
// gateway's status back onto them.
type PaymentService struct {
	db          *gorm.DB
	gateway     payment.Gateway
	submissions *repository.SubmissionRepository
	payments    *repository.PaymentRepository
	users       *repository.UserRepository
	settings    *repository.SettingRepository
	commissions *CommissionService
	notifier    Notifier
	now         func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	gateway payment.Gateway,
	submissions *repository.SubmissionRepository,
	payments *repository.PaymentRepository,
	users *repository.UserRepository,
	settings *repository.SettingRepository,
	commissions *CommissionService,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		db:          db,
		gateway:     gateway,
		submissions: submissions,
		payments:    payments,
		users:       users,
		settings:    settings,
		commissions: commissions,
		notifier:    notifier,
		now:         time.Now,
	}
}

type PaymentInfo struct {
	SubmissionID  uint   `json:"submission_id"`
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	IsPaid        bool   `json:"is_paid"`
	PaymentURL    string `json:"payment_url"`
	QRCodePayload string `json:"qr_code_payload"`
	QRCodeImage   string `json:"qr_code_image,omitempty"`
	Amount        string `json:"amount"`
}

func infoFrom(sub *models.Submission) *PaymentInfo {
	return &PaymentInfo{
		SubmissionID:  sub.ID,
		PaymentID:     sub.PaymentID,
		Status:        sub.PaymentStatus,
		IsPaid:        sub.IsPaid,
		PaymentURL:    sub.PaymentURL,
		QRCodePayload: sub.QRCodeData,
		Amount:        sub.TotalAmount.StringFixed(2),
	}
}

func gatewayError(op string, err error) error {
	var apiErr *payment.APIError
	if errors.As(err, &apiErr) {
		return apperr.External(apiErr.Message, err)
	}
	return apperr.External(op+" failed", err)
}

// CreateSubmissionPayment opens a PIX charge for an unpaid submission. An
// existing charge that can still be paid is returned instead of a new one.
func (s *PaymentService) CreateSubmissionPayment(ctx context.Context, submissionID, userID uint) (*PaymentInfo, error) {
	sub, err := s.submissions.GetByID(submissionID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if sub.UserID != userID {
		return nil, ErrForbidden
	}
	if sub.IsPaid {
		return nil, ErrAlreadyPaid
	}
	if !sub.TotalAmount.IsPositive() {
		return nil, apperr.Invalid("submission total must be greater than zero")
	}
	if sub.PaymentID != "" && !payment.IsFinal(sub.PaymentStatus) {
		return infoFrom(sub), nil
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	dueDays := s.settings.GetInt(domain.SettingPixDueDays, 1)
	if dueDays < 1 {
		dueDays = 1
	}
	due := s.now().AddDate(0, 0, dueDays)
	charge, err := s.gateway.CreatePixPayment(ctx, payment.PixPaymentRequest{
		CustomerID:        customerID,
		Amount:            sub.TotalAmount,
		DueDate:           due,
		Description:       fmt.Sprintf("Hub LN - %s (%d clientes)", sub.Title, sub.Quantity),
		ExternalReference: fmt.Sprintf("submission:%d", sub.ID),
	})
	if err != nil {
		return nil, gatewayError("create payment", err)
	}
	billing, err := s.gateway.GetBillingInfo(ctx, charge.ID)
	if err != nil {
		return nil, gatewayError("billing info", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.submissions.WithTx(tx).UpdateFields(sub.ID, map[string]interface{}{
			"payment_id":     charge.ID,
			"payment_status": charge.Status,
			"payment_url":    charge.InvoiceURL,
			"qr_code_data":   billing.QRCodePayload,
		}); err != nil {
			return err
		}
		return s.payments.WithTx(tx).Create(&models.Payment{
			UserID:         userID,
			SubmissionID:   sub.ID,
			Provider:       providerAsaas,
			ProviderRef:    charge.ID,
			Amount:         sub.TotalAmount,
			Status:         charge.Status,
			IdempotencyKey: fmt.Sprintf("submission:%d:%s", sub.ID, charge.ID),
			RawPayload:     rawJSON(charge.Raw),
			DueDate:        &due,
		})
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	slog.Info("pix charge created", "submission_id", sub.ID, "payment_id", charge.ID, "amount", sub.TotalAmount.StringFixed(2))

	sub.PaymentID = charge.ID
	sub.PaymentStatus = charge.Status
	sub.PaymentURL = charge.InvoiceURL
	sub.QRCodeData = billing.QRCodePayload
	info := infoFrom(sub)
	info.QRCodeImage = billing.QRCodeImage
	return info, nil
}

func (s *PaymentService) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.AsaasCustomerID != "" {
		return user.AsaasCustomerID, nil
	}
	if !ValidDocument(user.Document) {
		return "", apperr.Invalid("a CPF or CNPJ is required on your profile before paying")
	}
	c, err := s.gateway.CreateCustomer(ctx, payment.CustomerRequest{
		Name:     user.Name,
		Document: user.Document,
		Email:    user.Email,
		Phone:    user.Phone,
	})
	if err != nil {
		return "", gatewayError("create customer", err)
	}
	if err := s.users.UpdateFields(user.ID, map[string]interface{}{"asaas_customer_id": c.ID}); err != nil {
		return "", apperr.Internal(err)
	}
	return c.ID, nil
}

// SyncSubmissionPayment polls the gateway and applies the charge status.
func (s *PaymentService) SyncSubmissionPayment(ctx context.Context, submissionID, actorID uint, isAdmin bool) (*PaymentInfo, error) {
	sub, err := s.submissions.GetByID(submissionID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if !canAccess(sub, actorID, isAdmin) {
		return nil, ErrForbidden
	}
	if sub.PaymentID == "" {
		return nil, ErrPaymentNotStarted
	}
	charge, err := s.gateway.GetPayment(ctx, sub.PaymentID)
	if err != nil {
		return nil, gatewayError("get payment", err)
	}
	return s.applyStatus(sub, charge.ID, charge.Status, charge.Raw)
}

// WebhookEvent is the body Asaas posts for payment events.
type WebhookEvent struct {
	Event   string          `json:"event"`
	Payment payment.Payment `json:"payment"`
}

// HandleWebhook applies a gateway event. Events for unknown charges are
// acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ev WebhookEvent, raw []byte) error {
	if ev.Payment.ID == "" {
		return apperr.Invalid("payment id missing")
	}
	sub, err := s.submissions.GetByPaymentID(ev.Payment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("asaas webhook for unknown payment", "event", ev.Event, "payment_id", ev.Payment.ID)
			return nil
		}
		return apperr.Internal(err)
	}
	slog.Info("asaas webhook", "event", ev.Event, "payment_id", ev.Payment.ID, "status", ev.Payment.Status)
	_, err = s.applyStatus(sub, ev.Payment.ID, ev.Payment.Status, raw)
	return err
}

// applyStatus mirrors status onto the submission and ledger. isPaid is set
// only when status is RECEIVED; the flip happens at most once, and only the
// flipping caller creates the commission.
func (s *PaymentService) applyStatus(sub *models.Submission, paymentID, status string, raw []byte) (*PaymentInfo, error) {
	now := s.now()
	flipped := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		payments := s.payments.WithTx(tx)
		if err := submissions.UpdateFields(sub.ID, map[string]interface{}{"payment_status": status}); err != nil {
			return err
		}
		if ledger, err := payments.GetByProviderRef(paymentID); err == nil {
			fields := map[string]interface{}{"status": status}
			if len(raw) > 0 {
				fields["raw_payload"] = rawJSON(raw)
			}
			if status == payment.StatusReceived && ledger.CompletedAt == nil {
				fields["completed_at"] = now
			}
			if err := payments.UpdateFields(ledger.ID, fields); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if status != payment.StatusReceived {
			return nil
		}
		n, err := submissions.MarkPaid(sub.ID, status, now)
		if err != nil {
			return err
		}
		flipped = n == 1
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if flipped {
		slog.Info("submission paid", "submission_id", sub.ID, "payment_id", paymentID)
		s.afterPaid(sub)
	}
	fresh, err := s.submissions.GetByID(sub.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return infoFrom(fresh), nil
}

func (s *PaymentService) afterPaid(sub *models.Submission) {
	if s.commissions != nil {
		if _, err := s.commissions.CreateCommissionForSubmission(sub.ID); err != nil {
			slog.Error("commission after payment failed", "submission_id", sub.ID, "error", err)
			sentry.CaptureException(err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(sub.UserID, domain.NotifPaymentConfirmed, "Pagamento confirmado",
			fmt.Sprintf("O pagamento de R$ %s da submissão \"%s\" foi recebido.", sub.TotalAmount.StringFixed(2), sub.Title),
			map[string]interface{}{"submission_id": sub.ID}); err != nil {
			slog.Warn("notify payment", "submission_id", sub.ID, "error", err)
		}
	}
}

func (s *PaymentService) ListPayments(submissionID, actorID uint, isAdmin bool) ([]models.Payment, error) {
	sub, err := s.submissions.GetByID(submissionID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if !canAccess(sub, actorID, isAdmin) {
		return nil, ErrForbidden
	}
	list, err := s.payments.ListBySubmission(submissionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func rawJSON(b []byte) datatypes.JSON {
	if len(b) == 0 {
		return nil
	}
	return datatypes.JSON(b)
}
