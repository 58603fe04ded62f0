package service

import (
	"context"
	"errors"
	"testing"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/pkg/payment"
)

func newPaymentService(f *fixture, gw payment.Gateway) *PaymentService {
	svc := NewPaymentService(f.db, gw, f.submissions, f.payments, f.users, f.settings, f.commissionSvc, f.notifier)
	svc.now = f.now
	return svc
}

func TestPaymentFlowCreatesCommissionOnce(t *testing.T) {
	f := newFixture(t)
	gw := payment.NewStubGateway()
	svc := newPaymentService(f, gw)
	ctx := context.Background()

	product := f.product(t, "75")
	seller := f.user(t, "Seller", nil)
	f.customPrice(t, seller.ID, product.ID, "175")
	buyer := f.user(t, "Buyer", seller)
	sub := f.submission(t, buyer, product, 3)

	info, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID)
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if info.PaymentID == "" || info.Status != payment.StatusPending || info.IsPaid || info.QRCodePayload == "" || info.Amount != "525.00" {
		t.Fatalf("unexpected payment info: %+v", info)
	}
	stored, _ := f.users.GetByID(buyer.ID)
	if stored.AsaasCustomerID == "" {
		t.Fatalf("customer id not saved")
	}

	again, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID)
	if err != nil {
		t.Fatalf("create payment again: %v", err)
	}
	if again.PaymentID != info.PaymentID {
		t.Fatalf("open charge replaced: %s != %s", again.PaymentID, info.PaymentID)
	}

	synced, err := svc.SyncSubmissionPayment(ctx, sub.ID, buyer.ID, false)
	if err != nil {
		t.Fatalf("sync pending: %v", err)
	}
	if synced.IsPaid {
		t.Fatalf("pending charge marked paid")
	}

	gw.SetStatus(info.PaymentID, payment.StatusReceived)
	synced, err = svc.SyncSubmissionPayment(ctx, sub.ID, buyer.ID, false)
	if err != nil {
		t.Fatalf("sync received: %v", err)
	}
	if !synced.IsPaid || synced.Status != payment.StatusReceived {
		t.Fatalf("charge not applied: %+v", synced)
	}

	ev := WebhookEvent{Event: "PAYMENT_RECEIVED", Payment: payment.Payment{ID: info.PaymentID, Status: payment.StatusReceived}}
	if err := svc.HandleWebhook(ev, []byte(`{"event":"PAYMENT_RECEIVED"}`)); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	var commissions int64
	f.db.Model(&models.CommissionEarning{}).Count(&commissions)
	if commissions != 1 {
		t.Fatalf("%d commissions, want exactly 1", commissions)
	}
	c, _ := f.commissions.GetBySubmissionID(sub.ID)
	assertMoney(t, "commission", c.CommissionAmount, "300")
	if f.notifier.count(domain.NotifPaymentConfirmed) != 1 {
		t.Fatalf("payment confirmations = %d, want 1", f.notifier.count(domain.NotifPaymentConfirmed))
	}

	ledger, err := svc.ListPayments(sub.ID, buyer.ID, false)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(ledger) != 1 || ledger[0].Status != payment.StatusReceived || ledger[0].CompletedAt == nil {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}

	if _, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("pay twice err = %v", err)
	}
}

func TestCreatePaymentGuards(t *testing.T) {
	f := newFixture(t)
	gw := payment.NewStubGateway()
	svc := newPaymentService(f, gw)
	ctx := context.Background()
	product := f.product(t, "75")
	buyer := f.user(t, "Buyer", nil)
	stranger := f.user(t, "Stranger", nil)
	sub := f.submission(t, buyer, product, 1)

	if _, err := svc.CreateSubmissionPayment(ctx, sub.ID, stranger.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger err = %v", err)
	}
	if _, err := svc.SyncSubmissionPayment(ctx, sub.ID, buyer.ID, false); !errors.Is(err, ErrPaymentNotStarted) {
		t.Fatalf("sync before create err = %v", err)
	}

	if err := f.users.UpdateFields(buyer.ID, map[string]interface{}{"document": ""}); err != nil {
		t.Fatalf("clear document: %v", err)
	}
	if _, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("missing document err = %v", err)
	}

	if err := f.users.UpdateFields(buyer.ID, map[string]interface{}{"document": "52998224725"}); err != nil {
		t.Fatalf("restore document: %v", err)
	}
	gw.Fail = &payment.APIError{StatusCode: 400, Code: "invalid_customer", Message: "CPF inválido"}
	if _, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID); apperr.KindOf(err) != apperr.ExternalServiceError {
		t.Fatalf("gateway failure err = %v", err)
	}
	got, _ := f.submissions.GetByID(sub.ID)
	if got.PaymentID != "" {
		t.Fatalf("failed charge left payment id %q", got.PaymentID)
	}
}

func TestHandleWebhookUnknownPayment(t *testing.T) {
	f := newFixture(t)
	svc := newPaymentService(f, payment.NewStubGateway())
	ev := WebhookEvent{Event: "PAYMENT_RECEIVED", Payment: payment.Payment{ID: "pay_unknown", Status: payment.StatusReceived}}
	if err := svc.HandleWebhook(ev, nil); err != nil {
		t.Fatalf("unknown payment err = %v, want nil", err)
	}
	if err := svc.HandleWebhook(WebhookEvent{Event: "PAYMENT_RECEIVED"}, nil); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("missing id err = %v", err)
	}
}

func TestOpenChargeFreezesSubmission(t *testing.T) {
	f := newFixture(t)
	gw := payment.NewStubGateway()
	svc := newPaymentService(f, gw)
	ctx := context.Background()

	product := f.product(t, "75")
	buyer := f.user(t, "Buyer", nil)
	sub := f.submission(t, buyer, product, 3)

	first, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID)
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[0].ID, buyer.ID, false); !errors.Is(err, ErrChargeOpen) {
		t.Fatalf("delete client with open charge: err = %v, want ErrChargeOpen", err)
	}
	if _, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[0].ID, 0, true); !errors.Is(err, ErrChargeOpen) {
		t.Fatalf("admin delete client with open charge: err = %v, want ErrChargeOpen", err)
	}
	if err := f.submissionSvc.DeleteSubmission(sub.ID, buyer.ID, false); !errors.Is(err, ErrChargeOpen) {
		t.Fatalf("delete submission with open charge: err = %v, want ErrChargeOpen", err)
	}
	unchanged, _ := f.submissions.GetByID(sub.ID)
	if unchanged.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", unchanged.Quantity)
	}
	assertMoney(t, "total while charged", unchanged.TotalAmount, "225")

	gw.SetStatus(first.PaymentID, payment.StatusOverdue)
	if _, err := svc.SyncSubmissionPayment(ctx, sub.ID, buyer.ID, false); err != nil {
		t.Fatalf("sync overdue: %v", err)
	}
	if _, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[0].ID, buyer.ID, false); err != nil {
		t.Fatalf("delete client after charge expired: %v", err)
	}

	second, err := svc.CreateSubmissionPayment(ctx, sub.ID, buyer.ID)
	if err != nil {
		t.Fatalf("create payment again: %v", err)
	}
	if second.PaymentID == first.PaymentID {
		t.Fatalf("expired charge %s reused", first.PaymentID)
	}
	if second.Amount != "150.00" {
		t.Fatalf("new charge amount = %s, want 150.00", second.Amount)
	}
}
