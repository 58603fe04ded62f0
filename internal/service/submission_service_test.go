package service

import (
	"errors"
	"testing"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"

	"gorm.io/gorm"
)

func TestCreateSubmissionPricesThroughReferrer(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	seller := f.user(t, "Seller", nil)
	f.customPrice(t, seller.ID, product.ID, "175")
	buyer := f.user(t, "Buyer", seller)

	sub, err := f.submissionSvc.CreateSubmission(buyer.ID, CreateSubmissionInput{
		Title:     "  Lote março ",
		ProductID: product.ID,
		Clients: []ClientData{
			{Name: " Maria   da Silva ", Document: "529.982.247-25"},
			{Name: "Empresa X", Document: "11.222.333/0001-81"},
			{Name: "João", Document: "12345678901"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.Title != "Lote março" || sub.Quantity != 3 || sub.Status != domain.StatusPending || sub.IsPaid {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	assertMoney(t, "unit price", sub.UnitPrice, "175")
	assertMoney(t, "total", sub.TotalAmount, "525")
	if len(sub.Clients) != 3 {
		t.Fatalf("got %d clients, want 3", len(sub.Clients))
	}
	first := sub.Clients[0]
	if first.Name != "Maria da Silva" || first.Document != "52998224725" || first.Status != domain.StatusPending {
		t.Fatalf("client not normalized: %+v", first)
	}
	if sub.Clients[1].Document != "11222333000181" {
		t.Fatalf("cnpj not normalized: %q", sub.Clients[1].Document)
	}

	// Later price changes never touch existing submissions.
	f.customPrice(t, seller.ID, product.ID, "200")
	again, err := f.submissionSvc.GetSubmission(sub.ID, buyer.ID, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	assertMoney(t, "unit price after change", again.UnitPrice, "175")
}

func TestCreateSubmissionValidation(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	buyer := f.user(t, "Buyer", nil)

	cases := []struct {
		name string
		in   CreateSubmissionInput
		want error
	}{
		{"no clients", CreateSubmissionInput{Title: "x", ProductID: product.ID}, ErrInvalidClient},
		{"short document", CreateSubmissionInput{Title: "x", ProductID: product.ID,
			Clients: []ClientData{{Name: "Ana", Document: "123"}}}, ErrInvalidClient},
		{"short name", CreateSubmissionInput{Title: "x", ProductID: product.ID,
			Clients: []ClientData{{Name: " A ", Document: "12345678901"}}}, ErrInvalidClient},
		{"unknown product", CreateSubmissionInput{Title: "x", ProductID: 999, Clients: clientsN(1)}, ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.submissionSvc.CreateSubmission(buyer.ID, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if err := f.products.UpdateFields(product.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("disable product: %v", err)
	}
	_, err := f.submissionSvc.CreateSubmission(buyer.ID, CreateSubmissionInput{Title: "x", ProductID: product.ID, Clients: clientsN(1)})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product err = %v", err)
	}

	var n int64
	f.db.Model(&models.Submission{}).Count(&n)
	if n != 0 {
		t.Fatalf("failed creations left %d submissions", n)
	}
}

func TestCreateSubmissionWithCoupon(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	seller := f.user(t, "Seller", nil)
	f.customPrice(t, seller.ID, product.ID, "175")
	buyer := f.user(t, "Buyer", seller)

	c, err := f.couponSvc.CreateCoupon(seller.ID, CreateCouponInput{
		ProductID: product.ID, Code: "DEZ", DiscountType: domain.DiscountPercentage, DiscountValue: dec("10"),
	})
	if err != nil {
		t.Fatalf("coupon: %v", err)
	}

	sub, err := f.submissionSvc.CreateSubmission(buyer.ID, CreateSubmissionInput{
		Title: "Com cupom", ProductID: product.ID, Clients: clientsN(2), CouponID: &c.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertMoney(t, "unit price", sub.UnitPrice, "157.5")
	assertMoney(t, "total", sub.TotalAmount, "315")
	if sub.CouponID == nil || *sub.CouponID != c.ID {
		t.Fatalf("coupon not linked: %v", sub.CouponID)
	}
	stored, _ := f.coupons.GetByID(c.ID)
	if stored.CurrentUses != 1 {
		t.Fatalf("coupon uses = %d, want 1", stored.CurrentUses)
	}

	if err := f.couponSvc.Deactivate(c.ID, seller.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	sub, err = f.submissionSvc.CreateSubmission(buyer.ID, CreateSubmissionInput{
		Title: "Cupom inativo", ProductID: product.ID, Clients: clientsN(1), CouponID: &c.ID,
	})
	if err != nil {
		t.Fatalf("create with inactive coupon: %v", err)
	}
	assertMoney(t, "unit price", sub.UnitPrice, "175")
	if sub.CouponID != nil {
		t.Fatalf("inactive coupon linked: %v", *sub.CouponID)
	}
}

func TestCreateSubmissionRollsBackOnClientInsertFailure(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	seller := f.user(t, "Seller", nil)
	buyer := f.user(t, "Buyer", seller)
	c, err := f.couponSvc.CreateCoupon(seller.ID, CreateCouponInput{
		ProductID: product.ID, Code: "FALHA", DiscountType: domain.DiscountFixed, DiscountValue: dec("5"),
	})
	if err != nil {
		t.Fatalf("coupon: %v", err)
	}

	failing := true
	err = f.db.Callback().Create().Before("gorm:create").Register("test:fail_client_insert", func(tx *gorm.DB) {
		if failing && tx.Statement.Table == "submission_clients" {
			_ = tx.AddError(errors.New("client insert failed"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	in := CreateSubmissionInput{Title: "Lote", ProductID: product.ID, Clients: clientsN(2), CouponID: &c.ID}
	if _, err := f.submissionSvc.CreateSubmission(buyer.ID, in); apperr.KindOf(err) != apperr.InternalError {
		t.Fatalf("err = %v, want InternalError", err)
	}

	var subs, clients int64
	f.db.Unscoped().Model(&models.Submission{}).Count(&subs)
	f.db.Model(&models.SubmissionClient{}).Count(&clients)
	if subs != 0 || clients != 0 {
		t.Fatalf("left %d submissions and %d clients behind", subs, clients)
	}
	stored, _ := f.coupons.GetByID(c.ID)
	if stored.CurrentUses != 0 {
		t.Fatalf("coupon uses = %d after rollback, want 0", stored.CurrentUses)
	}

	failing = false
	sub, err := f.submissionSvc.CreateSubmission(buyer.ID, in)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(sub.Clients) != 2 {
		t.Fatalf("got %d clients, want 2", len(sub.Clients))
	}
	stored, _ = f.coupons.GetByID(c.ID)
	if stored.CurrentUses != 1 {
		t.Fatalf("coupon uses = %d, want 1", stored.CurrentUses)
	}
}

func TestDeleteSubmissionClientRecounts(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	seller := f.user(t, "Seller", nil)
	f.customPrice(t, seller.ID, product.ID, "175")
	buyer := f.user(t, "Buyer", seller)
	stranger := f.user(t, "Stranger", nil)
	sub := f.submission(t, buyer, product, 3)

	if _, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[0].ID, stranger.ID, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger err = %v", err)
	}
	got, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[0].ID, buyer.ID, false)
	if err != nil {
		t.Fatalf("delete client: %v", err)
	}
	if got.Quantity != 2 || len(got.Clients) != 2 {
		t.Fatalf("quantity = %d clients = %d, want 2", got.Quantity, len(got.Clients))
	}
	assertMoney(t, "total", got.TotalAmount, "350")
	assertMoney(t, "unit price", got.UnitPrice, "175")

	if _, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[0].ID, buyer.ID, false); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("deleted twice err = %v", err)
	}

	f.markPaid(t, sub.ID)
	if _, err := f.submissionSvc.DeleteSubmissionClient(sub.Clients[1].ID, 0, true); !errors.Is(err, ErrCannotModifyPaid) {
		t.Fatalf("paid err = %v", err)
	}
}

func TestDeleteMultipleSubmissionsIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	buyer := f.user(t, "Buyer", nil)
	a := f.submission(t, buyer, product, 1)
	b := f.submission(t, buyer, product, 2)
	f.markPaid(t, b.ID)

	_, err := f.submissionSvc.DeleteMultipleSubmissions([]uint{a.ID, b.ID}, buyer.ID, false)
	if !errors.Is(err, ErrCannotModifyPaid) {
		t.Fatalf("err = %v, want ErrCannotModifyPaid", err)
	}
	if _, err := f.submissions.GetByID(a.ID); err != nil {
		t.Fatalf("unpaid submission deleted despite failure: %v", err)
	}

	if _, err := f.submissionSvc.DeleteMultipleSubmissions([]uint{a.ID, 999}, buyer.ID, false); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("missing id err = %v", err)
	}

	n, err := f.submissionSvc.DeleteMultipleSubmissions([]uint{a.ID, a.ID}, buyer.ID, false)
	if err != nil || n != 1 {
		t.Fatalf("delete = (%d, %v), want (1, nil)", n, err)
	}
	if _, err := f.submissionSvc.GetSubmission(a.ID, buyer.ID, false); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("get deleted err = %v", err)
	}
	var clients int64
	f.db.Model(&models.SubmissionClient{}).Where("submission_id = ?", a.ID).Count(&clients)
	if clients != 0 {
		t.Fatalf("%d clients left behind", clients)
	}
}

func TestBulkUpdateClientStatus(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "75")
	buyer := f.user(t, "Buyer", nil)
	sub := f.submission(t, buyer, product, 3)
	ids := []uint{sub.Clients[0].ID, sub.Clients[1].ID}

	if _, err := f.submissionSvc.BulkUpdateClientStatus(ids, "done", nil); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("invalid status err = %v", err)
	}
	if _, err := f.submissionSvc.BulkUpdateClientStatus([]uint{ids[0], 999}, domain.StatusApproved, nil); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("unknown client err = %v", err)
	}
	untouched, _ := f.submissions.GetClient(ids[0])
	if untouched.Status != domain.StatusPending {
		t.Fatalf("failed batch changed client status to %q", untouched.Status)
	}

	notes := "documentação ok"
	affected, err := f.submissionSvc.BulkUpdateClientStatus(ids, domain.StatusApproved, &notes)
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if len(affected) != 1 || affected[0] != sub.ID {
		t.Fatalf("affected = %v", affected)
	}
	got, _ := f.submissions.GetByID(sub.ID)
	if got.Status != domain.StatusApproved {
		t.Fatalf("submission status = %q, want approved", got.Status)
	}
	c, _ := f.submissions.GetClient(ids[1])
	if c.Notes != notes {
		t.Fatalf("notes = %q", c.Notes)
	}
	if f.notifier.count(domain.NotifSubmissionStatus) != 1 {
		t.Fatalf("expected one status notification, got %+v", f.notifier.sent)
	}

	if _, err := f.submissionSvc.UpdateClientStatus(sub.Clients[2].ID, domain.StatusRejected, nil); err != nil {
		t.Fatalf("single update: %v", err)
	}
	got, _ = f.submissions.GetByID(sub.ID)
	if got.Status != domain.StatusApproved {
		t.Fatalf("2 approved vs 1 rejected gave %q", got.Status)
	}
}
