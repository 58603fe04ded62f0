package service

import (
	"errors"
	"testing"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/repository"
)

func TestCapitalGiroReview(t *testing.T) {
	f := newFixture(t)
	svc := NewCapitalGiroService(repository.NewCapitalGiroRepository(f.db), f.notifier)
	owner := f.user(t, "Owner", nil)
	admin := f.user(t, "Admin", nil)

	if _, err := svc.Create(owner.ID, CapitalGiroInput{CompanyName: "Loja", Document: "123", RequestedAmount: dec("1000")}); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("bad document err = %v", err)
	}
	req, err := svc.Create(owner.ID, CapitalGiroInput{
		CompanyName:     " Loja  do Bairro ",
		Document:        "11.222.333/0001-81",
		RequestedAmount: dec("50000"),
		MonthlyRevenue:  dec("12000.505"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.CompanyName != "Loja do Bairro" || req.Status != domain.CapitalGiroPending {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := svc.Review(req.ID, admin.ID, "maybe", ""); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("invalid status err = %v", err)
	}
	if _, err := svc.Review(req.ID, admin.ID, domain.CapitalGiroUnderReview, "analisando"); err != nil {
		t.Fatalf("under review: %v", err)
	}
	got, err := svc.Review(req.ID, admin.ID, domain.CapitalGiroApproved, "aprovado")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != admin.ID || got.AdminNotes != "aprovado" {
		t.Fatalf("review not recorded: %+v", got)
	}
	if _, err := svc.Review(req.ID, admin.ID, domain.CapitalGiroRejected, ""); !errors.Is(err, ErrCapitalGiroFinal) {
		t.Fatalf("re-review err = %v", err)
	}
	if f.notifier.count(domain.NotifCapitalGiro) != 2 {
		t.Fatalf("notifications = %d, want 2", f.notifier.count(domain.NotifCapitalGiro))
	}

	mine, total, err := svc.List(owner.ID, "", 1, 20)
	if err != nil || total != 1 || len(mine) != 1 {
		t.Fatalf("list: %d %d %v", total, len(mine), err)
	}
}
