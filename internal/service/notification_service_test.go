package service

import (
	"testing"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/repository"
)

type fakePusher struct {
	pushed map[uint]int
}

func (p *fakePusher) PushToUser(userID uint, payload interface{}) {
	p.pushed[userID]++
}

func TestNotificationService(t *testing.T) {
	f := newFixture(t)
	pusher := &fakePusher{pushed: map[uint]int{}}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), pusher)
	owner := f.user(t, "Owner", nil)
	other := f.user(t, "Other", nil)

	for i := 0; i < 2; i++ {
		if err := svc.Notify(owner.ID, domain.NotifPaymentConfirmed, "Pagamento", "ok", map[string]interface{}{"submission_id": i}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if pusher.pushed[owner.ID] != 2 {
		t.Fatalf("pushes = %d, want 2", pusher.pushed[owner.ID])
	}

	list, err := svc.List(owner.ID, true, 20, 0)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %d %v", len(list), err)
	}

	if err := svc.MarkRead(list[0].ID, other.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("foreign mark read err = %v", err)
	}
	if err := svc.MarkRead(list[0].ID, owner.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := svc.MarkRead(list[0].ID, owner.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("mark read twice err = %v", err)
	}
	if err := svc.MarkAllRead(owner.ID); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	unread, _ := svc.List(owner.ID, true, 20, 0)
	if len(unread) != 0 {
		t.Fatalf("%d unread after mark all", len(unread))
	}
}
