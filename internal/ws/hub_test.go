package ws

import (
	"encoding/json"
	"testing"
)

func TestHubPushToUser(t *testing.T) {
	h := NewHub()
	a1, a2, b := NewClient(1), NewClient(1), NewClient(2)
	h.Register(a1)
	h.Register(a2)
	h.Register(b)

	h.PushToUser(1, map[string]string{"type": "notification"})

	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.Send:
			var got map[string]string
			if err := json.Unmarshal(msg, &got); err != nil || got["type"] != "notification" {
				t.Fatalf("unexpected message %s (%v)", msg, err)
			}
		default:
			t.Fatal("expected a message for user 1")
		}
	}
	select {
	case <-b.Send:
		t.Fatal("user 2 must not receive user 1's push")
	default:
	}
}

func TestClientCloseUnregisters(t *testing.T) {
	h := NewHub()
	c := NewClient(5)
	h.Register(c)
	c.Close()
	c.Close()
	if n := h.ConnectionCount(5); n != 0 {
		t.Fatalf("expected 0 connections, got %d", n)
	}
	h.PushToUser(5, "ignored")
}
