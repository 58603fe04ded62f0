package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

// StubGateway is an in-memory Gateway for development and tests. Charges
// stay PENDING until SetStatus is called.
type StubGateway struct {
	seq      atomic.Int64
	mu       sync.Mutex
	payments map[string]*Payment
	// Fail, when set, is returned by every call.
	Fail error
}

func NewStubGateway() *StubGateway {
	return &StubGateway{payments: make(map[string]*Payment)}
}

func (s *StubGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	return &Customer{ID: fmt.Sprintf("cus_stub_%d", s.seq.Add(1)), Name: req.Name}, nil
}

func (s *StubGateway) CreatePixPayment(ctx context.Context, req PixPaymentRequest) (*Payment, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	id := fmt.Sprintf("pay_stub_%d", s.seq.Add(1))
	p := &Payment{
		ID:                id,
		Status:            StatusPending,
		InvoiceURL:        "https://sandbox.asaas.com/i/" + id,
		DueDate:           req.DueDate.Format("2006-01-02"),
		ExternalReference: req.ExternalReference,
	}
	p.Raw, _ = json.Marshal(p)
	s.mu.Lock()
	s.payments[id] = p
	s.mu.Unlock()
	cp := *p
	return &cp, nil
}

func (s *StubGateway) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, Code: "not_found", Message: "payment not found"}
	}
	cp := *p
	cp.Raw, _ = json.Marshal(p)
	return &cp, nil
}

func (s *StubGateway) GetBillingInfo(ctx context.Context, id string) (*BillingInfo, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	return &BillingInfo{QRCodeImage: "", QRCodePayload: "00020126stub" + id}, nil
}

// SetStatus changes a stored charge's status.
func (s *StubGateway) SetStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if ok {
		p.Status = status
	}
	return ok
}
