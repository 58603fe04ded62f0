package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Asaas payment statuses this module reacts to.
const (
	StatusPending   = "PENDING"
	StatusReceived  = "RECEIVED"
	StatusConfirmed = "CONFIRMED"
	StatusOverdue   = "OVERDUE"
	StatusRefunded  = "REFUNDED"
)

// IsFinal reports whether a charge in this status will not change to paid.
func IsFinal(status string) bool {
	switch status {
	case StatusReceived, StatusRefunded, StatusOverdue:
		return true
	}
	return false
}

type CustomerRequest struct {
	Name     string
	Document string
	Email    string
	Phone    string
}

type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PixPaymentRequest struct {
	CustomerID        string
	Amount            decimal.Decimal
	DueDate           time.Time
	Description       string
	ExternalReference string
}

type Payment struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	InvoiceURL        string `json:"invoiceUrl"`
	DueDate           string `json:"dueDate"`
	ExternalReference string `json:"externalReference"`
	// Raw is the gateway's response body as received.
	Raw []byte `json:"-"`
}

type BillingInfo struct {
	QRCodeImage    string `json:"encodedImage"`
	QRCodePayload  string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

// Gateway is the PIX charge API used by the payment flow.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	CreatePixPayment(ctx context.Context, req PixPaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	GetBillingInfo(ctx context.Context, id string) (*BillingInfo, error)
}

// APIError is a non-2xx gateway response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("asaas %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("asaas %d: %s", e.StatusCode, e.Message)
}

type apiErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

func (b apiErrorBody) toError(status int, raw []byte) *APIError {
	e := &APIError{StatusCode: status}
	if len(b.Errors) == 0 {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = "empty response"
		}
		return e
	}
	e.Code = b.Errors[0].Code
	msgs := make([]string, 0, len(b.Errors))
	for _, item := range b.Errors {
		msgs = append(msgs, item.Description)
	}
	e.Message = strings.Join(msgs, "; ")
	return e
}
