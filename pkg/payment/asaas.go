package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAsaasBaseURL = "https://sandbox.asaas.com/api/v3"

// AsaasGateway talks to the Asaas v3 REST API.
type AsaasGateway struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewAsaasGateway(baseURL, apiKey string, timeout time.Duration) *AsaasGateway {
	if baseURL == "" {
		baseURL = defaultAsaasBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AsaasGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *AsaasGateway) do(ctx context.Context, method, path string, in, out interface{}) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("access_token", g.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asaas %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb apiErrorBody
		_ = json.Unmarshal(raw, &eb)
		apiErr := eb.toError(resp.StatusCode, raw)
		slog.Warn("asaas request failed", "method", method, "path", path, "status", resp.StatusCode, "error", apiErr.Message)
		return raw, apiErr
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("asaas decode %s: %w", path, err)
		}
	}
	return raw, nil
}

type asaasCustomerReq struct {
	Name        string `json:"name"`
	CpfCnpj     string `json:"cpfCnpj"`
	Email       string `json:"email,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
}

func (g *AsaasGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var out Customer
	_, err := g.do(ctx, http.MethodPost, "/customers", asaasCustomerReq{
		Name:        req.Name,
		CpfCnpj:     req.Document,
		Email:       req.Email,
		MobilePhone: req.Phone,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type asaasPaymentReq struct {
	Customer          string      `json:"customer"`
	BillingType       string      `json:"billingType"`
	Value             json.Number `json:"value"`
	DueDate           string      `json:"dueDate"`
	Description       string      `json:"description,omitempty"`
	ExternalReference string      `json:"externalReference,omitempty"`
}

func (g *AsaasGateway) CreatePixPayment(ctx context.Context, req PixPaymentRequest) (*Payment, error) {
	var out Payment
	raw, err := g.do(ctx, http.MethodPost, "/payments", asaasPaymentReq{
		Customer:          req.CustomerID,
		BillingType:       "PIX",
		Value:             json.Number(req.Amount.StringFixed(2)),
		DueDate:           req.DueDate.Format("2006-01-02"),
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

func (g *AsaasGateway) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	raw, err := g.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

type asaasBillingInfo struct {
	Pix *BillingInfo `json:"pix"`
}

func (g *AsaasGateway) GetBillingInfo(ctx context.Context, id string) (*BillingInfo, error) {
	var out asaasBillingInfo
	if _, err := g.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id)+"/billingInfo", nil, &out); err != nil {
		return nil, err
	}
	if out.Pix == nil {
		return &BillingInfo{}, nil
	}
	return out.Pix, nil
}
