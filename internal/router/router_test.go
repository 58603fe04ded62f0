package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hubln/config"
	"hubln/internal/database"
	"hubln/internal/ws"
	"hubln/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := database.OpenSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "hubln-test",
		},
		Asaas:     config.AsaasConfig{WebhookToken: "whsec"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
		Admin:     config.AdminSeedConfig{Name: "Admin", Email: "admin@hubln.test", Password: "admin-pass"},
	}
	if err := database.SeedSettings(db); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	if err := database.SeedAdmin(db, &cfg.Admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	engine := Setup(Deps{
		Config:  cfg,
		DB:      db,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Gateway: payment.NewStubGateway(),
		Hub:     ws.NewHub(),
	})
	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) call(method, path, token string, body interface{}, headers ...string) (int, envelope) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func (a *testAPI) must(status int, method, path, token string, body interface{}, out interface{}) {
	a.t.Helper()
	code, env := a.call(method, path, token, body)
	if code != status || !env.Success {
		a.t.Fatalf("%s %s = %d %s: %s, want %d", method, path, code, env.Code, env.Error, status)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			a.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
}

type session struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID           uint    `json:"id"`
		ReferralCode string  `json:"referral_code"`
		ReferredBy   *string `json:"referred_by"`
	} `json:"user"`
}

func TestReferralSaleEndToEnd(t *testing.T) {
	api := newTestAPI(t)

	var admin session
	api.must(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@hubln.test", "password": "admin-pass"}, &admin)

	var product struct {
		ID uint `json:"id"`
	}
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/admin/products", admin.AccessToken,
		gin.H{"name": "Limpa Nome", "base_price": "75"}, &product)

	var seller session
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "",
		gin.H{"name": "Vendedora", "email": "seller@hubln.test", "password": "senha-forte"}, &seller)
	api.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/api/v1/me/prices/%d", product.ID), seller.AccessToken,
		gin.H{"custom_price": "175"}, nil)

	var buyer session
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Comprador", "email": "buyer@hubln.test", "password": "senha-forte",
		"document": "529.982.247-25", "referral_code": seller.User.ReferralCode,
	}, &buyer)
	if buyer.User.ReferredBy == nil || *buyer.User.ReferredBy != seller.User.ReferralCode {
		t.Fatalf("buyer not linked to seller: %+v", buyer.User)
	}

	var sub struct {
		ID          uint            `json:"id"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		TotalAmount decimal.Decimal `json:"total_amount"`
		Quantity    int             `json:"quantity"`
	}
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/submissions", buyer.AccessToken, gin.H{
		"title":      "Lote 1",
		"product_id": product.ID,
		"clients": []gin.H{
			{"name": "Cliente Um", "document": "11111111111"},
			{"name": "Cliente Dois", "document": "22222222222"},
			{"name": "Cliente Tres", "document": "11222333000181"},
		},
	}, &sub)
	if sub.Quantity != 3 || !sub.UnitPrice.Equal(decimal.NewFromInt(175)) || !sub.TotalAmount.Equal(decimal.NewFromInt(525)) {
		t.Fatalf("unexpected submission: %+v", sub)
	}

	var pay struct {
		PaymentID string `json:"payment_id"`
		IsPaid    bool   `json:"is_paid"`
	}
	api.must(http.StatusOK, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/payment", sub.ID), buyer.AccessToken, nil, &pay)
	if pay.PaymentID == "" || pay.IsPaid {
		t.Fatalf("unexpected payment: %+v", pay)
	}

	hook := gin.H{"event": "PAYMENT_RECEIVED", "payment": gin.H{"id": pay.PaymentID, "status": payment.StatusReceived}}
	if code, _ := api.call(http.MethodPost, "/api/v1/webhooks/asaas", "", hook, "asaas-access-token", "wrong"); code != http.StatusForbidden {
		t.Fatalf("webhook with bad token = %d, want 403", code)
	}
	if code, env := api.call(http.MethodPost, "/api/v1/webhooks/asaas", "", hook, "asaas-access-token", "whsec"); code != http.StatusOK || !env.Success {
		t.Fatalf("webhook = %d %+v", code, env)
	}
	if code, _ := api.call(http.MethodPost, "/api/v1/webhooks/asaas", "", hook, "asaas-access-token", "whsec"); code != http.StatusOK {
		t.Fatalf("replayed webhook = %d", code)
	}

	var balance struct {
		Available decimal.Decimal `json:"available"`
		Pending   decimal.Decimal `json:"pending"`
	}
	api.must(http.StatusOK, http.MethodGet, "/api/v1/commissions/balance", seller.AccessToken, nil, &balance)
	if !balance.Pending.Equal(decimal.NewFromInt(300)) || !balance.Available.IsZero() {
		t.Fatalf("unexpected balance: %+v", balance)
	}

	if code, env := api.call(http.MethodDelete, fmt.Sprintf("/api/v1/submissions/%d", sub.ID), buyer.AccessToken, nil); code != http.StatusConflict || env.Code != "CannotModifyPaid" {
		t.Fatalf("delete paid = %d %+v", code, env)
	}
}

func TestAccessControl(t *testing.T) {
	api := newTestAPI(t)

	if code, env := api.call(http.MethodGet, "/api/v1/me", "", nil); code != http.StatusUnauthorized || env.Success {
		t.Fatalf("anonymous /me = %d", code)
	}
	if code, _ := api.call(http.MethodGet, "/api/v1/me", "not-a-token", nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token /me = %d", code)
	}

	var user session
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "",
		gin.H{"name": "Usuario", "email": "user@hubln.test", "password": "senha-forte"}, &user)
	if code, _ := api.call(http.MethodGet, "/api/v1/admin/dashboard", user.AccessToken, nil); code != http.StatusForbidden {
		t.Fatalf("user on admin route = %d, want 403", code)
	}
	if code, env := api.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "user@hubln.test", "password": "errada"}); code != http.StatusUnauthorized || env.Code != "InvalidCredentials" {
		t.Fatalf("wrong password = %d %+v", code, env)
	}

	var admin session
	api.must(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@hubln.test", "password": "admin-pass"}, &admin)
	api.must(http.StatusOK, http.MethodGet, "/api/v1/admin/dashboard", admin.AccessToken, nil, nil)
	if code, _ := api.call(http.MethodPatch, fmt.Sprintf("/api/v1/admin/users/%d/active", admin.User.ID), admin.AccessToken, gin.H{"active": false}); code != http.StatusBadRequest {
		t.Fatalf("admin disabling self = %d", code)
	}
}

func TestCouponUsageIsAdminOnly(t *testing.T) {
	api := newTestAPI(t)

	var admin session
	api.must(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@hubln.test", "password": "admin-pass"}, &admin)
	var product struct {
		ID uint `json:"id"`
	}
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/admin/products", admin.AccessToken,
		gin.H{"name": "Limpa Nome", "base_price": "75"}, &product)

	register := func(name, email string) session {
		var s session
		api.must(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "",
			gin.H{"name": name, "email": email, "password": "senha-forte"}, &s)
		return s
	}
	seller := register("Vendedora", "seller@hubln.test")
	buyer := register("Comprador", "buyer@hubln.test")
	stranger := register("Estranho", "stranger@hubln.test")

	var coupon struct {
		ID uint `json:"id"`
	}
	api.must(http.StatusCreated, http.MethodPost, "/api/v1/coupons", seller.AccessToken, gin.H{
		"product_id": product.ID, "code": "umavez", "discount_type": "percentage",
		"discount_value": "10", "is_unique": true,
	}, &coupon)
	usePath := fmt.Sprintf("/api/v1/admin/coupons/%d/use", coupon.ID)

	if code, _ := api.call(http.MethodPost, usePath, stranger.AccessToken, nil); code != http.StatusForbidden {
		t.Fatalf("stranger consuming a coupon = %d, want 403", code)
	}
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/coupons/%d/use", coupon.ID), nil)
	req.Header.Set("Authorization", "Bearer "+stranger.AccessToken)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("user-level coupon use route = %d, want 404", w.Code)
	}

	validate := gin.H{"code": "UMAVEZ", "product_id": product.ID}
	api.must(http.StatusOK, http.MethodPost, "/api/v1/coupons/validate", buyer.AccessToken, validate, nil)

	api.must(http.StatusOK, http.MethodPost, usePath, admin.AccessToken, nil, nil)
	if code, env := api.call(http.MethodPost, "/api/v1/coupons/validate", buyer.AccessToken, validate); code != http.StatusConflict || env.Code != "Exhausted" || env.Error == "" {
		t.Fatalf("validate after admin use = %d %+v", code, env)
	}
}
