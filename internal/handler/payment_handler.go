package handler

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"hubln/internal/apperr"
	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc          *service.PaymentService
	webhookToken string
}

func NewPaymentHandler(svc *service.PaymentService, webhookToken string) *PaymentHandler {
	return &PaymentHandler{svc: svc, webhookToken: webhookToken}
}

// Create handles POST /submissions/:id/payment.
func (h *PaymentHandler) Create(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	info, err := h.svc.CreateSubmissionPayment(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, info)
}

// Sync handles POST /submissions/:id/payment/sync.
func (h *PaymentHandler) Sync(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	info, err := h.svc.SyncSubmissionPayment(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, info)
}

// List handles GET /submissions/:id/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	list, err := h.svc.ListPayments(id, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// AsaasWebhook handles POST /webhooks/asaas. Asaas retries on non-2xx, so
// only authentication and malformed bodies are rejected.
func (h *PaymentHandler) AsaasWebhook(c *gin.Context) {
	if h.webhookToken != "" {
		got := c.GetHeader("asaas-access-token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookToken)) != 1 {
			slog.Warn("asaas webhook with invalid token", "ip", c.ClientIP())
			fail(c, apperr.New(apperr.Forbidden, "InvalidWebhookToken", "invalid webhook token"))
			return
		}
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		badRequest(c, err)
		return
	}
	var ev service.WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.HandleWebhook(ev, raw); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"received": true})
}
