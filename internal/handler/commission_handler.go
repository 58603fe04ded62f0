package handler

import (
	"net/http"
	"strconv"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	svc   *service.CommissionService
	audit *service.AuditService
}

func NewCommissionHandler(svc *service.CommissionService, audit *service.AuditService) *CommissionHandler {
	return &CommissionHandler{svc: svc, audit: audit}
}

// ListMine handles GET /commissions.
func (h *CommissionHandler) ListMine(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.ListMine(middleware.GetUserID(c), c.Query("status"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

// Balance handles GET /commissions/balance.
func (h *CommissionHandler) Balance(c *gin.Context) {
	b, err := h.svc.GetAvailableBalance(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

type WithdrawRequest struct {
	CommissionIDs []uint `json:"commission_ids" binding:"required,min=1"`
}

// Withdraw handles POST /commissions/withdraw.
func (h *CommissionHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.svc.WithdrawCommissions(middleware.GetUserID(c), req.CommissionIDs)
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusCreated, w, "withdrawal requested")
}

// ListMyWithdrawals handles GET /withdrawals.
func (h *CommissionHandler) ListMyWithdrawals(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.ListWithdrawals(middleware.GetUserID(c), c.Query("status"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

// AdminListWithdrawals handles GET /admin/withdrawals.
func (h *CommissionHandler) AdminListWithdrawals(c *gin.Context) {
	page, limit := parsePagination(c)
	var userID uint
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		userID = uint(v)
	}
	list, total, err := h.svc.ListWithdrawals(userID, c.Query("status"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

// MarkWithdrawalPaid handles POST /admin/withdrawals/:id/paid.
func (h *CommissionHandler) MarkWithdrawalPaid(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	w, err := h.svc.MarkWithdrawalPaid(id)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "withdrawal.paid", "withdrawal", id, map[string]interface{}{"amount": w.Amount.StringFixed(2)})
	ok(c, http.StatusOK, w)
}

// CreateForSubmission handles POST /admin/submissions/:id/commission.
func (h *CommissionHandler) CreateForSubmission(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.CreateCommissionForSubmission(id)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "commission.create", "submission", id, map[string]interface{}{"created": res.Created})
	okMsg(c, http.StatusOK, res, res.Message)
}
