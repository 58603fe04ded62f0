package handler

import (
	"net/http"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CapitalGiroHandler struct {
	svc   *service.CapitalGiroService
	audit *service.AuditService
}

func NewCapitalGiroHandler(svc *service.CapitalGiroService, audit *service.AuditService) *CapitalGiroHandler {
	return &CapitalGiroHandler{svc: svc, audit: audit}
}

type CapitalGiroRequest struct {
	CompanyName     string          `json:"company_name" binding:"required"`
	Document        string          `json:"document" binding:"required"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	Purpose         string          `json:"purpose"`
	Phone           string          `json:"phone"`
}

// Create handles POST /capital-giro.
func (h *CapitalGiroHandler) Create(c *gin.Context) {
	var req CapitalGiroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Create(middleware.GetUserID(c), service.CapitalGiroInput{
		CompanyName:     req.CompanyName,
		Document:        req.Document,
		RequestedAmount: req.RequestedAmount,
		MonthlyRevenue:  req.MonthlyRevenue,
		Purpose:         req.Purpose,
		Phone:           req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListMine handles GET /capital-giro.
func (h *CapitalGiroHandler) ListMine(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(middleware.GetUserID(c), c.Query("status"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

// AdminList handles GET /admin/capital-giro.
func (h *CapitalGiroHandler) AdminList(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(0, c.Query("status"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

type ReviewRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

// Review handles PATCH /admin/capital-giro/:id.
func (h *CapitalGiroHandler) Review(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Review(id, middleware.GetUserID(c), req.Status, req.AdminNotes)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "capital_giro.review", "capital_giro_request", id, map[string]interface{}{"status": req.Status})
	ok(c, http.StatusOK, r)
}
