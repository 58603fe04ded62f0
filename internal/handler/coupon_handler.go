package handler

import (
	"net/http"
	"time"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CouponHandler struct {
	svc   *service.CouponService
	audit *service.AuditService
}

func NewCouponHandler(svc *service.CouponService, audit *service.AuditService) *CouponHandler {
	return &CouponHandler{svc: svc, audit: audit}
}

type CreateCouponRequest struct {
	ProductID     uint            `json:"product_id" binding:"required"`
	Code          string          `json:"code" binding:"required"`
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsUnique      bool            `json:"is_unique"`
	MaxUses       *int            `json:"max_uses"`
	ExpiresAt     *time.Time      `json:"expires_at"`
}

// Create handles POST /coupons.
func (h *CouponHandler) Create(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	coupon, err := h.svc.CreateCoupon(middleware.GetUserID(c), service.CreateCouponInput{
		ProductID:     req.ProductID,
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		IsUnique:      req.IsUnique,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, coupon)
}

// ListMine handles GET /coupons.
func (h *CouponHandler) ListMine(c *gin.Context) {
	list, err := h.svc.ListMine(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

type ValidateCouponRequest struct {
	Code      string `json:"code" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
}

// Validate handles POST /coupons/validate. The caller is always the
// requesting user, so self-use and their live price are checked.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	uid := middleware.GetUserID(c)
	res, err := h.svc.ValidateCoupon(req.Code, req.ProductID, &uid)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// Use handles POST /admin/coupons/:id/use. Submissions consume their coupon
// on creation; this is a manual correction for redemptions made elsewhere.
func (h *CouponHandler) Use(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.UseCoupon(id); err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "coupon.use", "coupon", id, nil)
	okMsg(c, http.StatusOK, nil, "coupon usage recorded")
}

// Deactivate handles DELETE /coupons/:id.
func (h *CouponHandler) Deactivate(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Deactivate(id, middleware.GetUserID(c), middleware.IsAdmin(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusOK, nil, "coupon deactivated")
}
