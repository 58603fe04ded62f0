package handler

import (
	"net/http"
	"strconv"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	products *service.ProductService
	pricing  *service.PricingService
	audit    *service.AuditService
}

func NewProductHandler(products *service.ProductService, pricing *service.PricingService, audit *service.AuditService) *ProductHandler {
	return &ProductHandler{products: products, pricing: pricing, audit: audit}
}

// ListOffers handles GET /products: active products with the caller's price.
func (h *ProductHandler) ListOffers(c *gin.Context) {
	offers, err := h.pricing.ListOffers(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, offers)
}

// ResolvePrice handles GET /products/:id/price.
func (h *ProductHandler) ResolvePrice(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	price, err := h.pricing.ResolvePrice(middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"product_id": id, "price": price.StringFixed(2)})
}

type CustomPriceRequest struct {
	CustomPrice decimal.Decimal `json:"custom_price"`
}

// SetCustomPrice handles PUT /me/prices/:id.
func (h *ProductHandler) SetCustomPrice(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req CustomPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.pricing.SetCustomPrice(middleware.GetUserID(c), id, req.CustomPrice)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteCustomPrice handles DELETE /me/prices/:id.
func (h *ProductHandler) DeleteCustomPrice(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.pricing.DeleteCustomPrice(middleware.GetUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusOK, nil, "custom price removed")
}

// ListMyPrices handles GET /me/prices.
func (h *ProductHandler) ListMyPrices(c *gin.Context) {
	list, err := h.pricing.ListCustomPrices(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	IsActive    *bool           `json:"is_active"`
}

// AdminList handles GET /admin/products.
func (h *ProductHandler) AdminList(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "true"))
	list, err := h.products.List(includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// Create handles POST /admin/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := h.products.Create(service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		IsActive:    active,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "product.create", "product", p.ID, map[string]interface{}{"base_price": p.BasePrice.StringFixed(2)})
	ok(c, http.StatusCreated, p)
}

type ProductUpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	IsActive    *bool            `json:"is_active"`
}

// Update handles PATCH /admin/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.products.Update(id, service.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		IsActive:    req.IsActive,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "product.update", "product", p.ID, nil)
	ok(c, http.StatusOK, p)
}
