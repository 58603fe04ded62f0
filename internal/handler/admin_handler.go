package handler

import (
	"net/http"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc   *service.AdminService
	audit *service.AuditService
}

func NewAdminHandler(svc *service.AdminService, audit *service.AuditService) *AdminHandler {
	return &AdminHandler{svc: svc, audit: audit}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	users, total, err := h.svc.ListUsers(c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: users, Total: total, Page: page, Limit: limit})
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	u, err := h.svc.GetUser(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateRole handles PATCH /admin/users/:id/role.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.UpdateUserRole(middleware.GetUserID(c), id, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "user.role", "user", id, map[string]interface{}{"role": req.Role})
	ok(c, http.StatusOK, u)
}

// SetActive handles PATCH /admin/users/:id/active.
func (h *AdminHandler) SetActive(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.SetUserActive(middleware.GetUserID(c), id, *req.Active)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "user.active", "user", id, map[string]interface{}{"active": *req.Active})
	ok(c, http.StatusOK, u)
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.svc.Settings()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// UpdateSetting handles PUT /admin/settings.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.SetSetting(middleware.GetUserID(c), req.Key, req.Value); err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "setting.update", "system_setting", req.Key, map[string]interface{}{"value": req.Value})
	okMsg(c, http.StatusOK, gin.H{"key": req.Key, "value": req.Value}, "setting updated")
}

// AuditLogs handles GET /admin/audit-logs.
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.audit.List(c.Query("resource"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}
