package handler

import (
	"io"
	"net/http"
	"strconv"

	"hubln/internal/apperr"
	"hubln/internal/middleware"
	"hubln/internal/repository"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

const maxSpreadsheetBytes = 10 << 20

type SubmissionHandler struct {
	svc     *service.SubmissionService
	status  *service.StatusService
	imports *service.ImportService
	subs    *repository.SubmissionRepository
	audit   *service.AuditService
}

func NewSubmissionHandler(
	svc *service.SubmissionService,
	status *service.StatusService,
	imports *service.ImportService,
	subs *repository.SubmissionRepository,
	audit *service.AuditService,
) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, status: status, imports: imports, subs: subs, audit: audit}
}

type CreateSubmissionRequest struct {
	Title     string               `json:"title" binding:"required"`
	ProductID uint                 `json:"product_id" binding:"required"`
	Clients   []service.ClientData `json:"clients" binding:"required,min=1"`
	Notes     string               `json:"notes"`
	CouponID  *uint                `json:"coupon_id"`
}

// Create handles POST /submissions.
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.svc.CreateSubmission(middleware.GetUserID(c), service.CreateSubmissionInput{
		Title:     req.Title,
		ProductID: req.ProductID,
		Clients:   req.Clients,
		Notes:     req.Notes,
		CouponID:  req.CouponID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, sub)
}

func filterFromQuery(c *gin.Context) repository.SubmissionFilter {
	f := repository.SubmissionFilter{Status: c.Query("status"), Search: c.Query("search")}
	if v, err := strconv.ParseBool(c.Query("is_paid")); err == nil {
		f.IsPaid = &v
	}
	return f
}

// ListMine handles GET /submissions.
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	page, limit := parsePagination(c)
	f := filterFromQuery(c)
	f.UserID = middleware.GetUserID(c)
	list, total, err := h.svc.List(f, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

// AdminList handles GET /admin/submissions.
func (h *SubmissionHandler) AdminList(c *gin.Context) {
	page, limit := parsePagination(c)
	f := filterFromQuery(c)
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		f.UserID = uint(v)
	}
	list, total, err := h.svc.List(f, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

// Get handles GET /submissions/:id.
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	sub, err := h.svc.GetSubmission(id, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sub)
}

// Status handles GET /submissions/:id/status.
func (h *SubmissionHandler) Status(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if _, err := h.svc.GetSubmission(id, middleware.GetUserID(c), middleware.IsAdmin(c)); err != nil {
		fail(c, err)
		return
	}
	status, err := h.status.CalculateSubmissionStatus(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"submission_id": id, "status": status})
}

// Delete handles DELETE /submissions/:id.
func (h *SubmissionHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteSubmission(id, middleware.GetUserID(c), middleware.IsAdmin(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusOK, nil, "submission deleted")
}

type IDsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// DeleteMany handles POST /submissions/delete.
func (h *SubmissionHandler) DeleteMany(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.svc.DeleteMultipleSubmissions(req.IDs, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusOK, gin.H{"deleted": n}, strconv.Itoa(n)+" submissions deleted")
}

// DeleteClient handles DELETE /submissions/clients/:id.
func (h *SubmissionHandler) DeleteClient(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	sub, err := h.svc.DeleteSubmissionClient(id, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sub)
}

// ParseSpreadsheet handles POST /submissions/spreadsheet (multipart "file").
func (h *SubmissionHandler) ParseSpreadsheet(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.Invalid("file is required"))
		return
	}
	if fh.Size > maxSpreadsheetBytes {
		fail(c, apperr.Invalid("file is larger than 10MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxSpreadsheetBytes))
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	res, err := h.imports.ParseSpreadsheet(c.Request.Context(), middleware.GetUserID(c), fh.Filename, data)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// AdminListClients handles GET /admin/clients.
func (h *SubmissionHandler) AdminListClients(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.subs.ListClients(c.Query("status"), c.Query("search"), page, limit)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	ok(c, http.StatusOK, pageResult{Items: list, Total: total, Page: page, Limit: limit})
}

type ClientStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// UpdateClientStatus handles PATCH /admin/clients/:id/status.
func (h *SubmissionHandler) UpdateClientStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req ClientStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	affected, err := h.svc.UpdateClientStatus(id, req.Status, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "client.status", "submission_client", id, map[string]interface{}{"status": req.Status})
	ok(c, http.StatusOK, gin.H{"submission_ids": affected})
}

type BulkClientStatusRequest struct {
	ClientIDs []uint  `json:"client_ids" binding:"required,min=1"`
	Status    string  `json:"status" binding:"required"`
	Notes     *string `json:"notes"`
}

// BulkUpdateClientStatus handles POST /admin/clients/status.
func (h *SubmissionHandler) BulkUpdateClientStatus(c *gin.Context) {
	var req BulkClientStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	affected, err := h.svc.BulkUpdateClientStatus(req.ClientIDs, req.Status, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "client.status.bulk", "submission_client", "", map[string]interface{}{
		"status": req.Status, "client_ids": req.ClientIDs,
	})
	ok(c, http.StatusOK, gin.H{"submission_ids": affected, "updated": len(req.ClientIDs)})
}

// RecomputeStatus handles POST /admin/submissions/:id/status.
func (h *SubmissionHandler) RecomputeStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	status, err := h.status.UpdateSubmissionStatus(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"submission_id": id, "status": status})
}
