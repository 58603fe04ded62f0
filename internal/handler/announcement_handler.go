package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

type AnnouncementHandler struct {
	svc   *service.AnnouncementService
	audit *service.AuditService
}

func NewAnnouncementHandler(svc *service.AnnouncementService, audit *service.AuditService) *AnnouncementHandler {
	return &AnnouncementHandler{svc: svc, audit: audit}
}

// List handles GET /announcements.
func (h *AnnouncementHandler) List(c *gin.Context) {
	list, err := h.svc.ListVisible(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// AdminList handles GET /admin/announcements.
func (h *AnnouncementHandler) AdminList(c *gin.Context) {
	list, err := h.svc.ListAll()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// bindAnnouncement reads multipart form fields; absent fields stay nil.
func bindAnnouncement(c *gin.Context) (service.AnnouncementInput, *service.Image, error) {
	var in service.AnnouncementInput
	if v, okField := c.GetPostForm("title"); okField {
		in.Title = &v
	}
	if v, okField := c.GetPostForm("content"); okField {
		in.Content = &v
	}
	if v, okField := c.GetPostForm("is_active"); okField {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, nil, apperr.Invalid("is_active must be true or false")
		}
		in.IsActive = &b
	}
	if v, okField := c.GetPostForm("priority"); okField {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, nil, apperr.Invalid("priority must be an integer")
		}
		in.Priority = &n
	}
	if v, okField := c.GetPostForm("expires_at"); okField {
		if strings.TrimSpace(v) == "" {
			in.ClearExpiry = true
		} else {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return in, nil, apperr.Invalid("expires_at must be RFC3339")
			}
			in.ExpiresAt = &t
		}
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return in, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return in, nil, apperr.Internal(err)
	}
	return in, &service.Image{Reader: f, Name: fh.Filename}, nil
}

func closeImage(img *service.Image) {
	if img == nil {
		return
	}
	if cl, isCloser := img.Reader.(interface{ Close() error }); isCloser {
		_ = cl.Close()
	}
}

// Create handles POST /admin/announcements.
func (h *AnnouncementHandler) Create(c *gin.Context) {
	in, img, err := bindAnnouncement(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeImage(img)
	a, err := h.svc.Create(c.Request.Context(), middleware.GetUserID(c), in, img)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "announcement.create", "announcement", a.ID, nil)
	ok(c, http.StatusCreated, a)
}

// Update handles PATCH /admin/announcements/:id.
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	in, img, err := bindAnnouncement(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeImage(img)
	a, err := h.svc.Update(c.Request.Context(), id, in, img)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "announcement.update", "announcement", id, nil)
	ok(c, http.StatusOK, a)
}

// Delete handles DELETE /admin/announcements/:id.
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	h.audit.Record(actor(c), "announcement.delete", "announcement", id, nil)
	okMsg(c, http.StatusOK, nil, "announcement deleted")
}
