package handler

import (
	"net/http"
	"strconv"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	unread, _ := strconv.ParseBool(c.Query("unread"))
	list, err := h.svc.List(middleware.GetUserID(c), unread, limit, (page-1)*limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.MarkRead(id, middleware.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusOK, nil, "notification marked as read")
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(middleware.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, http.StatusOK, nil, "all notifications marked as read")
}
