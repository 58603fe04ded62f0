package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"hubln/internal/apperr"
	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response. Clients must treat
// success=false as the only failure signal. On failure Error carries the
// user-facing message and Code the stable machine-readable name.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func okMsg(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Conflict, apperr.StateConflict:
		return http.StatusConflict
	case apperr.ExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail converts err into the failure envelope. Internal and gateway
// failures are logged and reported to Sentry; their causes never reach
// the client.
func fail(c *gin.Context, err error) {
	e := apperr.As(err)
	status := statusFor(e.Kind)
	if e.Kind == apperr.InternalError || e.Kind == apperr.ExternalServiceError {
		slog.Error("request failed",
			"path", c.FullPath(), "method", c.Request.Method, "code", e.Code, "error", err,
			"request_id", c.GetString("request_id"))
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}
	switch e.Code {
	case service.ErrInvalidCreds.Code, service.ErrInvalidToken.Code:
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: e.Message, Code: e.Code})
}

func badRequest(c *gin.Context, err error) {
	fail(c, apperr.Invalid(err.Error()))
}

// paramID reads a positive integer path parameter, failing the request when
// it is malformed.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, apperr.Invalid("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

type pageResult struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{ID: middleware.GetUserID(c), IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
