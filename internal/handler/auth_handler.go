package handler

import (
	"net/http"

	"hubln/internal/middleware"
	"hubln/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc       *service.AuthService
	referrals *service.ReferralService
}

func NewAuthHandler(svc *service.AuthService, referrals *service.ReferralService) *AuthHandler {
	return &AuthHandler{svc: svc, referrals: referrals}
}

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Document     string `json:"document"`
	Phone        string `json:"phone"`
	ReferralCode string `json:"referral_code"` // optional: referrer's code
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, tokens, err := h.svc.Register(service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Document:     req.Document,
		Phone:        req.Phone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, tokens, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tokens, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, tokens)
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.svc.Me(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Document *string `json:"document"`
	PixKey   *string `json:"pix_key"`
}

// UpdateProfile handles PATCH /me.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.UpdateProfile(middleware.GetUserID(c), service.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Document: req.Document,
		PixKey:   req.PixKey,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// ReferralNetwork handles GET /me/referrals.
func (h *AuthHandler) ReferralNetwork(c *gin.Context) {
	page, limit := parsePagination(c)
	net, err := h.referrals.GetMyReferralNetwork(middleware.GetUserID(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, net)
}
