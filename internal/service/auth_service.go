package service

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"hubln/config"
	"hubln/internal/apperr"
	"hubln/internal/auth"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	cfg       *config.Config
	users     *repository.UserRepository
	referrals *repository.ReferralRepository
}

func NewAuthService(cfg *config.Config, users *repository.UserRepository, referrals *repository.ReferralRepository) *AuthService {
	return &AuthService{cfg: cfg, users: users, referrals: referrals}
}

type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Document     string
	Phone        string
	ReferralCode string
}

// Tokens is an access/refresh JWT pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(in RegisterInput) (*models.User, *Tokens, error) {
	name := SanitizeName(in.Name)
	email := normalizeEmail(in.Email)
	if utf8.RuneCountInString(name) < 2 {
		return nil, nil, apperr.Invalid("name must have at least 2 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperr.Invalid("invalid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, nil, apperr.Invalid("password must have at least 8 characters")
	}
	doc := DigitsOnly(in.Document)
	if doc != "" && !ValidDocument(doc) {
		return nil, nil, apperr.Invalid("document must have 11 or 14 digits")
	}

	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.Internal(err)
	}

	var referredBy *string
	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		if _, err := s.users.GetByReferralCode(code); err != nil {
			return nil, nil, notFound(err, ErrInvalidReferralCode)
		}
		referredBy = &code
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		ReferredBy:   referredBy,
		Document:     doc,
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     true,
	}
	if err := s.referrals.CreateWithCode(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, apperr.Internal(err)
	}
	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

func (s *AuthService) Login(email, password string) (*models.User, *Tokens, error) {
	u, err := s.users.GetByEmail(normalizeEmail(email))
	if err != nil {
		return nil, nil, notFound(err, ErrInvalidCreds)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCreds
	}
	if !u.IsActive {
		return nil, nil, ErrAccountDisabled
	}
	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

func (s *AuthService) Refresh(refreshToken string) (*Tokens, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrInvalidToken)
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *models.User) (*Tokens, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Me(userID uint) (*models.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Document *string
	PixKey   *string
}

func (s *AuthService) UpdateProfile(userID uint, in ProfileUpdate) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := SanitizeName(*in.Name)
		if utf8.RuneCountInString(name) < 2 {
			return nil, apperr.Invalid("name must have at least 2 characters")
		}
		fields["name"] = name
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Document != nil {
		doc := DigitsOnly(*in.Document)
		if doc != "" && !ValidDocument(doc) {
			return nil, apperr.Invalid("document must have 11 or 14 digits")
		}
		fields["document"] = doc
	}
	if in.PixKey != nil {
		fields["pix_key"] = strings.TrimSpace(*in.PixKey)
	}
	if len(fields) > 0 {
		if err := s.users.UpdateFields(userID, fields); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	return s.Me(userID)
}
