package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"hubln/config"
	"hubln/internal/domain"
)

func newAuthService(f *fixture) *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "hubln-test",
	}}
	return NewAuthService(cfg, f.users, f.referrals)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	seller := f.user(t, "Seller", nil)

	u, tokens, err := svc.Register(RegisterInput{
		Name:         "  Nova   Vendedora ",
		Email:        " Nova@HubLN.test ",
		Password:     "senha-forte",
		Document:     "529.982.247-25",
		ReferralCode: " " + strings.ToLower(seller.ReferralCode) + " ",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Name != "Nova Vendedora" || u.Email != "nova@hubln.test" || u.Role != domain.RoleUser || u.Document != "52998224725" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.ReferredBy == nil || *u.ReferredBy != seller.ReferralCode {
		t.Fatalf("referred by = %v, want %s", u.ReferredBy, seller.ReferralCode)
	}
	if len(u.ReferralCode) != domain.ReferralCodeLength || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("missing code or tokens: %+v %+v", u, tokens)
	}

	if _, _, err := svc.Register(RegisterInput{Name: "Outra", Email: "nova@hubln.test", Password: "senha-forte"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email err = %v", err)
	}
	if _, _, err := svc.Register(RegisterInput{Name: "Outra", Email: "outra@hubln.test", Password: "senha-forte", ReferralCode: "NOPE"}); !errors.Is(err, ErrInvalidReferralCode) {
		t.Fatalf("unknown referral err = %v", err)
	}

	if _, _, err := svc.Login("nova@hubln.test", "errada"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, _, err := svc.Login("ninguem@hubln.test", "senha-forte"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("unknown email err = %v", err)
	}
	_, loginTokens, err := svc.Login("NOVA@hubln.test", "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(loginTokens.RefreshToken)
	if err != nil || refreshed.AccessToken == "" {
		t.Fatalf("refresh: %+v %v", refreshed, err)
	}
	if _, err := svc.Refresh(loginTokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token as refresh err = %v", err)
	}

	if err := f.users.UpdateFields(u.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, _, err := svc.Login("nova@hubln.test", "senha-forte"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("disabled login err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	u := f.user(t, "Seller", nil)

	pix := " seller@pix.test "
	doc := "11.222.333/0001-81"
	got, err := svc.UpdateProfile(u.ID, ProfileUpdate{PixKey: &pix, Document: &doc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PixKey != "seller@pix.test" || got.Document != "11222333000181" || got.Name != "Seller" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	bad := "123"
	if _, err := svc.UpdateProfile(u.ID, ProfileUpdate{Document: &bad}); err == nil {
		t.Fatalf("expected invalid document error")
	}
}
