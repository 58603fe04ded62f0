package database

import (
	"strings"
	"testing"

	"hubln/config"
	"hubln/internal/domain"
	"hubln/internal/models"
)

func TestSeedAdminIsIdempotent(t *testing.T) {
	db, err := OpenSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := &config.AdminSeedConfig{Name: "Admin", Email: "Admin@HubLN.test", Password: "s3cret-pass"}

	for i := 0; i < 2; i++ {
		if err := SeedAdmin(db, cfg); err != nil {
			t.Fatalf("seed #%d: %v", i+1, err)
		}
	}

	var admins []models.User
	if err := db.Where("role = ?", domain.RoleAdmin).Find(&admins).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("got %d admins, want 1", len(admins))
	}
	if admins[0].Email != "admin@hubln.test" || len(admins[0].ReferralCode) != domain.ReferralCodeLength {
		t.Fatalf("unexpected admin: %+v", admins[0])
	}
}

func TestSeedSettings(t *testing.T) {
	db, err := OpenSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := SeedSettings(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SeedSettings(db); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	var n int64
	db.Model(&models.SystemSetting{}).Where(&models.SystemSetting{Key: domain.SettingPixDueDays}).Count(&n)
	if n != 1 {
		t.Fatalf("pix_due_days rows = %d, want 1", n)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewDB(&config.DatabaseConfig{Driver: "oracle"}, 1); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
