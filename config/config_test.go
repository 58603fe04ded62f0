package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ASAAS_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Asaas.Timeout != 5*time.Second {
		t.Errorf("asaas timeout = %v, want 5s", cfg.Asaas.Timeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.JWT.Issuer != "hubln" {
		t.Errorf("issuer = %q", cfg.JWT.Issuer)
	}
}

func TestLoadRejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	if _, err := Load(); err != ErrInsecureSecrets {
		t.Fatalf("err = %v, want ErrInsecureSecrets", err)
	}
}
