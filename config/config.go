package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Asaas      AsaasConfig
	Cloudinary CloudinaryConfig
	Storage    StorageConfig
	Sentry     SentryConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Admin      AdminSeedConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (s ServerConfig) IsProduction() bool { return s.Env == "production" }

type DatabaseConfig struct {
	Driver          string // mysql | postgres | sqlite
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type RedisConfig struct {
	Addr     string // empty disables redis; rate limiting falls back to memory
	Password string
	DB       int
}

// AsaasConfig configures the PIX gateway. An empty APIKey selects the stub gateway.
type AsaasConfig struct {
	BaseURL      string
	APIKey       string
	WebhookToken string
	Timeout      time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// StorageConfig is an S3-compatible bucket used to archive uploaded spreadsheets.
type StorageConfig struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UsePathStyle  bool
	Prefix        string
}

func (s StorageConfig) Enabled() bool { return s.Bucket != "" }

type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AdminSeedConfig struct {
	Name     string
	Email    string
	Password string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	defaultAccessSecret  = "change-me-in-production"
	defaultRefreshSecret = "change-me-refresh"
)

var ErrInsecureSecrets = errors.New("JWT secrets must be set in production")

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_DSN", "hubln:hubln@tcp(localhost:3306)/hubln?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)

	v.SetDefault("JWT_ACCESS_SECRET", defaultAccessSecret)
	v.SetDefault("JWT_REFRESH_SECRET", defaultRefreshSecret)
	v.SetDefault("JWT_ACCESS_EXPIRY", 30*time.Minute)
	v.SetDefault("JWT_REFRESH_EXPIRY", 168*time.Hour)
	v.SetDefault("JWT_ISSUER", "hubln")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ASAAS_BASE_URL", "https://sandbox.asaas.com/api/v3")
	v.SetDefault("ASAAS_TIMEOUT", 15*time.Second)

	v.SetDefault("CLOUDINARY_FOLDER", "hubln/announcements")

	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "spreadsheets")

	v.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.2)

	v.SetDefault("RATE_LIMIT_REQUESTS", 120)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("ADMIN_NAME", "Administrador")
	v.SetDefault("ADMIN_EMAIL", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Env:          v.GetString("APP_ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:             v.GetString("DB_DSN"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
			AccessExpiry:  v.GetDuration("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: v.GetDuration("JWT_REFRESH_EXPIRY"),
			Issuer:        v.GetString("JWT_ISSUER"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Asaas: AsaasConfig{
			BaseURL:      v.GetString("ASAAS_BASE_URL"),
			APIKey:       v.GetString("ASAAS_API_KEY"),
			WebhookToken: v.GetString("ASAAS_WEBHOOK_TOKEN"),
			Timeout:      v.GetDuration("ASAAS_TIMEOUT"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("CLOUDINARY_FOLDER"),
		},
		Storage: StorageConfig{
			Endpoint:      v.GetString("S3_ENDPOINT"),
			Region:        v.GetString("S3_REGION"),
			AccessKey:     v.GetString("S3_ACCESS_KEY"),
			SecretKey:     v.GetString("S3_SECRET_KEY"),
			Bucket:        v.GetString("S3_BUCKET"),
			PublicBaseURL: v.GetString("S3_PUBLIC_BASE_URL"),
			UsePathStyle:  v.GetBool("S3_USE_PATH_STYLE"),
			Prefix:        v.GetString("S3_PREFIX"),
		},
		Sentry: SentryConfig{
			DSN:              v.GetString("SENTRY_DSN"),
			TracesSampleRate: v.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Admin: AdminSeedConfig{
			Name:     v.GetString("ADMIN_NAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if cfg.Server.IsProduction() &&
		(cfg.JWT.AccessSecret == defaultAccessSecret || cfg.JWT.RefreshSecret == defaultRefreshSecret) {
		return nil, ErrInsecureSecrets
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
