package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hubln/config"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewDB(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.UserProductPrice{},
		&models.Coupon{},
		&models.Submission{},
		&models.SubmissionClient{},
		&models.Withdrawal{},
		&models.CommissionEarning{},
		&models.Payment{},
		&models.Announcement{},
		&models.CapitalGiroRequest{},
		&models.Notification{},
		&models.AuditLog{},
		&models.SystemSetting{},
	)
}

// SeedAdmin creates the configured admin account when it does not exist yet.
func SeedAdmin(db *gorm.DB, cfg *config.AdminSeedConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	users := repository.NewUserRepository(db)
	_, err := users.GetByEmail(email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         cfg.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := repository.NewReferralRepository(db).CreateWithCode(admin); err != nil {
		return err
	}
	slog.Info("admin user seeded", "email", email, "referral_code", admin.ReferralCode)
	return nil
}

// SeedSettings inserts default system settings.
func SeedSettings(db *gorm.DB) error {
	return repository.NewSettingRepository(db).SeedDefaults(map[string]string{
		domain.SettingPixDueDays:     "1",
		domain.SettingSupportContact: "",
	})
}

// OpenSQLiteMemory opens a named shared in-memory sqlite database with the
// schema migrated. Used by tests and local tooling.
func OpenSQLiteMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
