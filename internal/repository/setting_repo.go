package repository

import (
	"strconv"

	"hubln/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(key string) (string, error) {
	var s models.SystemSetting
	if err := r.db.Where(&models.SystemSetting{Key: key}).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

// GetInt returns the integer value of key, or fallback when unset or malformed.
func (r *SettingRepository) GetInt(key string, fallback int) int {
	val, err := r.Get(key)
	if err != nil || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func (r *SettingRepository) Set(key, value string, updatedBy *uint) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&models.SystemSetting{Key: key, Value: value, UpdatedBy: updatedBy}).Error
}

func (r *SettingRepository) GetAll() ([]models.SystemSetting, error) {
	var list []models.SystemSetting
	err := r.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&list).Error
	return list, err
}

// SeedDefaults inserts default settings if they don't already exist.
func (r *SettingRepository) SeedDefaults(defaults map[string]string) error {
	for k, v := range defaults {
		err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SystemSetting{Key: k, Value: v}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
