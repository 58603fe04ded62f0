package repository

import (
	"hubln/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PriceRepository stores per-(user, product) custom prices.
type PriceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

func (r *PriceRepository) WithTx(tx *gorm.DB) *PriceRepository {
	return &PriceRepository{db: tx}
}

// Get returns the custom price userID set for productID.
func (r *PriceRepository) Get(userID, productID uint) (*models.UserProductPrice, error) {
	var p models.UserProductPrice
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or updates the (user, product) row in one statement.
func (r *PriceRepository) Upsert(userID, productID uint, price decimal.Decimal) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"custom_price", "updated_at"}),
	}).Create(&models.UserProductPrice{UserID: userID, ProductID: productID, CustomPrice: price}).Error
}

func (r *PriceRepository) Delete(userID, productID uint) (int64, error) {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.UserProductPrice{})
	return res.RowsAffected, res.Error
}

func (r *PriceRepository) ListByUser(userID uint) ([]models.UserProductPrice, error) {
	var list []models.UserProductPrice
	err := r.db.Where("user_id = ?", userID).Preload("Product").Order("product_id ASC").Find(&list).Error
	return list, err
}
