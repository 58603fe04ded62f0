package service

import (
	"errors"

	"hubln/internal/apperr"
	"hubln/internal/models"
	"hubln/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingService resolves the unit price a buyer pays. Resolution walks
// exactly one level of the referral chain: the buyer's direct referrer.
type PricingService struct {
	users    *repository.UserRepository
	products *repository.ProductRepository
	prices   *repository.PriceRepository
}

func NewPricingService(users *repository.UserRepository, products *repository.ProductRepository, prices *repository.PriceRepository) *PricingService {
	return &PricingService{users: users, products: products, prices: prices}
}

func (s *PricingService) WithTx(tx *gorm.DB) *PricingService {
	return &PricingService{users: s.users.WithTx(tx), products: s.products.WithTx(tx), prices: s.prices.WithTx(tx)}
}

// Referrer returns the user whose referral code equals buyer.ReferredBy.
// A missing or dangling code yields (nil, nil).
func (s *PricingService) Referrer(buyer *models.User) (*models.User, error) {
	code := buyer.ReferrerCode()
	if code == "" {
		return nil, nil
	}
	ref, err := s.users.GetByReferralCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ref, nil
}

// ResolvePrice returns the unit price buyerUserID pays for productID.
func (s *PricingService) ResolvePrice(buyerUserID, productID uint) (decimal.Decimal, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return decimal.Zero, notFound(err, ErrProductNotFound)
	}
	buyer, err := s.users.GetByID(buyerUserID)
	if err != nil {
		return decimal.Zero, notFound(err, ErrUserNotFound)
	}
	return s.resolve(buyer, product)
}

func (s *PricingService) resolve(buyer *models.User, product *models.Product) (decimal.Decimal, error) {
	referrer, err := s.Referrer(buyer)
	if err != nil {
		return decimal.Zero, notFound(err, ErrUserNotFound)
	}
	if referrer == nil {
		return product.BasePrice, nil
	}
	return s.ownPrice(referrer.ID, product)
}

// OwnPrice is the price userID charges for productID: their custom price if
// set, otherwise the product's base price.
func (s *PricingService) OwnPrice(userID, productID uint) (decimal.Decimal, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return decimal.Zero, notFound(err, ErrProductNotFound)
	}
	return s.ownPrice(userID, product)
}

func (s *PricingService) ownPrice(userID uint, product *models.Product) (decimal.Decimal, error) {
	custom, err := s.prices.Get(userID, product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product.BasePrice, nil
		}
		return decimal.Zero, notFound(err, ErrProductNotFound)
	}
	return custom.CustomPrice, nil
}

// SetCustomPrice upserts the price userID charges the buyers they referred.
func (s *PricingService) SetCustomPrice(userID, productID uint, price decimal.Decimal) (*models.UserProductPrice, error) {
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	if err := s.prices.Upsert(userID, productID, roundMoney(price)); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	row, err := s.prices.Get(userID, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return row, nil
}

func (s *PricingService) DeleteCustomPrice(userID, productID uint) error {
	n, err := s.prices.Delete(userID, productID)
	if err != nil {
		return notFound(err, ErrProductNotFound)
	}
	if n == 0 {
		return ErrProductNotFound.WithMessage("no custom price set for this product")
	}
	return nil
}

func (s *PricingService) ListCustomPrices(userID uint) ([]models.UserProductPrice, error) {
	list, err := s.prices.ListByUser(userID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return list, nil
}

// ProductOffer is a product as seen by one user.
type ProductOffer struct {
	models.Product
	MyPrice       decimal.Decimal  `json:"my_price"`        // what this user pays
	MyCustomPrice *decimal.Decimal `json:"my_custom_price"` // what this user charges referrals
}

func (s *PricingService) ListOffers(userID uint) ([]ProductOffer, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	products, err := s.products.List(false)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	mine, err := s.prices.ListByUser(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	custom := make(map[uint]decimal.Decimal, len(mine))
	for _, p := range mine {
		custom[p.ProductID] = p.CustomPrice
	}
	offers := make([]ProductOffer, 0, len(products))
	for i := range products {
		price, err := s.resolve(user, &products[i])
		if err != nil {
			return nil, err
		}
		offer := ProductOffer{Product: products[i], MyPrice: price}
		if c, ok := custom[products[i].ID]; ok {
			c := c
			offer.MyCustomPrice = &c
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
