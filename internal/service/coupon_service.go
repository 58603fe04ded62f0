package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,40}$`)

type CouponService struct {
	coupons  *repository.CouponRepository
	products *repository.ProductRepository
	pricing  *PricingService
	now      func() time.Time
}

func NewCouponService(coupons *repository.CouponRepository, products *repository.ProductRepository, pricing *PricingService) *CouponService {
	return &CouponService{coupons: coupons, products: products, pricing: pricing, now: time.Now}
}

// NormalizeCouponCode trims and uppercases a coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CreateCouponInput struct {
	ProductID     uint
	Code          string
	DiscountType  string
	DiscountValue decimal.Decimal
	IsUnique      bool
	MaxUses       *int
	ExpiresAt     *time.Time
}

func (s *CouponService) CreateCoupon(creatorUserID uint, in CreateCouponInput) (*models.Coupon, error) {
	code := NormalizeCouponCode(in.Code)
	if !couponCodePattern.MatchString(code) {
		return nil, apperr.Invalid("coupon code must be 3-40 letters, digits, '-' or '_'")
	}
	if in.DiscountType != domain.DiscountPercentage && in.DiscountType != domain.DiscountFixed {
		return nil, ErrInvalidDiscount.WithMessage("discount type must be percentage or fixed")
	}
	exists, err := s.coupons.CodeExists(code)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, ErrDuplicateCode
	}
	product, err := s.products.GetByID(in.ProductID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	price, err := s.pricing.ownPrice(creatorUserID, product)
	if err != nil {
		return nil, err
	}
	if err := validateDiscount(in.DiscountType, in.DiscountValue, price); err != nil {
		return nil, err
	}

	maxUses := in.MaxUses
	if in.IsUnique {
		one := 1
		maxUses = &one
	} else if maxUses != nil && *maxUses < 1 {
		return nil, apperr.Invalid("max uses must be at least 1")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperr.Invalid("expiration must be in the future")
	}

	c := &models.Coupon{
		Code:          code,
		UserID:        creatorUserID,
		ProductID:     product.ID,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		FinalPrice:    ApplyDiscount(price, in.DiscountType, in.DiscountValue),
		IsUnique:      in.IsUnique,
		MaxUses:       maxUses,
		IsActive:      true,
		ExpiresAt:     in.ExpiresAt,
	}
	if err := s.coupons.Create(c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCode
		}
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func validateDiscount(discountType string, value, price decimal.Decimal) error {
	if value.IsNegative() {
		return ErrInvalidDiscount.WithMessage("discount cannot be negative")
	}
	switch discountType {
	case domain.DiscountPercentage:
		if value.GreaterThan(hundred) {
			return ErrInvalidDiscount.WithMessage("percentage discount must be between 0 and 100")
		}
	case domain.DiscountFixed:
		if !value.LessThan(price) {
			return ErrInvalidDiscount.WithMessage("fixed discount must be lower than the price %s", price.StringFixed(2))
		}
	}
	return nil
}

// CouponValidation is the outcome of a successful validation.
type CouponValidation struct {
	Coupon          *models.Coupon  `json:"coupon"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Discount        decimal.Decimal `json:"discount"`
}

// ValidateCoupon checks a code for productID and prices it against the live
// price the requester would pay. It never changes usage counters.
func (s *CouponService) ValidateCoupon(code string, productID uint, requestingUserID *uint) (*CouponValidation, error) {
	c, err := s.coupons.GetByCode(NormalizeCouponCode(code))
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}
	if !c.IsActive {
		return nil, ErrInactive
	}
	if c.ProductID != productID {
		return nil, ErrWrongProduct
	}
	if c.ExpiredAt(s.now()) {
		return nil, ErrExpired
	}
	if c.Exhausted() {
		return nil, ErrExhausted
	}
	if requestingUserID != nil && *requestingUserID == c.UserID {
		return nil, ErrSelfUse
	}

	var base decimal.Decimal
	if requestingUserID != nil {
		base, err = s.pricing.ResolvePrice(*requestingUserID, productID)
	} else {
		base, err = s.pricing.OwnPrice(c.UserID, c.ProductID)
	}
	if err != nil {
		return nil, err
	}
	discounted := ApplyDiscount(base, c.DiscountType, c.DiscountValue)
	return &CouponValidation{
		Coupon:          c,
		OriginalPrice:   base,
		DiscountedPrice: discounted,
		Discount:        base.Sub(discounted),
	}, nil
}

// UseCoupon atomically increments the coupon's usage counter.
func (s *CouponService) UseCoupon(couponID uint) error {
	n, err := s.coupons.IncrementUses(couponID)
	if err != nil {
		return apperr.Internal(err)
	}
	if n == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (s *CouponService) ListMine(userID uint) ([]models.Coupon, error) {
	list, err := s.coupons.ListByUser(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// Deactivate disables a coupon; only its creator or an admin may do so.
func (s *CouponService) Deactivate(couponID, actorID uint, isAdmin bool) error {
	c, err := s.coupons.GetByID(couponID)
	if err != nil {
		return notFound(err, ErrCouponNotFound)
	}
	if !isAdmin && c.UserID != actorID {
		return ErrForbidden
	}
	if err := s.coupons.Deactivate(c.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
