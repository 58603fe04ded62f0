package service

import (
	"strings"

	"hubln/internal/apperr"
	"hubln/internal/models"
	"hubln/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductService struct {
	products *repository.ProductRepository
}

func NewProductService(products *repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

type ProductInput struct {
	Name        string
	Description string
	BasePrice   decimal.Decimal
	IsActive    bool
}

func (s *ProductService) Create(in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("product name is required")
	}
	if !in.BasePrice.IsPositive() {
		return nil, ErrInvalidPrice
	}
	p := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		BasePrice:   roundMoney(in.BasePrice),
		IsActive:    in.IsActive,
	}
	if err := s.products.Create(p); err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

type ProductUpdate struct {
	Name        *string
	Description *string
	BasePrice   *decimal.Decimal
	IsActive    *bool
}

func (s *ProductService) Update(id uint, in ProductUpdate) (*models.Product, error) {
	if _, err := s.products.GetByID(id); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("product name is required")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.BasePrice != nil {
		if !in.BasePrice.IsPositive() {
			return nil, ErrInvalidPrice
		}
		fields["base_price"] = roundMoney(*in.BasePrice)
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if len(fields) > 0 {
		if err := s.products.UpdateFields(id, fields); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	p, err := s.products.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (s *ProductService) List(includeInactive bool) ([]models.Product, error) {
	list, err := s.products.List(includeInactive)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}
