package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/commerce-app/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService owns the catalog: prices, stock quantities, soft deletion.
type ProductService struct {
	DB *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{DB: db}
}

type ProductInput struct {
	Name          string
	Description   string
	UnitPrice     decimal.Decimal
	StockQuantity int
}

func (s *ProductService) CreateProduct(in ProductInput) (*models.Product, error) {
	var count int64
	if err := s.DB.Model(&models.Product{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: product with name %q already exists", ErrDuplicate, in.Name)
	}
	product := models.Product{
		Name:          in.Name,
		Description:   in.Description,
		UnitPrice:     in.UnitPrice.Round(2),
		StockQuantity: in.StockQuantity,
	}
	if err := s.DB.Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product with id %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.DB.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

type ProductUpdateInput struct {
	Name          *string
	Description   *string
	UnitPrice     *decimal.Decimal
	StockQuantity *int
}

func (s *ProductService) UpdateProduct(id uint, in ProductUpdateInput) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != product.Name {
		var count int64
		if err := s.DB.Model(&models.Product{}).Where("name = ?", *in.Name).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: product with name %q already exists", ErrDuplicate, *in.Name)
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.UnitPrice != nil {
		product.UnitPrice = in.UnitPrice.Round(2)
	}
	if in.StockQuantity != nil {
		product.StockQuantity = *in.StockQuantity
	}
	if err := s.DB.Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes: the row stays so existing orders keep their
// reference and new orders get a clear "no longer available" failure.
func (s *ProductService) DeleteProduct(id uint) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	product.IsDeleted = true
	if err := s.DB.Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}
