package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/commerce-app/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientService owns client records. Loyalty statistics (totals, tier,
// first/last order dates) are written exclusively by the order engine on
// confirmation; this service never touches them.
type ClientService struct {
	DB *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{DB: db}
}

type ClientInput struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

func (s *ClientService) CreateClient(in ClientInput) (*models.Client, error) {
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already exists", ErrDuplicate)
	}
	client := models.Client{
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		FidelityLevel: models.TierBasic,
		TotalSpent:    decimal.Zero,
		IsActive:      true,
	}
	if err := s.DB.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) GetClient(id uint) (*models.Client, error) {
	var client models.Client
	if err := s.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client with id %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) ListClients() ([]models.Client, error) {
	var clients []models.Client
	if err := s.DB.Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

type ClientUpdateInput struct {
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
}

func (s *ClientService) UpdateClient(id uint, in ClientUpdateInput) (*models.Client, error) {
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != client.Email {
		var count int64
		if err := s.DB.Model(&models.Client{}).Where("email = ?", *in.Email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: email already exists", ErrDuplicate)
		}
		client.Email = *in.Email
	}
	if in.FullName != nil {
		client.FullName = *in.FullName
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Address != nil {
		client.Address = *in.Address
	}
	if err := s.DB.Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// DeactivateClient flips the active flag; the record and its order history
// remain.
func (s *ClientService) DeactivateClient(id uint) (*models.Client, error) {
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}
	client.IsActive = false
	if err := s.DB.Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}
