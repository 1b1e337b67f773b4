package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/commerce-app/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles account registration and credential checks.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type RegisterInput struct {
	UserName string
	Email    string
	Password string
	Role     models.UserRole
}

func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("user_name = ? OR email = ?", in.UserName, in.Email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: user already exists", ErrDuplicate)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		UserName: in.UserName,
		Email:    in.Email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Login(userName, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("user_name = ?", userName).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

func (s *UserService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with id %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}
