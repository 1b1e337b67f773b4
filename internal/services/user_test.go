package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/diewo77/commerce-app/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(RegisterInput{
		UserName: "moussa",
		Email:    "moussa@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("default role = %s, want USER", user.Role)
	}
	if user.Password == "s3cret-pass" {
		t.Fatalf("password stored in clear")
	}

	got, err := svc.Login("moussa", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}

	if _, err := svc.Login("moussa", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password: expected ErrUnauthorized got %v", err)
	}
	if _, err := svc.Login("nobody", "s3cret-pass"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.Register(RegisterInput{UserName: "moussa", Email: "m@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(RegisterInput{UserName: "moussa", Email: "other@example.com", Password: "pw123456"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate user name: expected ErrDuplicate got %v", err)
	}
	if _, err := svc.Register(RegisterInput{UserName: "other", Email: "m@example.com", Password: "pw123456"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email: expected ErrDuplicate got %v", err)
	}
}

func TestRegisterAdminRole(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(RegisterInput{
		UserName: "admin",
		Email:    "admin@example.com",
		Password: "pw123456",
		Role:     models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want ADMIN", user.Role)
	}
}
