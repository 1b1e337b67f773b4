package services

import (
	"errors"
	"fmt"
)

// Error kinds shared by all services. Handlers translate these to HTTP
// statuses with errors.Is / errors.As; services never recover from them.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderStatus          = errors.New("order status conflict")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrDuplicate            = errors.New("duplicate resource")
	ErrUnauthorized         = errors.New("invalid credentials")
)

// InsufficientStockError names the product that fell short so the boundary
// can report available vs requested quantities.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
