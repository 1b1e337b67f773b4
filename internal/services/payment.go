package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/commerce-app/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Legal ceiling for a single cash payment.
var cashLimit = decimal.NewFromInt(20000)

// PaymentService attaches payments to pending orders and drives the
// per-payment status state machine against the order's remaining balance.
type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{DB: db}
}

type AddPaymentInput struct {
	Amount      decimal.Decimal
	PaymentType models.PaymentType
	Reference   string
	BankName    string
	DueDate     *time.Time
}

// AddPayment records a payment against a PENDING order and decrements the
// order's remaining amount. CASH payments are cashed immediately;
// CHECK and TRANSFER start PENDING. Returns the payment and the order's
// updated remaining amount.
func (s *PaymentService) AddPayment(orderID uint, in AddPaymentInput) (*models.Payment, decimal.Decimal, error) {
	var payment models.Payment
	var remaining decimal.Decimal

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order with id %d", ErrNotFound, orderID)
			}
			return err
		}
		if order.Status != models.OrderStatusPending {
			return fmt.Errorf("%w: only PENDING orders can receive payments, current status %s", ErrOrderStatus, order.Status)
		}
		if !in.Amount.IsPositive() {
			return fmt.Errorf("%w: payment amount must be positive", ErrInvalidOrder)
		}
		if in.Amount.GreaterThan(order.RemainingAmount) {
			return fmt.Errorf("%w: payment amount %s exceeds remaining amount %s",
				ErrInvalidOrder, in.Amount, order.RemainingAmount)
		}
		switch in.PaymentType {
		case models.PaymentTypeCash:
			if in.Amount.GreaterThan(cashLimit) {
				return fmt.Errorf("%w: cash payment exceeds legal limit of %s", ErrInvalidOrder, cashLimit)
			}
		case models.PaymentTypeCheck:
			if in.BankName == "" {
				return fmt.Errorf("%w: bank name is required for CHECK payments", ErrInvalidOrder)
			}
			if in.DueDate == nil {
				return fmt.Errorf("%w: due date is required for CHECK payments", ErrInvalidOrder)
			}
		case models.PaymentTypeTransfer:
			if in.BankName == "" {
				return fmt.Errorf("%w: bank name is required for TRANSFER payments", ErrInvalidOrder)
			}
		default:
			return fmt.Errorf("%w: unknown payment type %q", ErrInvalidOrder, in.PaymentType)
		}

		var count int64
		if err := tx.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}

		now := time.Now()
		payment = models.Payment{
			OrderID:       order.ID,
			PaymentNumber: int(count) + 1,
			Amount:        in.Amount.Round(2),
			PaymentType:   in.PaymentType,
			PaymentDate:   now,
			Status:        models.PaymentStatusPending,
			Reference:     in.Reference,
			BankName:      in.BankName,
			DueDate:       in.DueDate,
		}
		if in.PaymentType == models.PaymentTypeCash {
			payment.Status = models.PaymentStatusCashed
			payment.CashDate = &now
		}

		remaining = order.RemainingAmount.Sub(in.Amount).Round(2)
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("remaining_amount", remaining).Error; err != nil {
			return err
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return &payment, remaining, nil
}

type PaymentStatusUpdateInput struct {
	Status   models.PaymentStatus
	CashDate *time.Time
}

// UpdatePaymentStatus settles or bounces a pending CHECK/TRANSFER payment.
// Rejection puts the amount back on the order's remaining balance. Returns
// the payment and the order's current remaining amount.
func (s *PaymentService) UpdatePaymentStatus(paymentID uint, in PaymentStatusUpdateInput) (*models.Payment, decimal.Decimal, error) {
	var payment models.Payment
	var remaining decimal.Decimal

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment with id %d", ErrNotFound, paymentID)
			}
			return err
		}
		if payment.PaymentType == models.PaymentTypeCash {
			return fmt.Errorf("%w: cash payments are cashed on creation and cannot be updated", ErrInvalidPaymentStatus)
		}
		if !payment.Status.CanTransition(in.Status) {
			return fmt.Errorf("%w: cannot move payment from %s to %s", ErrInvalidPaymentStatus, payment.Status, in.Status)
		}

		var order models.Order
		if err := lockForUpdate(tx).First(&order, payment.OrderID).Error; err != nil {
			return err
		}
		remaining = order.RemainingAmount

		payment.Status = in.Status
		switch in.Status {
		case models.PaymentStatusCashed:
			cashDate := time.Now()
			if in.CashDate != nil {
				cashDate = *in.CashDate
			}
			payment.CashDate = &cashDate
		case models.PaymentStatusRejected:
			remaining = order.RemainingAmount.Add(payment.Amount).Round(2)
			if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
				Update("remaining_amount", remaining).Error; err != nil {
				return err
			}
		}
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return &payment, remaining, nil
}
