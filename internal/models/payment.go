package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment models
type PaymentType string

const (
	PaymentTypeCash     PaymentType = "CASH"
	PaymentTypeCheck    PaymentType = "CHECK"
	PaymentTypeTransfer PaymentType = "TRANSFER"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusCashed   PaymentStatus = "CASHED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
)

// CASH payments are born CASHED and never appear here; the type check in the
// payment service rejects them before any transition is attempted.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusCashed, PaymentStatusRejected},
}

// CanTransition reports whether a payment may move from s to target.
func (s PaymentStatus) CanTransition(target PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

type Payment struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	Order   Order `gorm:"foreignKey:OrderID" json:"-"`
	// 1-based sequence within the order.
	PaymentNumber int             `gorm:"not null" json:"payment_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaymentType   PaymentType     `gorm:"not null" json:"payment_type"`
	PaymentDate   time.Time       `gorm:"not null" json:"payment_date"`
	Status        PaymentStatus   `gorm:"not null" json:"status"`
	Reference     string          `json:"reference,omitempty"`
	BankName      string          `json:"bank_name,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CashDate      *time.Time      `json:"cash_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
