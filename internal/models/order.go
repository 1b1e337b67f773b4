package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order models
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// orderTransitions is the full transition table. CONFIRMED, CANCELED and
// REJECTED are terminal; REJECTED is additionally reachable straight from
// creation on a stock shortfall, which never passes through here.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusConfirmed, OrderStatusCanceled, OrderStatusRejected},
}

// CanTransition reports whether an order may move from s to target.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ClientID  uint        `gorm:"not null;index" json:"client_id"`
	Client    Client      `gorm:"foreignKey:ClientID" json:"-"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	OrderDate time.Time   `gorm:"not null" json:"order_date"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	Discount  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"discount"`
	VAT       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"vat"`
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	PromoCode string          `json:"promo_code,omitempty"`
	Status    OrderStatus     `gorm:"not null" json:"status"`
	// RemainingAmount starts at Total and only moves through payment
	// application and reversal.
	RemainingAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"remaining_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem captures the unit price at order time so later catalog price
// changes never touch an existing order.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	ProductID  uint            `gorm:"not null" json:"product_id"`
	Product    Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
}
