package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client & loyalty models
type CustomerTier string

const (
	TierBasic    CustomerTier = "BASIC"
	TierSilver   CustomerTier = "SILVER"
	TierGold     CustomerTier = "GOLD"
	TierPlatinum CustomerTier = "PLATINUM"
)

type Client struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	FullName      string          `gorm:"not null" json:"full_name"`
	Email         string          `gorm:"not null;uniqueIndex" json:"email"`
	Phone         string          `gorm:"not null" json:"phone"`
	Address       string          `gorm:"not null" json:"address"`
	FidelityLevel CustomerTier    `gorm:"not null;default:'BASIC'" json:"fidelity_level"`
	TotalOrders   int             `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_spent"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	FirstOrderAt  *time.Time      `json:"first_order_at,omitempty"`
	LastOrderAt   *time.Time      `json:"last_order_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TierFor maps cumulative order statistics to a tier. First matching bracket
// wins, evaluated top-down; either condition qualifies.
func TierFor(totalOrders int, totalSpent decimal.Decimal) CustomerTier {
	switch {
	case totalOrders >= 20 || totalSpent.GreaterThanOrEqual(decimal.NewFromInt(15000)):
		return TierPlatinum
	case totalOrders >= 10 || totalSpent.GreaterThanOrEqual(decimal.NewFromInt(5000)):
		return TierGold
	case totalOrders >= 3 || totalSpent.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return TierSilver
	default:
		return TierBasic
	}
}
