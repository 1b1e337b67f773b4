package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog models
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null;uniqueIndex" json:"name"`
	Description   string          `gorm:"not null" json:"description"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	StockQuantity int             `gorm:"not null" json:"stock_quantity"`
	// Explicit flag rather than gorm soft delete: deleted products must stay
	// visible to lookups so ordering one can be reported as unavailable.
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
