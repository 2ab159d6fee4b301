package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry used to pre-fill new line items and to seed
// the profitability rollup. A product with zero orders still appears in
// the rollup with zero totals.
type Product struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                  string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	SuggestedUnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"suggested_unit_price"`
	EstimatedUnitShipping decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_unit_shipping"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}
