package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category enum constants
const (
	CategoryStandard     = "STANDARD"
	CategoryFreeShipping = "FREE_SHIPPING"
)

// DeliveryMethod enum constants
const (
	DeliveryUnset       = "UNSET"
	DeliveryPickup      = "PICKUP"
	DeliveryPost        = "POST"
	DeliveryConvenience = "CONVENIENCE_STORE"
)

// PaymentMethod enum constants
const (
	PaymentCash = "CASH"
	PaymentVisa = "VISA"
	PaymentJCB  = "JCB"
)

// OrderStatus groups the three operator-facing flags. IsPaid and IsShipped
// are toggled by hand; IsProcessed is recomputed from procurement
// completeness on every full order save.
type OrderStatus struct {
	IsPaid      bool `gorm:"default:false" json:"is_paid"`
	IsProcessed bool `gorm:"default:false" json:"is_processed"`
	IsShipped   bool `gorm:"default:false" json:"is_shipped"`
}

// Order is one customer order, saved as a whole document
// (read-modify-write at order granularity).
type Order struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Customer            string          `gorm:"type:varchar(255);not null;index" json:"customer"`
	Category            string          `gorm:"type:varchar(20);not null;default:'STANDARD'" json:"category"`
	DeliveryMethod      string          `gorm:"type:varchar(30);not null;default:'UNSET'" json:"delivery_method"`
	DomesticShippingFee decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"domestic_shipping_fee"` // charged to the customer
	TotalAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`          // cached sum of qty * selling price
	Status              OrderStatus     `gorm:"embedded;embeddedPrefix:status_" json:"status"`
	Items               []LineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	AddedBy             string          `gorm:"type:varchar(100)" json:"added_by"` // operator name
	IsArchived          bool            `gorm:"default:false;index" json:"is_archived"`
	IsDeleted           bool            `gorm:"default:false;index" json:"is_deleted"`
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// LineItem is one product line of an order, backed by its purchase ledger.
type LineItem struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Position              int             `gorm:"type:int;not null;default:0" json:"position"`
	ProductName           string          `gorm:"type:varchar(255);not null" json:"product_name"`
	DesiredQuantity       int             `gorm:"type:int;not null;default:0" json:"desired_quantity"`
	UnitSellingPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_selling_price"` // home currency
	EstimatedUnitShipping decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_unit_shipping"`
	Currency              string          `gorm:"type:varchar(10);not null;default:'KRW'" json:"currency"`
	PaymentMethod         string          `gorm:"type:varchar(10);not null;default:'VISA'" json:"payment_method"`
	Cost                  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cost"` // cache; always re-derivable from Purchases
	Purchases             []PurchaseBatch `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"purchases"`
}

// PurchasedQuantity sums the batch quantities of the ledger.
func (li *LineItem) PurchasedQuantity() int {
	total := 0
	for _, b := range li.Purchases {
		total += b.Quantity
	}
	return total
}

// PurchaseBatch is one discrete procurement event. ExchangeRate is frozen
// at creation/merge time and never recomputed from the live rate table.
type PurchaseBatch struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Position         int             `gorm:"type:int;not null;default:0" json:"position"`
	Quantity         int             `gorm:"type:int;not null;default:0" json:"quantity"`
	ForeignUnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"foreign_unit_price"`
	Currency         string          `gorm:"type:varchar(10);not null" json:"currency"`
	ExchangeRate     decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"`
	PaymentMethod    string          `gorm:"type:varchar(10);not null" json:"payment_method"`
	PurchaseDate     string          `gorm:"type:varchar(10);not null" json:"purchase_date"` // YYYY-MM-DD
}

// SameEconomics reports whether two batches share the full merge key:
// payment method, frozen rate, foreign unit price, currency and date.
func (b *PurchaseBatch) SameEconomics(other *PurchaseBatch) bool {
	return b.PaymentMethod == other.PaymentMethod &&
		b.ExchangeRate.Equal(other.ExchangeRate) &&
		b.ForeignUnitPrice.Equal(other.ForeignUnitPrice) &&
		b.Currency == other.Currency &&
		b.PurchaseDate == other.PurchaseDate
}
