package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supported foreign currencies. Free-text currencies are still accepted by
// the rate table; these only drive validation defaults.
const (
	CurrencyKRW = "KRW"
	CurrencyJPY = "JPY"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyCNY = "CNY"
	CurrencyTWD = "TWD"
)

// ExchangeRate is one operator-maintained rate record, one authoritative
// record per (currency, date) pair. Saving the same pair again merges into
// the existing record instead of appending a duplicate.
type ExchangeRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Currency  string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_rates_currency_date" json:"currency"`
	Date      string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_rates_currency_date" json:"date"` // YYYY-MM-DD
	CashRate  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"cash_rate"`
	VisaRate  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"visa_rate"`
	JCBRate   decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"jcb_rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RateForPayment picks the rate column matching a payment method.
// Unknown methods yield zero, which callers treat as "no rate".
func (r *ExchangeRate) RateForPayment(paymentMethod string) decimal.Decimal {
	switch paymentMethod {
	case PaymentCash:
		return r.CashRate
	case PaymentVisa:
		return r.VisaRate
	case PaymentJCB:
		return r.JCBRate
	}
	return decimal.Zero
}
