// Package rates answers "what exchange rate applies to currency C, paid
// via method P, on date D" over an in-memory snapshot of rate records.
package rates

import (
	"sort"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// Table is an immutable, ordered snapshot of exchange-rate records.
// Lookups are pure; rebuild the table when the underlying collection
// changes.
type Table struct {
	records []model.ExchangeRate
}

// NewTable copies records and orders them newest-known-first: date
// descending, ties broken by updated_at descending, then created_at
// descending. The ordering makes the no-exact-date fallback deterministic
// regardless of how the caller sorted the input.
func NewTable(records []model.ExchangeRate) *Table {
	sorted := make([]model.ExchangeRate, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		if !sorted[i].UpdatedAt.Equal(sorted[j].UpdatedAt) {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return &Table{records: sorted}
}

// Lookup returns the record for (currency, asOfDate), falling back to the
// most recently known record for the currency when the exact date is
// absent. The second result is false when the currency is unknown.
func (t *Table) Lookup(currency, asOfDate string) (model.ExchangeRate, bool) {
	for _, r := range t.records {
		if r.Currency == currency && r.Date == asOfDate {
			return r, true
		}
	}
	for _, r := range t.records {
		if r.Currency == currency {
			return r, true
		}
	}
	return model.ExchangeRate{}, false
}

// RateFor resolves the rate for a currency and payment method as of a
// date. It never errors: an unknown currency or a zero rate column
// returns (0, false) and callers decide the fallback policy (the system
// convention is to substitute 1).
func (t *Table) RateFor(currency, paymentMethod, asOfDate string) (decimal.Decimal, bool) {
	record, ok := t.Lookup(currency, asOfDate)
	if !ok {
		return decimal.Zero, false
	}
	rate := record.RateForPayment(paymentMethod)
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return rate, true
}
