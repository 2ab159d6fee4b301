package rates

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

func rec(currency, date string, cash, visa, jcb float64, updated time.Time) model.ExchangeRate {
	return model.ExchangeRate{
		Currency:  currency,
		Date:      date,
		CashRate:  decimal.NewFromFloat(cash),
		VisaRate:  decimal.NewFromFloat(visa),
		JCBRate:   decimal.NewFromFloat(jcb),
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestRateFor_ExactDateWins(t *testing.T) {
	now := time.Now()
	table := NewTable([]model.ExchangeRate{
		rec("KRW", "2025-03-01", 41.0, 40.5, 40.2, now),
		rec("KRW", "2025-03-05", 42.0, 41.5, 41.2, now),
	})

	rate, ok := table.RateFor("KRW", model.PaymentVisa, "2025-03-01")
	if !ok {
		t.Fatal("expected a rate for exact date match")
	}
	if !rate.Equal(decimal.NewFromFloat(40.5)) {
		t.Fatalf("expected 40.5, got %s", rate)
	}
}

func TestRateFor_FallsBackToLatestByDate(t *testing.T) {
	now := time.Now()
	// Input deliberately unsorted; the table must not depend on it.
	table := NewTable([]model.ExchangeRate{
		rec("JPY", "2025-02-10", 0.21, 0.215, 0.216, now),
		rec("JPY", "2025-02-20", 0.22, 0.225, 0.226, now),
		rec("JPY", "2025-02-15", 0.20, 0.205, 0.206, now),
	})

	rate, ok := table.RateFor("JPY", model.PaymentCash, "2025-03-01")
	if !ok {
		t.Fatal("expected fallback rate")
	}
	if !rate.Equal(decimal.NewFromFloat(0.22)) {
		t.Fatalf("expected latest-by-date 0.22, got %s", rate)
	}
}

func TestRateFor_SameDateTieBreaksByLatestWrite(t *testing.T) {
	older := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)
	newer := older.Add(2 * time.Hour)
	table := NewTable([]model.ExchangeRate{
		rec("USD", "2025-02-20", 31.0, 31.2, 31.3, older),
		rec("USD", "2025-02-20", 32.0, 32.2, 32.3, newer),
	})

	rate, ok := table.RateFor("USD", model.PaymentCash, "2025-02-25")
	if !ok {
		t.Fatal("expected fallback rate")
	}
	if !rate.Equal(decimal.NewFromFloat(32.0)) {
		t.Fatalf("expected latest-write 32.0, got %s", rate)
	}
}

func TestRateFor_UnknownCurrencyIsSentinel(t *testing.T) {
	table := NewTable([]model.ExchangeRate{
		rec("KRW", "2025-03-01", 41.0, 40.5, 40.2, time.Now()),
	})

	rate, ok := table.RateFor("EUR", model.PaymentVisa, "2025-03-01")
	if ok {
		t.Fatal("expected no rate for unknown currency")
	}
	if !rate.IsZero() {
		t.Fatalf("sentinel must be zero, got %s", rate)
	}
}

func TestRateFor_ZeroColumnIsSentinel(t *testing.T) {
	table := NewTable([]model.ExchangeRate{
		rec("TWD", "2025-03-01", 1.0, 0, 0, time.Now()),
	})

	if _, ok := table.RateFor("TWD", model.PaymentJCB, "2025-03-01"); ok {
		t.Fatal("a zero rate column must resolve as missing, never as 0")
	}
	rate, ok := table.RateFor("TWD", model.PaymentCash, "2025-03-01")
	if !ok || !rate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("cash column should resolve to 1, got %s ok=%v", rate, ok)
	}
}

func TestRateFor_EmptyTable(t *testing.T) {
	table := NewTable(nil)
	if _, ok := table.RateFor("KRW", model.PaymentCash, "2025-03-01"); ok {
		t.Fatal("empty table must report no rate")
	}
}
