// Package ledger implements the purchase-batch ledger: per line item, an
// ordered list of procurement batches in foreign currency, each frozen at
// the exchange rate that applied when money changed hands. All functions
// are pure over in-memory snapshots; persistence is the caller's problem.
package ledger

import (
	"backend/internal/model"
	"backend/internal/rates"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// guardRate substitutes 1 for a zero or negative rate so a missing rate
// can never divide by zero or leak NaN/Inf into downstream totals.
func guardRate(rate decimal.Decimal) decimal.Decimal {
	if rate.LessThanOrEqual(decimal.Zero) {
		return one
	}
	return rate
}

// ItemCost derives the home-currency cost of an item from its batches:
// sum of quantity * foreignUnitPrice / exchangeRate.
func ItemCost(item *model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, b := range item.Purchases {
		qty := decimal.NewFromInt(int64(b.Quantity))
		total = total.Add(qty.Mul(b.ForeignUnitPrice.Div(guardRate(b.ExchangeRate))))
	}
	return total
}

// BuildCandidate assembles the batch a "buy one more" tap would create
// today. Currency and foreign unit price carry over from the first batch
// (falling back to the item's own fields); the rate comes from the live
// table, falling back to the item's existing frozen rate, then 1.
func BuildCandidate(item *model.LineItem, table *rates.Table, today string) model.PurchaseBatch {
	currency := item.Currency
	foreignPrice := decimal.Zero
	existingRate := decimal.Zero
	if len(item.Purchases) > 0 {
		first := item.Purchases[0]
		if first.Currency != "" {
			currency = first.Currency
		}
		foreignPrice = first.ForeignUnitPrice
		existingRate = first.ExchangeRate
	}

	rate, ok := table.RateFor(currency, item.PaymentMethod, today)
	if !ok {
		rate = existingRate
	}
	rate = guardRate(rate)

	return model.PurchaseBatch{
		Quantity:         1,
		ForeignUnitPrice: foreignPrice,
		Currency:         currency,
		ExchangeRate:     rate,
		PaymentMethod:    item.PaymentMethod,
		PurchaseDate:     today,
	}
}

// AppendUnit records one more purchased unit. A batch already carrying
// the candidate's exact economics absorbs the unit so the ledger does not
// fragment into quantity-1 batches under unchanged pricing; otherwise the
// candidate appends as a new quantity-1 batch. The cached item cost is
// recomputed either way.
func AppendUnit(item *model.LineItem, candidate model.PurchaseBatch) {
	candidate.Quantity = 1
	merged := false
	for i := range item.Purchases {
		if item.Purchases[i].SameEconomics(&candidate) {
			item.Purchases[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		candidate.Position = len(item.Purchases)
		item.Purchases = append(item.Purchases, candidate)
	}
	item.Cost = ItemCost(item)
}

// RemoveUnit takes one purchased unit back, strictly LIFO: the last batch
// decrements, disappears entirely at quantity 1, and an empty ledger is a
// no-op.
func RemoveUnit(item *model.LineItem) {
	n := len(item.Purchases)
	if n == 0 {
		return
	}
	last := &item.Purchases[n-1]
	if last.Quantity > 1 {
		last.Quantity--
	} else {
		item.Purchases = item.Purchases[:n-1]
	}
	item.Cost = ItemCost(item)
}

// SuggestUnitPrice proposes a selling price hitting a target margin
// percentage over the first batch's unit cost:
// ceil(foreignUnitPrice / exchangeRate * (1 + margin/100)).
// A one-shot suggestion; it only ever reads the first batch. Items with
// no batches yield zero.
func SuggestUnitPrice(item *model.LineItem, marginPercent decimal.Decimal) decimal.Decimal {
	if len(item.Purchases) == 0 {
		return decimal.Zero
	}
	first := item.Purchases[0]
	unitCost := first.ForeignUnitPrice.Div(guardRate(first.ExchangeRate))
	factor := one.Add(marginPercent.Div(decimal.NewFromInt(100)))
	return unitCost.Mul(factor).Ceil()
}

// OrderTotal sums desiredQuantity * unitSellingPrice across items. The
// domestic shipping fee is not part of the total; callers add it when
// displaying the amount due.
func OrderTotal(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		qty := decimal.NewFromInt(int64(items[i].DesiredQuantity))
		total = total.Add(qty.Mul(items[i].UnitSellingPrice))
	}
	return total
}
