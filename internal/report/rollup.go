// Package report computes the per-product profitability rollup and the
// dashboard summary. Both are stateless aggregations recomputed from
// scratch over the current order snapshot on every call: no incremental
// counters, so concurrent edits converge on the next snapshot.
package report

import (
	"sort"
	"time"

	"backend/internal/ledger"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnnamedProduct keys line items saved without a product name.
const UnnamedProduct = "(unnamed)"

// Options controls rollup behavior. One revision of the model folds the
// estimated per-unit international shipping into landed cost and another
// omits it, so inclusion is a flag rather than two implementations.
type Options struct {
	IncludeShipping bool
}

// OrderRef is one order touching a product, for the drill-down view.
type OrderRef struct {
	OrderID     uuid.UUID       `json:"order_id"`
	Customer    string          `json:"customer"`
	Quantity    int             `json:"quantity"`
	LandedCost  decimal.Decimal `json:"landed_cost"`
	IsProcessed bool            `json:"is_processed"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Row is the aggregate for one product name across the live order book.
type Row struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity int             `json:"total_quantity"`
	BuyerCount    int             `json:"buyer_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Profit        decimal.Decimal `json:"profit"`
	Orders        []OrderRef      `json:"orders"`
}

type accumulator struct {
	row      Row
	buyers   map[string]struct{}
	orderIDs map[uuid.UUID]struct{}
}

// landedCost derives the home-currency cost of one line item. With zero
// purchased units but known demand, the first batch's unit economics (if
// any) scale by the desired quantity so not-yet-procured demand is not
// understated as free.
func landedCost(item *model.LineItem, opts Options) decimal.Decimal {
	var cost decimal.Decimal
	if item.PurchasedQuantity() > 0 {
		cost = ledger.ItemCost(item)
	} else if item.DesiredQuantity > 0 && len(item.Purchases) > 0 {
		first := item.Purchases[0]
		rate := first.ExchangeRate
		if rate.LessThanOrEqual(decimal.Zero) {
			rate = decimal.NewFromInt(1)
		}
		cost = first.ForeignUnitPrice.Div(rate).
			Mul(decimal.NewFromInt(int64(item.DesiredQuantity)))
	}
	if opts.IncludeShipping {
		cost = cost.Add(item.EstimatedUnitShipping.
			Mul(decimal.NewFromInt(int64(item.DesiredQuantity))))
	}
	return cost
}

// Rollup aggregates the catalog and the active (non-archived, non-deleted)
// orders into per-product rows sorted by total demanded quantity
// descending, ties kept stable in first-seen order. Every catalog product
// appears even with zero orders; free-text names absent from the catalog
// get rows on first sight.
func Rollup(catalog []model.Product, orders []model.Order, opts Options) []Row {
	accs := make(map[string]*accumulator)
	var names []string

	touch := func(name string) *accumulator {
		if acc, ok := accs[name]; ok {
			return acc
		}
		acc := &accumulator{
			row: Row{
				ProductName:  name,
				TotalRevenue: decimal.Zero,
				TotalCost:    decimal.Zero,
			},
			buyers:   make(map[string]struct{}),
			orderIDs: make(map[uuid.UUID]struct{}),
		}
		accs[name] = acc
		names = append(names, name)
		return acc
	}

	for i := range catalog {
		touch(catalog[i].Name)
	}

	for oi := range orders {
		order := &orders[oi]
		if order.IsArchived || order.IsDeleted {
			continue
		}
		for ii := range order.Items {
			item := &order.Items[ii]
			name := item.ProductName
			if name == "" {
				name = UnnamedProduct
			}
			acc := touch(name)

			acc.row.TotalQuantity += item.DesiredQuantity
			acc.buyers[order.Customer] = struct{}{}
			acc.row.TotalRevenue = acc.row.TotalRevenue.Add(
				item.UnitSellingPrice.Mul(decimal.NewFromInt(int64(item.DesiredQuantity))))

			cost := landedCost(item, opts)
			acc.row.TotalCost = acc.row.TotalCost.Add(cost)

			if _, seen := acc.orderIDs[order.ID]; !seen {
				acc.orderIDs[order.ID] = struct{}{}
				acc.row.Orders = append(acc.row.Orders, OrderRef{
					OrderID:     order.ID,
					Customer:    order.Customer,
					Quantity:    item.DesiredQuantity,
					LandedCost:  cost,
					IsProcessed: order.Status.IsProcessed,
					CreatedAt:   order.CreatedAt,
				})
			}
		}
	}

	rows := make([]Row, 0, len(names))
	for _, name := range names {
		acc := accs[name]
		acc.row.BuyerCount = len(acc.buyers)
		acc.row.Profit = acc.row.TotalRevenue.Sub(acc.row.TotalCost)
		rows = append(rows, acc.row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalQuantity > rows[j].TotalQuantity
	})
	return rows
}
