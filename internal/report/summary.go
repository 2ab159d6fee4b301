package report

import (
	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// Summary is the dashboard header: sales and status counts over the
// active order book. Amounts include the domestic shipping fee charged
// to the customer.
type Summary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	PendingAmount  decimal.Decimal `json:"pending_amount"` // unpaid orders
	ActiveOrders   int             `json:"active_orders"`
	UnpaidCount    int             `json:"unpaid_count"`
	ProcessedCount int             `json:"processed_count"`
	UnshippedCount int             `json:"unshipped_count"` // processed but not shipped
}

// Summarize recomputes the dashboard figures from the order snapshot.
// Archived and soft-deleted orders are excluded.
func Summarize(orders []model.Order) Summary {
	s := Summary{
		TotalSales:    decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	for i := range orders {
		o := &orders[i]
		if o.IsArchived || o.IsDeleted {
			continue
		}
		s.ActiveOrders++
		due := o.TotalAmount.Add(o.DomesticShippingFee)
		s.TotalSales = s.TotalSales.Add(due)
		if !o.Status.IsPaid {
			s.UnpaidCount++
			s.PendingAmount = s.PendingAmount.Add(due)
		}
		if o.Status.IsProcessed {
			s.ProcessedCount++
			if !o.Status.IsShipped {
				s.UnshippedCount++
			}
		}
	}
	return s
}
