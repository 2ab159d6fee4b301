package ledger

import "backend/internal/model"

// DeriveIsProcessed reports whether every line of an order has been fully
// procured: non-empty items, each wanting at least one unit, each with
// purchased >= desired. An order with no items, or any zero-quantity
// item, is never processed. Idempotent; the authoritative recompute runs
// once per order save and overwrites any hand-toggled value.
func DeriveIsProcessed(items []model.LineItem) bool {
	if len(items) == 0 {
		return false
	}
	for i := range items {
		item := &items[i]
		if item.DesiredQuantity <= 0 {
			return false
		}
		if item.PurchasedQuantity() < item.DesiredQuantity {
			return false
		}
	}
	return true
}
