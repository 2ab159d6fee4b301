package ledger

import (
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

func itemWithPurchases(desired, purchased int) model.LineItem {
	item := model.LineItem{DesiredQuantity: desired}
	if purchased > 0 {
		item.Purchases = []model.PurchaseBatch{{
			Quantity:         purchased,
			ForeignUnitPrice: decimal.NewFromInt(100),
			ExchangeRate:     decimal.NewFromInt(1),
			PaymentMethod:    model.PaymentCash,
			PurchaseDate:     "2025-03-01",
		}}
	}
	return item
}

func TestDeriveIsProcessed_EmptyOrderNeverProcessed(t *testing.T) {
	if DeriveIsProcessed(nil) {
		t.Fatal("order with no items must not be processed")
	}
	if DeriveIsProcessed([]model.LineItem{}) {
		t.Fatal("order with empty item slice must not be processed")
	}
}

func TestDeriveIsProcessed_ZeroDesiredQuantityBlocks(t *testing.T) {
	items := []model.LineItem{
		itemWithPurchases(2, 2),
		itemWithPurchases(0, 0),
	}
	if DeriveIsProcessed(items) {
		t.Fatal("an item with desired quantity 0 must block processed status")
	}
}

func TestDeriveIsProcessed_AllItemsFullyProcured(t *testing.T) {
	items := []model.LineItem{
		itemWithPurchases(2, 2),
		itemWithPurchases(1, 3), // over-purchase still counts as complete
	}
	if !DeriveIsProcessed(items) {
		t.Fatal("fully procured order must be processed")
	}
}

func TestDeriveIsProcessed_MonotonicUnderProcurement(t *testing.T) {
	// desired 3, purchased 2 -> false; one more unit -> true; further
	// appends can never flip it back.
	item := itemWithPurchases(3, 2)
	items := []model.LineItem{item}
	if DeriveIsProcessed(items) {
		t.Fatal("2 of 3 purchased must not be processed")
	}

	candidate := items[0].Purchases[0]
	AppendUnit(&items[0], candidate)
	if !DeriveIsProcessed(items) {
		t.Fatal("3 of 3 purchased must be processed")
	}

	AppendUnit(&items[0], candidate)
	if !DeriveIsProcessed(items) {
		t.Fatal("extra buffer stock must not un-process the order")
	}
}

func TestDeriveIsProcessed_RaisingDesiredQuantityUnprocesses(t *testing.T) {
	items := []model.LineItem{itemWithPurchases(2, 2)}
	if !DeriveIsProcessed(items) {
		t.Fatal("precondition: order starts processed")
	}
	items[0].DesiredQuantity = 4
	if DeriveIsProcessed(items) {
		t.Fatal("raising desired quantity must un-process the order")
	}
}

func TestDeriveIsProcessed_Idempotent(t *testing.T) {
	items := []model.LineItem{itemWithPurchases(1, 1)}
	first := DeriveIsProcessed(items)
	second := DeriveIsProcessed(items)
	if first != second {
		t.Fatal("derivation must be idempotent")
	}
}
