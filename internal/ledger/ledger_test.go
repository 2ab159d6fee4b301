package ledger

import (
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/rates"

	"github.com/shopspring/decimal"
)

func batch(qty int, price, rate float64, payment, date string) model.PurchaseBatch {
	return model.PurchaseBatch{
		Quantity:         qty,
		ForeignUnitPrice: decimal.NewFromFloat(price),
		Currency:         model.CurrencyKRW,
		ExchangeRate:     decimal.NewFromFloat(rate),
		PaymentMethod:    payment,
		PurchaseDate:     date,
	}
}

func TestItemCost_SumsBatchEconomics(t *testing.T) {
	item := &model.LineItem{
		Purchases: []model.PurchaseBatch{
			batch(2, 1000, 30, model.PaymentCash, "2025-03-01"),
			batch(1, 1000, 31, model.PaymentCash, "2025-03-02"),
		},
	}

	// 2*(1000/30) + 1*(1000/31) = 66.66.. + 32.25.. ~= 98.92
	got := ItemCost(item)
	want := decimal.NewFromInt(2).Mul(decimal.NewFromInt(1000).Div(decimal.NewFromInt(30))).
		Add(decimal.NewFromInt(1).Mul(decimal.NewFromInt(1000).Div(decimal.NewFromInt(31))))
	if !got.Equal(want) {
		t.Fatalf("cost: expected %s, got %s", want, got)
	}
	if got.Round(2).String() != "98.92" {
		t.Fatalf("expected rounded cost 98.92, got %s", got.Round(2))
	}
}

func TestItemCost_ZeroRateFallsBackToOne(t *testing.T) {
	item := &model.LineItem{
		Purchases: []model.PurchaseBatch{
			batch(3, 500, 0, model.PaymentCash, "2025-03-01"),
		},
	}

	got := ItemCost(item)
	if !got.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("zero rate must be treated as 1, expected 1500, got %s", got)
	}
}

func TestItemCost_EmptyLedger(t *testing.T) {
	item := &model.LineItem{}
	if !ItemCost(item).IsZero() {
		t.Fatal("empty ledger must cost zero")
	}
}

func TestAppendUnit_MergesIdenticalEconomics(t *testing.T) {
	item := &model.LineItem{PaymentMethod: model.PaymentVisa}
	candidate := batch(1, 1000, 40.5, model.PaymentVisa, "2025-03-01")

	for i := 0; i < 5; i++ {
		AppendUnit(item, candidate)
	}

	if len(item.Purchases) != 1 {
		t.Fatalf("expected 1 merged batch, got %d", len(item.Purchases))
	}
	if item.Purchases[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", item.Purchases[0].Quantity)
	}
	if item.PurchasedQuantity() != 5 {
		t.Fatalf("expected purchased 5, got %d", item.PurchasedQuantity())
	}
}

func TestAppendUnit_NewBatchOnChangedEconomics(t *testing.T) {
	item := &model.LineItem{PaymentMethod: model.PaymentVisa}
	AppendUnit(item, batch(1, 1000, 40.5, model.PaymentVisa, "2025-03-01"))
	AppendUnit(item, batch(1, 1000, 41.0, model.PaymentVisa, "2025-03-02"))

	if len(item.Purchases) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(item.Purchases))
	}
	if item.Purchases[1].Position != 1 {
		t.Fatalf("expected appended batch at position 1, got %d", item.Purchases[1].Position)
	}
}

func TestAppendUnit_MergesIntoAnyMatchingBatch(t *testing.T) {
	// Ledger fragmented by a rate change and back again: the unit lands in
	// the earlier batch that still matches the full key.
	item := &model.LineItem{PaymentMethod: model.PaymentCash}
	first := batch(1, 900, 40, model.PaymentCash, "2025-03-01")
	second := batch(1, 900, 41, model.PaymentCash, "2025-03-01")
	AppendUnit(item, first)
	AppendUnit(item, second)
	AppendUnit(item, first)

	if len(item.Purchases) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(item.Purchases))
	}
	if item.Purchases[0].Quantity != 2 || item.Purchases[1].Quantity != 1 {
		t.Fatalf("expected quantities 2/1, got %d/%d",
			item.Purchases[0].Quantity, item.Purchases[1].Quantity)
	}
}

func TestAppendUnit_RecomputesCachedCost(t *testing.T) {
	item := &model.LineItem{PaymentMethod: model.PaymentCash}
	AppendUnit(item, batch(1, 1000, 40, model.PaymentCash, "2025-03-01"))

	if !item.Cost.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected cached cost 25, got %s", item.Cost)
	}
	if !item.Cost.Equal(ItemCost(item)) {
		t.Fatal("cached cost must equal the derived cost")
	}
}

func TestRemoveUnit_LIFO(t *testing.T) {
	item := &model.LineItem{PaymentMethod: model.PaymentCash}
	item.Purchases = []model.PurchaseBatch{
		batch(2, 1000, 40, model.PaymentCash, "2025-03-01"),
		batch(3, 1000, 41, model.PaymentCash, "2025-03-02"),
	}

	RemoveUnit(item)
	if item.Purchases[1].Quantity != 2 {
		t.Fatalf("expected last batch decremented to 2, got %d", item.Purchases[1].Quantity)
	}

	RemoveUnit(item)
	RemoveUnit(item)
	if len(item.Purchases) != 1 {
		t.Fatalf("expected last batch removed, got %d batches", len(item.Purchases))
	}
	if item.Purchases[0].Quantity != 2 {
		t.Fatalf("earlier batch must be untouched, got %d", item.Purchases[0].Quantity)
	}
}

func TestRemoveUnit_EmptyLedgerIsNoOp(t *testing.T) {
	item := &model.LineItem{}
	RemoveUnit(item) // must not panic
	if len(item.Purchases) != 0 {
		t.Fatal("empty ledger must stay empty")
	}
}

func TestBuildCandidate_PullsTodaysRate(t *testing.T) {
	now := time.Now()
	table := rates.NewTable([]model.ExchangeRate{{
		Currency:  model.CurrencyKRW,
		Date:      "2025-03-05",
		VisaRate:  decimal.NewFromFloat(40.5),
		CreatedAt: now,
		UpdatedAt: now,
	}})
	item := &model.LineItem{
		Currency:      model.CurrencyKRW,
		PaymentMethod: model.PaymentVisa,
		Purchases: []model.PurchaseBatch{
			batch(1, 1200, 39.0, model.PaymentVisa, "2025-03-01"),
		},
	}

	cand := BuildCandidate(item, table, "2025-03-05")
	if !cand.ExchangeRate.Equal(decimal.NewFromFloat(40.5)) {
		t.Fatalf("expected table rate 40.5, got %s", cand.ExchangeRate)
	}
	if !cand.ForeignUnitPrice.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("foreign price must carry over from the first batch, got %s", cand.ForeignUnitPrice)
	}
	if cand.Quantity != 1 || cand.PurchaseDate != "2025-03-05" {
		t.Fatalf("unexpected candidate %+v", cand)
	}
}

func TestBuildCandidate_FallsBackToExistingRateThenOne(t *testing.T) {
	empty := rates.NewTable(nil)

	withHistory := &model.LineItem{
		Currency:      model.CurrencyJPY,
		PaymentMethod: model.PaymentCash,
		Purchases: []model.PurchaseBatch{
			batch(1, 3000, 0.21, model.PaymentCash, "2025-03-01"),
		},
	}
	cand := BuildCandidate(withHistory, empty, "2025-03-05")
	if !cand.ExchangeRate.Equal(decimal.NewFromFloat(0.21)) {
		t.Fatalf("expected frozen item rate 0.21, got %s", cand.ExchangeRate)
	}

	fresh := &model.LineItem{Currency: model.CurrencyJPY, PaymentMethod: model.PaymentCash}
	cand = BuildCandidate(fresh, empty, "2025-03-05")
	if !cand.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 1:1 fallback, got %s", cand.ExchangeRate)
	}
}

func TestSuggestUnitPrice_CeilsMarginOverFirstBatch(t *testing.T) {
	item := &model.LineItem{
		Purchases: []model.PurchaseBatch{
			batch(2, 1000, 30, model.PaymentCash, "2025-03-01"),
			batch(1, 9999, 31, model.PaymentCash, "2025-03-02"),
		},
	}

	// unit cost 1000/30 = 33.33.., +20% = 40.0, ceil = 40
	got := SuggestUnitPrice(item, decimal.NewFromInt(20))
	if !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected 40, got %s", got)
	}

	// Only the first batch participates, even with later batches present.
	got = SuggestUnitPrice(item, decimal.Zero)
	if !got.Equal(decimal.NewFromInt(34)) {
		t.Fatalf("expected ceil(33.33)=34, got %s", got)
	}
}

func TestSuggestUnitPrice_NoBatches(t *testing.T) {
	if !SuggestUnitPrice(&model.LineItem{}, decimal.NewFromInt(30)).IsZero() {
		t.Fatal("no batches must suggest zero")
	}
}

func TestOrderTotal(t *testing.T) {
	items := []model.LineItem{
		{DesiredQuantity: 2, UnitSellingPrice: decimal.NewFromInt(500)},
		{DesiredQuantity: 3, UnitSellingPrice: decimal.NewFromInt(150)},
	}
	if got := OrderTotal(items); !got.Equal(decimal.NewFromInt(1450)) {
		t.Fatalf("expected 1450, got %s", got)
	}
	if !OrderTotal(nil).IsZero() {
		t.Fatal("empty order must total zero")
	}
}
