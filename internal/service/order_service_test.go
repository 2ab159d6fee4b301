package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes. The transaction fake just runs the function; the
// repository fakes hold one collection each.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) ReplaceDocument(ctx context.Context, order *model.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) UpdateFlags(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		flag, _ := value.(bool)
		switch column {
		case "is_archived":
			order.IsArchived = flag
		case "is_deleted":
			order.IsDeleted = flag
		case "status_is_paid":
			order.Status.IsPaid = flag
		case "status_is_processed":
			order.Status.IsProcessed = flag
		case "status_is_shipped":
			order.Status.IsShipped = flag
		}
	}
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, order := range r.orders {
		archived := order.IsArchived || order.IsDeleted
		if archived != filter.Archived {
			continue
		}
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Snapshot(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, order := range r.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (r *fakeOrderRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) HardDeleteByProductName(ctx context.Context, productName string) (int64, error) {
	var removed int64
	for id, order := range r.orders {
		for i := range order.Items {
			if order.Items[i].ProductName == productName {
				delete(r.orders, id)
				removed++
				break
			}
		}
	}
	return removed, nil
}

type fakeRateRepo struct {
	rates []model.ExchangeRate
}

func (r *fakeRateRepo) Create(ctx context.Context, rate *model.ExchangeRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	r.rates = append(r.rates, *rate)
	return nil
}

func (r *fakeRateRepo) Update(ctx context.Context, rate *model.ExchangeRate) error {
	for i := range r.rates {
		if r.rates[i].ID == rate.ID {
			r.rates[i] = *rate
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRateRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ExchangeRate, error) {
	for i := range r.rates {
		if r.rates[i].ID == id {
			clone := r.rates[i]
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRateRepo) FindByCurrencyAndDate(ctx context.Context, currency, date string) (*model.ExchangeRate, error) {
	for i := range r.rates {
		if r.rates[i].Currency == currency && r.rates[i].Date == date {
			clone := r.rates[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeRateRepo) List(ctx context.Context, limit int) ([]model.ExchangeRate, error) {
	out := make([]model.ExchangeRate, len(r.rates))
	copy(out, r.rates)
	return out, nil
}

func (r *fakeRateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range r.rates {
		if r.rates[i].ID == id {
			r.rates = append(r.rates[:i], r.rates[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func newTestOrderService(t *testing.T) (OrderService, *fakeOrderRepo, *fakeRateRepo, *fakeAuditRepo) {
	t.Helper()
	hub := ws.NewHub()
	go hub.Run()

	orderRepo := newFakeOrderRepo()
	rateRepo := &fakeRateRepo{}
	auditRepo := &fakeAuditRepo{}
	svc := NewOrderService(orderRepo, rateRepo, auditRepo, fakeTxManager{}, hub)
	return svc, orderRepo, rateRepo, auditRepo
}

func validSaveRequest() SaveOrderRequest {
	return SaveOrderRequest{
		Customer: "Yuna",
		AddedBy:  "Mina",
		Items: []LineItemRequest{
			{
				ProductName:      "Face Cream",
				DesiredQuantity:  2,
				UnitSellingPrice: decimal.NewFromInt(500),
				Currency:         model.CurrencyKRW,
				PaymentMethod:    model.PaymentVisa,
			},
		},
	}
}

func TestSaveRejectsMissingOperator(t *testing.T) {
	svc, _, _, _ := newTestOrderService(t)

	req := validSaveRequest()
	req.AddedBy = "  "
	if _, err := svc.Save(context.Background(), nil, req); !errors.Is(err, ErrNoOperator) {
		t.Fatalf("expected ErrNoOperator, got %v", err)
	}
}

func TestSaveRejectsMissingCustomer(t *testing.T) {
	svc, _, _, _ := newTestOrderService(t)

	req := validSaveRequest()
	req.Customer = ""
	if _, err := svc.Save(context.Background(), nil, req); !errors.Is(err, ErrNoCustomer) {
		t.Fatalf("expected ErrNoCustomer, got %v", err)
	}
}

func TestSaveRejectsNegativeQuantity(t *testing.T) {
	svc, _, _, _ := newTestOrderService(t)

	req := validSaveRequest()
	req.Items[0].DesiredQuantity = -1
	if _, err := svc.Save(context.Background(), nil, req); !errors.Is(err, ErrNegativeQuantity) {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestSaveRecomputesCostAndTotal(t *testing.T) {
	svc, _, _, _ := newTestOrderService(t)

	req := validSaveRequest()
	req.Items[0].Purchases = []PurchaseBatchRequest{
		{
			Quantity:         2,
			ForeignUnitPrice: decimal.NewFromInt(1000),
			Currency:         model.CurrencyJPY,
			ExchangeRate:     decimal.NewFromInt(40),
			PaymentMethod:    model.PaymentVisa,
			PurchaseDate:     "2026-08-30",
		},
	}
	result, err := svc.Save(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantCost := decimal.NewFromInt(50) // 2 * (1000 / 40)
	if !result.Order.Items[0].Cost.Equal(wantCost) {
		t.Fatalf("cost = %s, want %s", result.Order.Items[0].Cost, wantCost)
	}
	wantTotal := decimal.NewFromInt(1000) // 2 * 500
	if !result.Order.TotalAmount.Equal(wantTotal) {
		t.Fatalf("total = %s, want %s", result.Order.TotalAmount, wantTotal)
	}
}

func TestSaveDerivesProcessedStatusAndEdge(t *testing.T) {
	svc, _, _, _ := newTestOrderService(t)

	req := validSaveRequest()
	result, err := svc.Save(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.IsProcessed {
		t.Fatal("order with no purchases must not be processed")
	}

	id := result.Order.ID
	req.Items[0].Purchases = []PurchaseBatchRequest{
		{
			Quantity:         2,
			ForeignUnitPrice: decimal.NewFromInt(100),
			Currency:         model.CurrencyKRW,
			ExchangeRate:     decimal.NewFromInt(1),
			PaymentMethod:    model.PaymentVisa,
			PurchaseDate:     "2026-08-30",
		},
	}
	result, err = svc.Save(context.Background(), &id, req)
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if !result.IsProcessed {
		t.Fatal("fully purchased order must be processed")
	}
	if !result.ProcessedNow() {
		t.Fatal("first full procurement must report the processed edge")
	}

	// Saving again fully purchased: still processed, no new edge.
	result, err = svc.Save(context.Background(), &id, req)
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if result.ProcessedNow() {
		t.Fatal("an already processed order must not report the edge again")
	}
}

func TestSaveOverwritesHandToggledProcessed(t *testing.T) {
	svc, orderRepo, _, _ := newTestOrderService(t)

	result, err := svc.Save(context.Background(), nil, validSaveRequest())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	id := result.Order.ID

	if _, err := svc.ToggleStatusFlag(context.Background(), id, "is_processed"); err != nil {
		t.Fatalf("ToggleStatusFlag: %v", err)
	}
	if !orderRepo.orders[id].Status.IsProcessed {
		t.Fatal("toggle must flip the stored flag")
	}

	// Full save recomputes from the batches; nothing is purchased.
	result, err = svc.Save(context.Background(), &id, validSaveRequest())
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if result.IsProcessed {
		t.Fatal("recompute must overwrite the hand-set flag")
	}
}

func TestAppendPurchaseUnitUsesRateTable(t *testing.T) {
	svc, orderRepo, rateRepo, _ := newTestOrderService(t)

	rateRepo.rates = []model.ExchangeRate{
		{
			ID:       uuid.New(),
			Currency: model.CurrencyJPY,
			Date:     "2026-08-01",
			VisaRate: decimal.NewFromInt(38),
		},
	}

	req := validSaveRequest()
	req.Items[0].DesiredQuantity = 1
	req.Items[0].Currency = model.CurrencyJPY
	req.Items[0].Purchases = []PurchaseBatchRequest{
		{
			Quantity:         0,
			ForeignUnitPrice: decimal.NewFromInt(760),
			Currency:         model.CurrencyJPY,
			ExchangeRate:     decimal.Zero,
			PaymentMethod:    model.PaymentVisa,
			PurchaseDate:     "2026-08-01",
		},
	}
	saved, err := svc.Save(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	result, err := svc.AppendPurchaseUnit(context.Background(), saved.Order.ID, 0, "Mina")
	if err != nil {
		t.Fatalf("AppendPurchaseUnit: %v", err)
	}
	if !result.IsProcessed {
		t.Fatal("one unit against desired 1 must mark the order processed")
	}
	if !result.ProcessedNow() {
		t.Fatal("procurement completing here must report the edge")
	}

	stored := orderRepo.orders[saved.Order.ID]
	item := stored.Items[0]
	if got := item.PurchasedQuantity(); got != 1 {
		t.Fatalf("purchased quantity = %d, want 1", got)
	}
	// 760 / 38 = 20 at the table rate.
	if want := decimal.NewFromInt(20); !item.Cost.Equal(want) {
		t.Fatalf("cost = %s, want %s", item.Cost, want)
	}
}

func TestAppendPurchaseUnitRejectsBadIndex(t *testing.T) {
	svc, _, _, _ := newTestOrderService(t)

	saved, err := svc.Save(context.Background(), nil, validSaveRequest())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.AppendPurchaseUnit(context.Background(), saved.Order.ID, 5, "Mina"); !errors.Is(err, ErrItemOutOfRange) {
		t.Fatalf("expected ErrItemOutOfRange, got %v", err)
	}
}

func TestRemovePurchaseUnitUnprocesses(t *testing.T) {
	svc, orderRepo, _, _ := newTestOrderService(t)

	req := validSaveRequest()
	req.Items[0].DesiredQuantity = 1
	req.Items[0].Purchases = []PurchaseBatchRequest{
		{
			Quantity:         1,
			ForeignUnitPrice: decimal.NewFromInt(100),
			Currency:         model.CurrencyKRW,
			ExchangeRate:     decimal.NewFromInt(1),
			PaymentMethod:    model.PaymentCash,
			PurchaseDate:     "2026-08-30",
		},
	}
	saved, err := svc.Save(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.IsProcessed {
		t.Fatal("setup: order should start processed")
	}

	result, err := svc.RemovePurchaseUnit(context.Background(), saved.Order.ID, 0, "Mina")
	if err != nil {
		t.Fatalf("RemovePurchaseUnit: %v", err)
	}
	if result.IsProcessed {
		t.Fatal("removing the only unit must unprocess the order")
	}
	if got := orderRepo.orders[saved.Order.ID].Items[0].PurchasedQuantity(); got != 0 {
		t.Fatalf("purchased quantity = %d, want 0", got)
	}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	svc, orderRepo, _, auditRepo := newTestOrderService(t)

	saved, err := svc.Save(context.Background(), nil, validSaveRequest())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	id := saved.Order.ID

	if err := svc.Archive(context.Background(), id, "Mina"); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !orderRepo.orders[id].IsArchived {
		t.Fatal("archive must set the flag")
	}

	if err := svc.Restore(context.Background(), id, "Mina"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if order := orderRepo.orders[id]; order.IsArchived || order.IsDeleted {
		t.Fatal("restore must clear both visibility flags")
	}

	var actions []string
	for _, entry := range auditRepo.entries {
		actions = append(actions, entry.Action)
	}
	want := []string{model.ActionSaveOrder, model.ActionArchiveOrder, model.ActionRestoreOrder}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("audit actions = %v, want %v", actions, want)
		}
	}
}

func TestHardDeleteRemovesOrder(t *testing.T) {
	svc, orderRepo, _, _ := newTestOrderService(t)

	saved, err := svc.Save(context.Background(), nil, validSaveRequest())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.HardDelete(context.Background(), saved.Order.ID, "Mina"); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	if _, ok := orderRepo.orders[saved.Order.ID]; ok {
		t.Fatal("hard delete must remove the order")
	}

	if err := svc.HardDelete(context.Background(), uuid.New(), "Mina"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
