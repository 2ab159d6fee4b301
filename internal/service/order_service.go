package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/ledger"
	"backend/internal/model"
	"backend/internal/rates"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Required-field and input validation failures. These reject the save
// before anything is written; there is never a partial write.
var (
	ErrNoOperator       = errors.New("no operator selected")
	ErrNoCustomer       = errors.New("customer name is required")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrOrderNotFound    = errors.New("order not found")
	ErrItemOutOfRange   = errors.New("line item index out of range")
)

// DTOs
type PurchaseBatchRequest struct {
	Quantity         int             `json:"quantity"`
	ForeignUnitPrice decimal.Decimal `json:"foreign_unit_price"`
	Currency         string          `json:"currency"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	PaymentMethod    string          `json:"payment_method" binding:"omitempty,oneof=CASH VISA JCB"`
	PurchaseDate     string          `json:"purchase_date"`
}

type LineItemRequest struct {
	ProductName           string                 `json:"product_name"`
	DesiredQuantity       int                    `json:"desired_quantity"`
	UnitSellingPrice      decimal.Decimal        `json:"unit_selling_price"`
	EstimatedUnitShipping decimal.Decimal        `json:"estimated_unit_shipping"`
	Currency              string                 `json:"currency"`
	PaymentMethod         string                 `json:"payment_method" binding:"omitempty,oneof=CASH VISA JCB"`
	Purchases             []PurchaseBatchRequest `json:"purchases"`
}

type SaveOrderRequest struct {
	Customer            string            `json:"customer"`
	Category            string            `json:"category" binding:"omitempty,oneof=STANDARD FREE_SHIPPING"`
	DeliveryMethod      string            `json:"delivery_method"`
	DomesticShippingFee decimal.Decimal   `json:"domestic_shipping_fee"`
	AddedBy             string            `json:"added_by"`
	Status              model.OrderStatus `json:"status"`
	Items               []LineItemRequest `json:"items"`
}

// SaveResult reports the persisted order plus the processed-status edge
// so the caller can emit the one-shot "fully procured" notification.
type SaveResult struct {
	Order        *model.Order `json:"order"`
	WasProcessed bool         `json:"was_processed"`
	IsProcessed  bool         `json:"is_processed"`
}

// ProcessedNow is true exactly on the false->true transition.
func (r SaveResult) ProcessedNow() bool {
	return !r.WasProcessed && r.IsProcessed
}

type OrderService interface {
	List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Save(ctx context.Context, id *uuid.UUID, req SaveOrderRequest) (SaveResult, error)
	AppendPurchaseUnit(ctx context.Context, orderID uuid.UUID, itemIndex int, operator string) (SaveResult, error)
	RemovePurchaseUnit(ctx context.Context, orderID uuid.UUID, itemIndex int, operator string) (SaveResult, error)
	ToggleStatusFlag(ctx context.Context, orderID uuid.UUID, field string) (*model.Order, error)
	Archive(ctx context.Context, orderID uuid.UUID, operator string) error
	Restore(ctx context.Context, orderID uuid.UUID, operator string) error
	HardDelete(ctx context.Context, orderID uuid.UUID, operator string) error
	SuggestPrice(item LineItemRequest, marginPercent decimal.Decimal) decimal.Decimal
}

type orderService struct {
	orderRepo repository.OrderRepository
	rateRepo  repository.ExchangeRateRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	rateRepo repository.ExchangeRateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		rateRepo:  rateRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func validateSaveRequest(req *SaveOrderRequest) error {
	if strings.TrimSpace(req.AddedBy) == "" {
		return ErrNoOperator
	}
	if strings.TrimSpace(req.Customer) == "" {
		return ErrNoCustomer
	}
	if req.DomesticShippingFee.IsNegative() {
		return ErrNegativePrice
	}
	for _, item := range req.Items {
		if item.DesiredQuantity < 0 {
			return ErrNegativeQuantity
		}
		if item.UnitSellingPrice.IsNegative() || item.EstimatedUnitShipping.IsNegative() {
			return ErrNegativePrice
		}
		for _, b := range item.Purchases {
			if b.Quantity < 0 {
				return ErrNegativeQuantity
			}
			if b.ForeignUnitPrice.IsNegative() || b.ExchangeRate.IsNegative() {
				return ErrNegativePrice
			}
		}
	}
	return nil
}

// buildItems maps request items to models, recomputing the cached cost
// from the batches rather than trusting any client-sent value.
func buildItems(reqItems []LineItemRequest) []model.LineItem {
	items := make([]model.LineItem, 0, len(reqItems))
	for i, ri := range reqItems {
		item := model.LineItem{
			Position:              i,
			ProductName:           strings.TrimSpace(ri.ProductName),
			DesiredQuantity:       ri.DesiredQuantity,
			UnitSellingPrice:      ri.UnitSellingPrice,
			EstimatedUnitShipping: ri.EstimatedUnitShipping,
			Currency:              ri.Currency,
			PaymentMethod:         ri.PaymentMethod,
		}
		if item.Currency == "" {
			item.Currency = model.CurrencyKRW
		}
		if item.PaymentMethod == "" {
			item.PaymentMethod = model.PaymentVisa
		}
		for j, rb := range ri.Purchases {
			item.Purchases = append(item.Purchases, model.PurchaseBatch{
				Position:         j,
				Quantity:         rb.Quantity,
				ForeignUnitPrice: rb.ForeignUnitPrice,
				Currency:         rb.Currency,
				ExchangeRate:     rb.ExchangeRate,
				PaymentMethod:    rb.PaymentMethod,
				PurchaseDate:     rb.PurchaseDate,
			})
		}
		item.Cost = ledger.ItemCost(&item)
		items = append(items, item)
	}
	return items
}

// Save persists an order as a whole document. The derived processing
// status is recomputed here and overwrites whatever the client sent.
func (s *orderService) Save(ctx context.Context, id *uuid.UUID, req SaveOrderRequest) (SaveResult, error) {
	if err := validateSaveRequest(&req); err != nil {
		return SaveResult{}, err
	}

	items := buildItems(req.Items)

	var order *model.Order
	wasProcessed := false
	if id != nil {
		existing, err := s.orderRepo.FindByIDWithItems(ctx, *id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SaveResult{}, ErrOrderNotFound
		}
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to load order: %w", err)
		}
		wasProcessed = existing.Status.IsProcessed
		order = existing
	} else {
		order = &model.Order{}
	}

	order.Customer = strings.TrimSpace(req.Customer)
	order.Category = req.Category
	if order.Category == "" {
		order.Category = model.CategoryStandard
	}
	order.DeliveryMethod = req.DeliveryMethod
	if order.DeliveryMethod == "" {
		order.DeliveryMethod = model.DeliveryUnset
	}
	order.DomesticShippingFee = req.DomesticShippingFee
	order.AddedBy = strings.TrimSpace(req.AddedBy)
	order.Items = items
	order.TotalAmount = ledger.OrderTotal(items)
	order.Status = model.OrderStatus{
		IsPaid:      req.Status.IsPaid,
		IsShipped:   req.Status.IsShipped,
		IsProcessed: ledger.DeriveIsProcessed(items),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var persistErr error
		if id != nil {
			persistErr = s.orderRepo.ReplaceDocument(txCtx, order)
		} else {
			persistErr = s.orderRepo.Create(txCtx, order)
		}
		if persistErr != nil {
			return fmt.Errorf("failed to save order: %w", persistErr)
		}
		return s.logOrderAction(txCtx, order, model.ActionSaveOrder, order.AddedBy)
	})
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{
		Order:        order,
		WasProcessed: wasProcessed,
		IsProcessed:  order.Status.IsProcessed,
	}
	s.afterOrderMutation(ctx, result)
	return result, nil
}

// applyLedgerMutation loads the order document, applies fn to the chosen
// line item, re-derives total and status, and saves the whole document.
func (s *orderService) applyLedgerMutation(
	ctx context.Context,
	orderID uuid.UUID,
	itemIndex int,
	operator string,
	fn func(item *model.LineItem) error,
) (SaveResult, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SaveResult{}, ErrOrderNotFound
	}
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to load order: %w", err)
	}
	if itemIndex < 0 || itemIndex >= len(order.Items) {
		return SaveResult{}, ErrItemOutOfRange
	}

	wasProcessed := order.Status.IsProcessed
	if err := fn(&order.Items[itemIndex]); err != nil {
		return SaveResult{}, err
	}

	order.TotalAmount = ledger.OrderTotal(order.Items)
	order.Status.IsProcessed = ledger.DeriveIsProcessed(order.Items)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.ReplaceDocument(txCtx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return s.logOrderAction(txCtx, order, model.ActionSaveOrder, operator)
	})
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{
		Order:        order,
		WasProcessed: wasProcessed,
		IsProcessed:  order.Status.IsProcessed,
	}
	s.afterOrderMutation(ctx, result)
	return result, nil
}

// AppendPurchaseUnit records "one more unit bought" for a line item. The
// candidate batch freezes today's rate from the live table, falling back
// to the item's existing rate, then 1:1.
func (s *orderService) AppendPurchaseUnit(ctx context.Context, orderID uuid.UUID, itemIndex int, operator string) (SaveResult, error) {
	records, err := s.rateRepo.List(ctx, 0)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	table := rates.NewTable(records)
	today := time.Now().Format("2006-01-02")

	return s.applyLedgerMutation(ctx, orderID, itemIndex, operator, func(item *model.LineItem) error {
		ledger.AppendUnit(item, ledger.BuildCandidate(item, table, today))
		return nil
	})
}

// RemovePurchaseUnit takes the most recent purchased unit back (LIFO).
func (s *orderService) RemovePurchaseUnit(ctx context.Context, orderID uuid.UUID, itemIndex int, operator string) (SaveResult, error) {
	return s.applyLedgerMutation(ctx, orderID, itemIndex, operator, func(item *model.LineItem) error {
		ledger.RemoveUnit(item)
		return nil
	})
}

// ToggleStatusFlag flips one status flag in place. isProcessed may be
// forced here, but the derived recompute wins again on the next full
// save.
func (s *orderService) ToggleStatusFlag(ctx context.Context, orderID uuid.UUID, field string) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var column string
	switch field {
	case "is_paid":
		column = "status_is_paid"
		order.Status.IsPaid = !order.Status.IsPaid
	case "is_processed":
		column = "status_is_processed"
		order.Status.IsProcessed = !order.Status.IsProcessed
	case "is_shipped":
		column = "status_is_shipped"
		order.Status.IsShipped = !order.Status.IsShipped
	default:
		return nil, fmt.Errorf("unknown status field: %s", field)
	}

	var value bool
	switch column {
	case "status_is_paid":
		value = order.Status.IsPaid
	case "status_is_processed":
		value = order.Status.IsProcessed
	case "status_is_shipped":
		value = order.Status.IsShipped
	}
	if err := s.orderRepo.UpdateFlags(ctx, orderID, map[string]interface{}{column: value}); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.broadcastOrdersSnapshot(ctx)
	return order, nil
}

func (s *orderService) Archive(ctx context.Context, orderID uuid.UUID, operator string) error {
	return s.setVisibility(ctx, orderID, operator, model.ActionArchiveOrder,
		map[string]interface{}{"is_archived": true})
}

func (s *orderService) Restore(ctx context.Context, orderID uuid.UUID, operator string) error {
	return s.setVisibility(ctx, orderID, operator, model.ActionRestoreOrder,
		map[string]interface{}{"is_archived": false, "is_deleted": false})
}

func (s *orderService) setVisibility(ctx context.Context, orderID uuid.UUID, operator, action string, fields map[string]interface{}) error {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.UpdateFlags(txCtx, orderID, fields); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return s.logOrderAction(txCtx, order, action, operator)
	})
	if err != nil {
		return err
	}
	s.broadcastOrdersSnapshot(ctx)
	return nil
}

func (s *orderService) HardDelete(ctx context.Context, orderID uuid.UUID, operator string) error {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.HardDelete(txCtx, orderID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return s.logOrderAction(txCtx, order, model.ActionDeleteOrder, operator)
	})
	if err != nil {
		return err
	}
	s.broadcastOrdersSnapshot(ctx)
	return nil
}

// SuggestPrice is the one-shot margin helper: selling price covering the
// first batch's unit cost plus the requested margin percentage.
func (s *orderService) SuggestPrice(item LineItemRequest, marginPercent decimal.Decimal) decimal.Decimal {
	built := buildItems([]LineItemRequest{item})
	return ledger.SuggestUnitPrice(&built[0], marginPercent)
}

func (s *orderService) logOrderAction(ctx context.Context, order *model.Order, action, operator string) error {
	itemNames := make([]string, 0, len(order.Items))
	for i := range order.Items {
		itemNames = append(itemNames, fmt.Sprintf("%sx%d", order.Items[i].ProductName, order.Items[i].DesiredQuantity))
	}
	details, _ := json.Marshal(map[string]interface{}{
		"customer":     order.Customer,
		"total_amount": order.TotalAmount,
		"items":        itemNames,
		"is_processed": order.Status.IsProcessed,
	})
	entry := &model.AuditLog{
		Operator:   operator,
		Action:     action,
		EntityID:   order.ID.String(),
		EntityName: order.Customer,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// afterOrderMutation pushes the fresh collection snapshot and, exactly on
// the not-processed -> processed edge, the one-shot notification event.
func (s *orderService) afterOrderMutation(ctx context.Context, result SaveResult) {
	s.broadcastOrdersSnapshot(ctx)
	if result.ProcessedNow() {
		s.hub.BroadcastEvent(ws.EventOrderProcessed, map[string]interface{}{
			"order_id": result.Order.ID,
			"customer": result.Order.Customer,
		})
	}
}

func (s *orderService) broadcastOrdersSnapshot(ctx context.Context) {
	snapshot, err := s.orderRepo.Snapshot(ctx)
	if err != nil {
		// The write already committed; subscribers catch up on the next
		// mutation's snapshot.
		return
	}
	s.hub.BroadcastEvent(ws.EventOrdersSnapshot, snapshot)
}
