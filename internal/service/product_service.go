package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductName     = errors.New("product name is required")
	ErrProductExists   = errors.New("a product with this name already exists")
)

type SaveProductRequest struct {
	Name                  string          `json:"name"`
	SuggestedUnitPrice    decimal.Decimal `json:"suggested_unit_price"`
	EstimatedUnitShipping decimal.Decimal `json:"estimated_unit_shipping"`
	AddedBy               string          `json:"added_by"`
}

// CascadeDeleteResult reports what a catalog delete took with it.
type CascadeDeleteResult struct {
	Product       *model.Product `json:"product"`
	OrdersRemoved int64          `json:"orders_removed"`
}

type ProductService interface {
	List(ctx context.Context, search string) ([]model.Product, error)
	Save(ctx context.Context, id *uuid.UUID, req SaveProductRequest) (*model.Product, error)
	DeleteCascade(ctx context.Context, id uuid.UUID, operator string) (CascadeDeleteResult, error)
}

type productService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewProductService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ProductService {
	return &productService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

func (s *productService) List(ctx context.Context, search string) ([]model.Product, error) {
	return s.productRepo.List(ctx, search)
}

func (s *productService) Save(ctx context.Context, id *uuid.UUID, req SaveProductRequest) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrProductName
	}
	if req.SuggestedUnitPrice.IsNegative() || req.EstimatedUnitShipping.IsNegative() {
		return nil, ErrNegativePrice
	}

	var product *model.Product
	if id != nil {
		existing, err := s.productRepo.FindByID(ctx, *id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		product = existing
	} else {
		product = &model.Product{}
	}

	// Catalog names are the rollup's grouping key; duplicates would split
	// a product's rows.
	if byName, err := s.productRepo.FindByName(ctx, req.Name); err == nil && byName != nil {
		if id == nil || byName.ID != *id {
			return nil, ErrProductExists
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}

	product.Name = req.Name
	product.SuggestedUnitPrice = req.SuggestedUnitPrice
	product.EstimatedUnitShipping = req.EstimatedUnitShipping

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var persistErr error
		if id != nil {
			persistErr = s.productRepo.Update(txCtx, product)
		} else {
			persistErr = s.productRepo.Create(txCtx, product)
		}
		if persistErr != nil {
			return fmt.Errorf("failed to save product: %w", persistErr)
		}
		return s.logProductAction(txCtx, product, model.ActionSaveProduct, req.AddedBy, 0)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastProductsSnapshot(ctx)
	return product, nil
}

// DeleteCascade removes the catalog entry and every order that contains
// a line item for it, in one transaction. The order removal is a hard
// delete: this is the destructive cleanup path, not archiving.
func (s *productService) DeleteCascade(ctx context.Context, id uuid.UUID, operator string) (CascadeDeleteResult, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CascadeDeleteResult{}, ErrProductNotFound
	}
	if err != nil {
		return CascadeDeleteResult{}, err
	}

	var removed int64
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := s.orderRepo.HardDeleteByProductName(txCtx, product.Name)
		if err != nil {
			return fmt.Errorf("failed to delete orders for product: %w", err)
		}
		removed = n
		if err := s.productRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return s.logProductAction(txCtx, product, model.ActionDeleteProduct, operator, removed)
	})
	if err != nil {
		return CascadeDeleteResult{}, err
	}

	s.broadcastProductsSnapshot(ctx)
	s.broadcastOrdersSnapshot(ctx)
	return CascadeDeleteResult{Product: product, OrdersRemoved: removed}, nil
}

func (s *productService) logProductAction(ctx context.Context, product *model.Product, action, operator string, ordersRemoved int64) error {
	details, _ := json.Marshal(map[string]interface{}{
		"name":                 product.Name,
		"suggested_unit_price": product.SuggestedUnitPrice,
		"orders_removed":       ordersRemoved,
	})
	entry := &model.AuditLog{
		Operator:   operator,
		Action:     action,
		EntityID:   product.ID.String(),
		EntityName: product.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *productService) broadcastProductsSnapshot(ctx context.Context) {
	snapshot, err := s.productRepo.List(ctx, "")
	if err != nil {
		return
	}
	s.hub.BroadcastEvent(ws.EventProductsSnapshot, snapshot)
}

func (s *productService) broadcastOrdersSnapshot(ctx context.Context) {
	snapshot, err := s.orderRepo.Snapshot(ctx)
	if err != nil {
		return
	}
	s.hub.BroadcastEvent(ws.EventOrdersSnapshot, snapshot)
}
