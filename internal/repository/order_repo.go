package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Archived=true selects the recycle
// bin view (archived or soft-deleted); otherwise only live orders return.
type OrderFilter struct {
	Archived bool
	Search   string
	Page     int
	Limit    int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ReplaceDocument(ctx context.Context, order *model.Order) error
	UpdateFlags(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	Snapshot(ctx context.Context) ([]model.Order, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
	HardDeleteByProductName(ctx context.Context, productName string) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func preloadDocument(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Purchases", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := preloadDocument(GetDB(ctx, r.db)).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ReplaceDocument writes the order as a whole: scalar fields update in
// place, items and their purchase batches are dropped and re-inserted.
// Must run inside a transaction.
func (r *orderRepository) ReplaceDocument(ctx context.Context, order *model.Order) error {
	db := GetDB(ctx, r.db)

	var itemIDs []uuid.UUID
	if err := db.Model(&model.LineItem{}).
		Where("order_id = ?", order.ID).
		Pluck("id", &itemIDs).Error; err != nil {
		return err
	}
	if len(itemIDs) > 0 {
		if err := db.Where("item_id IN ?", itemIDs).Delete(&model.PurchaseBatch{}).Error; err != nil {
			return err
		}
		if err := db.Where("order_id = ?", order.ID).Delete(&model.LineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.Nil
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
		for j := range order.Items[i].Purchases {
			order.Items[i].Purchases[j].ID = uuid.Nil
			order.Items[i].Purchases[j].Position = j
		}
	}

	return db.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
}

func (r *orderRepository) UpdateFlags(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Order{})
	if filter.Archived {
		db = db.Where("is_archived = TRUE OR is_deleted = TRUE")
	} else {
		db = db.Where("is_archived = FALSE AND is_deleted = FALSE")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where(
			"customer ILIKE ? OR id IN (SELECT order_id FROM line_items WHERE product_name ILIKE ?)",
			pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := preloadDocument(db).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Snapshot loads the complete order collection, newest first, for the
// profitability rollup and for websocket snapshot broadcasts.
func (r *orderRepository) Snapshot(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := preloadDocument(GetDB(ctx, r.db)).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Order{}).Error
}

// HardDeleteByProductName permanently removes every order containing a
// line item for the product. Backs the catalog cascade delete.
func (r *orderRepository) HardDeleteByProductName(ctx context.Context, productName string) (int64, error) {
	db := GetDB(ctx, r.db)
	var orderIDs []uuid.UUID
	if err := db.Model(&model.LineItem{}).
		Where("product_name = ?", productName).
		Distinct().
		Pluck("order_id", &orderIDs).Error; err != nil {
		return 0, err
	}
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := db.Where("id IN ?", orderIDs).Delete(&model.Order{})
	return res.RowsAffected, res.Error
}
