package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExchangeRateRepository interface {
	Create(ctx context.Context, rate *model.ExchangeRate) error
	Update(ctx context.Context, rate *model.ExchangeRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ExchangeRate, error)
	FindByCurrencyAndDate(ctx context.Context, currency, date string) (*model.ExchangeRate, error)
	List(ctx context.Context, limit int) ([]model.ExchangeRate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type exchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

func (r *exchangeRateRepository) Create(ctx context.Context, rate *model.ExchangeRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *exchangeRateRepository) Update(ctx context.Context, rate *model.ExchangeRate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}

func (r *exchangeRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

// FindByCurrencyAndDate returns nil without error when no record exists;
// the (currency, date) pair is the upsert key for rate saves.
func (r *exchangeRateRepository) FindByCurrencyAndDate(ctx context.Context, currency, date string) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	err := GetDB(ctx, r.db).
		Where("currency = ? AND date = ?", currency, date).
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *exchangeRateRepository) List(ctx context.Context, limit int) ([]model.ExchangeRate, error) {
	var out []model.ExchangeRate
	db := GetDB(ctx, r.db).Order("date DESC, updated_at DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *exchangeRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ExchangeRate{}).Error
}
