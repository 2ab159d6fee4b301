package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OperatorRepository interface {
	Create(ctx context.Context, operator *model.Operator) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Operator, error)
	Count(ctx context.Context) (int64, error)
}

type operatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, operator *model.Operator) error {
	return GetDB(ctx, r.db).Create(operator).Error
}

func (r *operatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Operator{}).Error
}

func (r *operatorRepository) List(ctx context.Context) ([]model.Operator, error) {
	var operators []model.Operator
	if err := GetDB(ctx, r.db).Order("created_at ASC").Find(&operators).Error; err != nil {
		return nil, err
	}
	return operators, nil
}

func (r *operatorRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Operator{}).Count(&total).Error
	return total, err
}
