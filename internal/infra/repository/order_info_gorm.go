package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type OrderInfoGormRepository struct {
	db *gorm.DB
}

func NewOrderInfoGormRepository(db *gorm.DB) *OrderInfoGormRepository {
	return &OrderInfoGormRepository{db: db}
}

func (r *OrderInfoGormRepository) Create(ctx context.Context, info model.OrderInfo) (model.OrderInfo, error) {
	if err := r.db.WithContext(ctx).Create(&info).Error; err != nil {
		return model.OrderInfo{}, err
	}
	return info, nil
}

func (r *OrderInfoGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.OrderInfo, error) {
	var info model.OrderInfo
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderInfo{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderInfo{}, err
	}
	return info, nil
}

func (r *OrderInfoGormRepository) UpdateState(ctx context.Context, orderID int64, state model.OrderState) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderInfo{}).
		Where("order_id = ?", orderID).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
