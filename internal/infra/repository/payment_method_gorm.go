package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type PaymentMethodGormRepository struct {
	db *gorm.DB
}

func NewPaymentMethodGormRepository(db *gorm.DB) *PaymentMethodGormRepository {
	return &PaymentMethodGormRepository{db: db}
}

func (r *PaymentMethodGormRepository) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	var pm model.PaymentMethod
	err := r.db.WithContext(ctx).First(&pm, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentMethod{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PaymentMethod{}, err
	}
	return pm, nil
}

func (r *PaymentMethodGormRepository) ListActive(ctx context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&methods).Error
	if err != nil {
		return []model.PaymentMethod{}, err
	}
	return methods, nil
}
