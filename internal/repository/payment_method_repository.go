package repository

import (
	"context"

	"shop/internal/domain/model"
)

type PaymentMethodRepository interface {
	FindByID(ctx context.Context, id int64) (model.PaymentMethod, error)
	ListActive(ctx context.Context) ([]model.PaymentMethod, error)
}
