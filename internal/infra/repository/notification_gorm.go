package repository

import (
	"context"

	"shop/internal/domain/model"

	"gorm.io/gorm"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, n model.Notification) error {
	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		return err
	}
	return nil
}

func (r *NotificationGormRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var items []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Notification{}, err
	}
	return items, nil
}
