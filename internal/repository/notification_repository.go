package repository

import (
	"context"

	"shop/internal/domain/model"
)

// 通知の保存と一覧。配送は外部のsinkに任せる。
type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) error
	ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
}
