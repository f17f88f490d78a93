package usecase

import (
	"context"
	"net/http"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// 顧客の通知一覧。保存はsink側の仕事なのでここは読みだけ。
type NotificationUsecase struct {
	notificationRepo repo.NotificationRepository
}

// DI
func NewNotificationUsecase(notificationRepo repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notificationRepo: notificationRepo}
}

func (u *NotificationUsecase) ListMine(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if userID <= 0 {
		return []model.Notification{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		return []model.Notification{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, err := u.notificationRepo.ListByUserID(ctx, userID, limit)
	if err != nil {
		return []model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
