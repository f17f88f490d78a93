package notification

import (
	"context"
	"fmt"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// 通知をnotificationsテーブルへ保存するsink。配送は外部に任せる。
type StoreSink struct {
	notifications repo.NotificationRepository
}

func NewStoreSink(notifications repo.NotificationRepository) *StoreSink {
	return &StoreSink{notifications: notifications}
}

// 状態ごとの通知タイトル
func statusTitle(kind model.NotificationKind) string {
	switch kind {
	case model.NotificationOrderConfirmed:
		return "ご注文を受け付けました"
	case model.NotificationOrderShipped:
		return "商品を発送しました"
	case model.NotificationOrderDelivered:
		return "商品をお届けしました"
	case model.NotificationOrderCancelled:
		return "ご注文をキャンセルしました"
	}
	return "ご注文の状況が更新されました"
}

func (s *StoreSink) OrderStatus(ctx context.Context, ev OrderStatusEvent) error {
	orderID := ev.OrderID
	return s.notifications.Create(ctx, model.Notification{
		UserID:  ev.UserID,
		Kind:    ev.Kind,
		Title:   statusTitle(ev.Kind),
		Body:    fmt.Sprintf("注文番号 #%d（合計 %d円）", ev.OrderID, ev.OrderTotal),
		OrderID: &orderID,
	})
}

func (s *StoreSink) RankUpgrade(ctx context.Context, ev RankUpgradeEvent) error {
	return s.notifications.Create(ctx, model.Notification{
		UserID: ev.UserID,
		Kind:   model.NotificationRankUpgrade,
		Title:  fmt.Sprintf("会員ランクが %s になりました", ev.TierName),
		Body:   ev.Benefits,
	})
}
