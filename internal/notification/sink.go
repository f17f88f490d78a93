package notification

import (
	"context"

	"shop/internal/domain/model"
)

// 注文ステータス通知のイベント
type OrderStatusEvent struct {
	OrderID    int64
	UserID     int64
	Kind       model.NotificationKind
	OrderTotal int64
}

// ランク昇格通知のイベント（昇格時のみ。降格では出さない）
type RankUpgradeEvent struct {
	UserID   int64
	TierName string
	Benefits string
}

// 通知の送り先。グローバルに取りに行かず、usecaseに注入する。
// fire-and-forget：失敗しても注文は巻き戻さない（呼び出し側がログするだけ）。
type Sink interface {
	OrderStatus(ctx context.Context, ev OrderStatusEvent) error
	RankUpgrade(ctx context.Context, ev RankUpgradeEvent) error
}
