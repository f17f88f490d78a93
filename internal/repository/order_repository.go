package repository

import (
	"context"
	"time"

	"shop/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	State  string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//累計消費額＝その顧客の全注文のtotal合計
	SumTotalByUserID(ctx context.Context, userID int64) (int64, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

// 注文ステータス（注文本体とは別レコード）。
type OrderInfoRepository interface {
	Create(ctx context.Context, info model.OrderInfo) (model.OrderInfo, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.OrderInfo, error)
	UpdateState(ctx context.Context, orderID int64, state model.OrderState) error
}
