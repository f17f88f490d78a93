package model

import "time"

type OrderState string

const (
	OrderStateSuccess            OrderState = "ORDER_SUCCESS"
	OrderStateTransferToShipping OrderState = "TRANSFER_TO_SHIPPING"
	OrderStateShipping           OrderState = "SHIPPING"
	OrderStateDelivered          OrderState = "DELIVERED"
	OrderStateCancelled          OrderState = "CANCELLED"
)

// stateとして正しい値か
func (s OrderState) Valid() bool {
	switch s {
	case OrderStateSuccess, OrderStateTransferToShipping, OrderStateShipping,
		OrderStateDelivered, OrderStateCancelled:
		return true
	}
	return false
}

// 終端状態か（DELIVERED / CANCELLED からは遷移しない）
func (s OrderState) Terminal() bool {
	return s == OrderStateDelivered || s == OrderStateCancelled
}

// 注文ステータス。注文本体とは別レコードで、1注文につき1件。
type OrderInfo struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64      `gorm:"not null;uniqueIndex" json:"order_id"`
	State     OrderState `gorm:"type:varchar(30);not null;index" json:"state"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
