package model

import "time"

type NotificationKind string

const (
	NotificationOrderConfirmed NotificationKind = "CONFIRMED"
	NotificationOrderShipped   NotificationKind = "SHIPPED"
	NotificationOrderDelivered NotificationKind = "DELIVERED"
	NotificationOrderCancelled NotificationKind = "CANCELLED"
	NotificationRankUpgrade    NotificationKind = "RANK_UPGRADE"
)

// 顧客向け通知。配送トランスポートは外部なのでここでは保存まで。
type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64            `gorm:"not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"type:varchar(30);not null;index" json:"kind"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	OrderID   *int64           `gorm:"index" json:"order_id"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	ReadAt    *time.Time       `json:"read_at"`
}
