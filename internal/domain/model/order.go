package model

import "time"

// 注文本体。金額内訳は確定時に計算した値を保存する（後から再計算しない）。
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name"`
	PhoneNumber     string `gorm:"type:varchar(50);not null" json:"phone_number"`
	Email           string `gorm:"type:varchar(255);not null" json:"email"`
	ShippingAddress string `gorm:"type:text;not null" json:"shipping_address"`
	OrderNote       string `gorm:"type:text" json:"order_note"`

	PaymentMethodID int64  `gorm:"not null" json:"payment_method_id"`
	VoucherID       *int64 `gorm:"index" json:"voucher_id"`

	//金額内訳（すべて確定時点のスナップショット）
	Subtotal        int64 `gorm:"not null" json:"subtotal"`
	RankingDiscount int64 `gorm:"not null;default:0" json:"ranking_discount"`
	VoucherDiscount int64 `gorm:"not null;default:0" json:"voucher_discount"`
	Tax             int64 `gorm:"not null" json:"tax"`
	Total           int64 `gorm:"not null" json:"total"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
