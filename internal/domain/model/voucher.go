package model

import "time"

type VoucherDiscountType string

const (
	VoucherDiscountPercent VoucherDiscountType = "PERCENT"
	VoucherDiscountFixed   VoucherDiscountType = "FIXED"
)

// クーポン定義。CurrentUsesの加算は条件付きUPDATEだけで行う
// （current_uses < max_uses のときのみ）。
type Voucher struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//コードは大文字に正規化して保存する
	Code string `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`

	DiscountType  VoucherDiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue int64               `gorm:"not null" json:"discount_value"`

	//0なら上限なし
	MaxDiscountAmount int64 `gorm:"not null;default:0" json:"max_discount_amount"`

	MinOrderValue int64     `gorm:"not null;default:0" json:"min_order_value"`
	StartsAt      time.Time `gorm:"not null" json:"starts_at"`
	EndsAt        time.Time `gorm:"not null" json:"ends_at"`

	MaxUses     int64 `gorm:"not null" json:"max_uses"`
	CurrentUses int64 `gorm:"not null;default:0" json:"current_uses"`

	//nilなら誰でも使える。指定ありなら該当ティアのみ
	RankingTierID *int64 `gorm:"index" json:"ranking_tier_id"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// クーポン利用履歴。1注文につき同じクーポンは1回だけ。
// 作成のみで更新しない（注文削除のロールバック時だけ消える）。
type VoucherUsage struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VoucherID      int64     `gorm:"not null;uniqueIndex:idx_voucher_order" json:"voucher_id"`
	OrderID        int64     `gorm:"not null;uniqueIndex:idx_voucher_order" json:"order_id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	DiscountAmount int64     `gorm:"not null" json:"discount_amount"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
