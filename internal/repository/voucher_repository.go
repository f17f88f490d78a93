package repository

import (
	"context"

	"shop/internal/domain/model"
)

// クーポンの取得と利用数の加算。
type VoucherRepository interface {
	//コードは大文字正規化して検索する
	FindByCode(ctx context.Context, code string) (model.Voucher, error)
	FindByID(ctx context.Context, id int64) (model.Voucher, error)

	Create(ctx context.Context, v model.Voucher) (model.Voucher, error)
	List(ctx context.Context, page int, limit int) ([]model.Voucher, int64, error)
	SetActive(ctx context.Context, id int64, active bool) error

	// current_uses < max_uses のときだけ+1する。超過ならfalse
	IncrementUsesIfBelowCap(ctx context.Context, voucherID int64) (bool, error)
}

// クーポン利用履歴。作成のみ。
type VoucherUsageRepository interface {
	Create(ctx context.Context, usage model.VoucherUsage) error
	ListByVoucherID(ctx context.Context, voucherID int64) ([]model.VoucherUsage, error)
}
