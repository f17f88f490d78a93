package usecase

import (
	"net/http"
	"time"

	"shop/internal/domain/model"
)

// 消費税率（%）。税は割引前のsubtotalに掛ける。
const TaxRatePercent = 10

// amountのpercent%を四捨五入で返す（非負前提）
func percentOf(amount int64, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return (amount*percent + 50) / 100
}

// レシート用の金額内訳
type PriceSummary struct {
	Subtotal        int64 `json:"subtotal"`
	RankingDiscount int64 `json:"ranking_discount"`
	VoucherDiscount int64 `json:"voucher_discount"`
	TotalDiscount   int64 `json:"total_discount"`
	Tax             int64 `json:"tax"`
	Total           int64 `json:"total"`
}

// 適用順：ランク割引→クーポン割引→税。
// 税は割引後ではなく元のsubtotalに掛ける（請求基準額を保つため）。
func buildSummary(subtotal, rankingDiscount, voucherDiscount int64) PriceSummary {
	tax := percentOf(subtotal, TaxRatePercent)
	return PriceSummary{
		Subtotal:        subtotal,
		RankingDiscount: rankingDiscount,
		VoucherDiscount: voucherDiscount,
		TotalDiscount:   rankingDiscount + voucherDiscount,
		Tax:             tax,
		Total:           subtotal - rankingDiscount - voucherDiscount + tax,
	}
}

// クーポンが使えるかの業務チェック。順番はコード解決→有効→期間→回数→最低金額→ランク。
// subtotalはランク割引前の金額で判定する。
func validateVoucher(v model.Voucher, now time.Time, subtotal int64, customerTierID int64) error {
	if !v.IsActive {
		return NewHTTPError(http.StatusBadRequest, "voucher inactive")
	}
	if now.Before(v.StartsAt) || now.After(v.EndsAt) {
		return NewHTTPError(http.StatusBadRequest, "voucher expired")
	}
	if v.CurrentUses >= v.MaxUses {
		return NewHTTPError(http.StatusBadRequest, "voucher usage limit reached")
	}
	if subtotal < v.MinOrderValue {
		return NewHTTPError(http.StatusBadRequest, "order total below voucher minimum")
	}
	if v.RankingTierID != nil && *v.RankingTierID != customerTierID {
		return NewHTTPError(http.StatusBadRequest, "voucher not available for your ranking")
	}
	return nil
}

// クーポン割引額。baseはランク割引を引いた後の金額（ランク割引が先、クーポンは後乗せ）。
func voucherDiscountAmount(v model.Voucher, base int64) int64 {
	var d int64
	switch v.DiscountType {
	case model.VoucherDiscountPercent:
		d = percentOf(base, v.DiscountValue)
	case model.VoucherDiscountFixed:
		d = v.DiscountValue
	}

	//0なら上限なし
	if v.MaxDiscountAmount > 0 && d > v.MaxDiscountAmount {
		d = v.MaxDiscountAmount
	}
	//値引きが残額を超えてはいけない
	if d > base {
		d = base
	}
	if d < 0 {
		d = 0
	}
	return d
}
