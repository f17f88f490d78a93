package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	"shop/internal/metrics"
	"shop/internal/notification"
	repo "shop/internal/repository"

	"github.com/sirupsen/logrus"
)

// チェックアウト本体。カート→注文の変換と、その副作用
// （在庫減算・クーポン消費・ランク再計算・通知）をまとめて受け持つ。
type CheckoutUsecase struct {
	tx   repo.TransactionManager
	sink notification.Sink
	log  *logrus.Logger
	met  *metrics.CheckoutMetrics
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	sink notification.Sink,
	log *logrus.Logger,
	met *metrics.CheckoutMetrics,
) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, sink: sink, log: log, met: met}
}

// カート1行。単価はカート追加時点のスナップショット。
type CheckoutItemInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

type CheckoutInput struct {
	CustomerName    string
	PhoneNumber     string
	Email           string
	ShippingAddress string
	OrderNote       string
	PaymentMethodID int64
	Items           []CheckoutItemInput
	VoucherCode     string
	IdempotencyKey  string
}

type VoucherOutput struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

type CheckoutOutput struct {
	Order     OrderOutput     `json:"order"`
	OrderInfo model.OrderInfo `json:"order_info"`
	Summary   PriceSummary    `json:"summary"`
	Voucher   *VoucherOutput  `json:"voucher,omitempty"`
	Ranking   *RankingOutput  `json:"ranking,omitempty"`

	//同じidempotency keyの再送だったか
	Replayed bool `json:"-"`
}

// 入力の形式チェック。業務チェックはtxの中で行う。
func validateCheckoutInput(in CheckoutInput) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid customer_name")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid phone_number")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid shipping_address")
	}
	if in.PaymentMethodID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid payment_method_id")
	}
	if len(in.Items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 || it.UnitPrice < 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid items")
		}
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	return nil
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	started := time.Now()
	out, err := u.checkout(ctx, userID, in)
	u.observe(started, err)
	return out, err
}

func (u *CheckoutUsecase) checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateCheckoutInput(in); err != nil {
		return CheckoutOutput{}, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	var out CheckoutOutput
	//通知はcommit後に出す（tx内で出すとrollback時に嘘の通知が残る）
	var pendingOrder []notification.OrderStatusEvent
	var pendingRank []notification.RankUpgradeEvent

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果（副作用なしで既存注文を返す）
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			replay, err := u.loadCheckoutOutput(ctx, r, existing)
			if err != nil {
				return err
			}
			out = replay
			out.Replayed = true
			return nil
		}

		// 支払い方法の存在確認
		pm, err := r.PaymentMethods().FindByID(ctx, in.PaymentMethodID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment method not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !pm.IsActive {
			return NewHTTPError(http.StatusBadRequest, "payment method not available")
		}

		// 各行の商品確認＋スナップショット作成
		now := time.Now()
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		var subtotal int64 = 0

		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsAvailable {
				return NewHTTPError(http.StatusBadRequest, "product not available")
			}
			//先に読みでも弾いておく（最終判定は書き込み時の条件付きUPDATE）
			if p.Stock < it.Quantity {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   it.UnitPrice,
				Quantity:            it.Quantity,
				CreatedAt:           now,
			})
			subtotal += it.UnitPrice * it.Quantity
		}

		// 現在ランクの割引。ランクレコードがなければ最下位扱い
		tier, err := currentTier(ctx, r, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		rankingDiscount := percentOf(subtotal, tier.DiscountPercent)

		// クーポン（任意）。判定はランク割引前のsubtotal、割引額は適用後の残額に掛ける
		var voucher *model.Voucher
		var voucherDiscount int64 = 0
		if strings.TrimSpace(in.VoucherCode) != "" {
			v, err := r.Vouchers().FindByCode(ctx, in.VoucherCode)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "voucher not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := validateVoucher(v, now, subtotal, tier.ID); err != nil {
				return err
			}
			voucherDiscount = voucherDiscountAmount(v, subtotal-rankingDiscount)
			voucher = &v
		}

		summary := buildSummary(subtotal, rankingDiscount, voucherDiscount)

		// 注文作成
		order := model.Order{
			UserID:          userID,
			CustomerName:    strings.TrimSpace(in.CustomerName),
			PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
			Email:           strings.TrimSpace(in.Email),
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			OrderNote:       strings.TrimSpace(in.OrderNote),
			PaymentMethodID: pm.ID,
			Subtotal:        summary.Subtotal,
			RankingDiscount: summary.RankingDiscount,
			VoucherDiscount: summary.VoucherDiscount,
			Tax:             summary.Tax,
			Total:           summary.Total,
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if voucher != nil {
			order.VoucherID = &voucher.ID
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った競合。PostgreSQLは失敗したtxが
			//abort状態になり再クエリできないので、外の新しいtxで引き直す
			return errIdempotencyKeyRace
		}
		order.ID = orderID

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//ステータスレコード（初期状態はORDER_SUCCESS）
		info, err := r.OrderInfos().Create(ctx, model.OrderInfo{
			OrderID: orderID,
			State:   model.OrderStateSuccess,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 在庫減算（書き込み時に条件を再検証。足りなければtxごと巻き戻す）
		for _, it := range in.Items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}
		}

		// クーポン消費。上限チェックも書き込み時に再検証する
		if voucher != nil {
			ok, err := r.Vouchers().IncrementUsesIfBelowCap(ctx, voucher.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "voucher usage limit reached")
			}
			if err := r.VoucherUsages().Create(ctx, model.VoucherUsage{
				VoucherID:      voucher.ID,
				OrderID:        orderID,
				UserID:         userID,
				DiscountAmount: voucherDiscount,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// 新しいtotalを含めてランクを決め直す
		change, err := recomputeRanking(ctx, r, userID)
		if err != nil {
			if _, ok := AsHTTPError(err); ok {
				return err
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		pendingOrder = append(pendingOrder, notification.OrderStatusEvent{
			OrderID:    orderID,
			UserID:     userID,
			Kind:       model.NotificationOrderConfirmed,
			OrderTotal: summary.Total,
		})
		if change.Upgraded {
			pendingRank = append(pendingRank, notification.RankUpgradeEvent{
				UserID:   userID,
				TierName: change.NewTier.Name,
				Benefits: change.NewTier.Benefits,
			})
		}

		out = CheckoutOutput{
			Order:     toOrderOutput(order, orderItems, info.State),
			OrderInfo: info,
			Summary:   summary,
			Ranking: &RankingOutput{
				TierID:          change.NewTier.ID,
				TierName:        change.NewTier.Name,
				DiscountPercent: change.NewTier.DiscountPercent,
				TotalSpending:   change.TotalSpending,
			},
		}
		if voucher != nil {
			out.Voucher = &VoucherOutput{
				ID:             voucher.ID,
				Code:           voucher.Code,
				DiscountAmount: voucherDiscount,
			}
		}
		return nil
	})

	if errors.Is(err, errIdempotencyKeyRace) {
		return u.replayByKey(ctx, userID, key)
	}
	if err != nil {
		return CheckoutOutput{}, err
	}

	//通知はfire-and-forget。失敗はログだけ残す
	u.emit(ctx, pendingOrder, pendingRank)

	return out, nil
}

// 注文INSERTがユニーク制約で失敗したときの合図
var errIdempotencyKeyRace = errors.New("idempotency key race")

// 同じキーの先行注文を新しいtxで引き直す（副作用なし）
func (u *CheckoutUsecase) replayByKey(ctx context.Context, userID int64, key string) (CheckoutOutput, error) {
	var out CheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !found {
			//キー以外の理由でINSERTが失敗していた
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}
		out, err = u.loadCheckoutOutput(ctx, r, existing)
		return err
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	out.Replayed = true
	return out, nil
}

// 既存注文からレスポンスを組み立て直す（idempotency再送用）
func (u *CheckoutUsecase) loadCheckoutOutput(ctx context.Context, r repo.TxRepos, o model.Order) (CheckoutOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	info, err := r.OrderInfos().FindByOrderID(ctx, o.ID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CheckoutOutput{
		Order:     toOrderOutput(o, items, info.State),
		OrderInfo: info,
		Summary: PriceSummary{
			Subtotal:        o.Subtotal,
			RankingDiscount: o.RankingDiscount,
			VoucherDiscount: o.VoucherDiscount,
			TotalDiscount:   o.RankingDiscount + o.VoucherDiscount,
			Tax:             o.Tax,
			Total:           o.Total,
		},
	}
	return out, nil
}

// 顧客の現在ティア。レコードがなければ最下位ティアとして扱う
func currentTier(ctx context.Context, r repo.TxRepos, userID int64) (model.RankingTier, error) {
	tiers, err := r.RankingTiers().ListOrdered(ctx)
	if err != nil {
		return model.RankingTier{}, err
	}
	if len(tiers) == 0 {
		return model.RankingTier{}, nil
	}

	cr, err := r.CustomerRankings().FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return tiers[0], nil
	}
	if err != nil {
		return model.RankingTier{}, err
	}

	for _, t := range tiers {
		if t.ID == cr.RankingTierID {
			return t, nil
		}
	}
	return tiers[0], nil
}

// クーポンの事前チェック（何も保存しないドライラン）。
type ValidateVoucherInput struct {
	Items       []CheckoutItemInput
	VoucherCode string
}

type ValidateVoucherOutput struct {
	Voucher VoucherOutput `json:"voucher"`
	Summary PriceSummary  `json:"summary"`
}

func (u *CheckoutUsecase) ValidateVoucher(ctx context.Context, userID int64, in ValidateVoucherInput) (ValidateVoucherOutput, error) {
	if userID <= 0 {
		return ValidateVoucherOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return ValidateVoucherOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 || it.UnitPrice < 0 {
			return ValidateVoucherOutput{}, NewHTTPError(http.StatusBadRequest, "invalid items")
		}
	}
	if strings.TrimSpace(in.VoucherCode) == "" {
		return ValidateVoucherOutput{}, NewHTTPError(http.StatusBadRequest, "invalid voucher_code")
	}

	var subtotal int64 = 0
	for _, it := range in.Items {
		subtotal += it.UnitPrice * it.Quantity
	}

	var out ValidateVoucherOutput

	//読みだけのtx。チェックアウト本番と同じ計算を通す
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		tier, err := currentTier(ctx, r, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		rankingDiscount := percentOf(subtotal, tier.DiscountPercent)

		v, err := r.Vouchers().FindByCode(ctx, in.VoucherCode)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "voucher not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := validateVoucher(v, time.Now(), subtotal, tier.ID); err != nil {
			return err
		}

		voucherDiscount := voucherDiscountAmount(v, subtotal-rankingDiscount)
		out = ValidateVoucherOutput{
			Voucher: VoucherOutput{
				ID:             v.ID,
				Code:           v.Code,
				DiscountAmount: voucherDiscount,
			},
			Summary: buildSummary(subtotal, rankingDiscount, voucherDiscount),
		}
		return nil
	})

	if err != nil {
		return ValidateVoucherOutput{}, err
	}
	return out, nil
}

// チェックアウト画面向けの支払い方法一覧。有効なものだけ返す
func (u *CheckoutUsecase) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ms, err := r.PaymentMethods().ListActive(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		methods = ms
		return nil
	})

	if err != nil {
		return []model.PaymentMethod{}, err
	}
	return methods, nil
}

func (u *CheckoutUsecase) emit(ctx context.Context, orders []notification.OrderStatusEvent, ranks []notification.RankUpgradeEvent) {
	for _, ev := range orders {
		if err := u.sink.OrderStatus(ctx, ev); err != nil {
			u.log.WithFields(logrus.Fields{
				"order_id": ev.OrderID,
				"kind":     string(ev.Kind),
				"error":    err.Error(),
			}).Warn("order notification failed")
		}
	}
	for _, ev := range ranks {
		if err := u.sink.RankUpgrade(ctx, ev); err != nil {
			u.log.WithFields(logrus.Fields{
				"user_id": ev.UserID,
				"tier":    ev.TierName,
				"error":   err.Error(),
			}).Warn("rank upgrade notification failed")
		}
	}
}

// メトリクス記録。4xxはrejected、5xxはerror扱い
func (u *CheckoutUsecase) observe(started time.Time, err error) {
	if u.met == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "error"
		if he, ok := AsHTTPError(err); ok && he.Status < 500 {
			result = "rejected"
			if he.Message == "out of stock" {
				u.met.StockRejections.Inc()
			}
		}
	}
	u.met.Checkouts.WithLabelValues(result).Inc()
	u.met.LatencyMS.Observe(float64(time.Since(started).Milliseconds()))
}
