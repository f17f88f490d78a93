package usecase_test

import (
	"context"
	"io"
	"testing"

	"shop/internal/domain/model"
	"shop/internal/metrics"
	"shop/internal/notification"
	repo "shop/internal/repository"
	"shop/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type checkoutMocks struct {
	tx        *TxManagerMock
	orders    *OrderRepoMock
	items     *OrderItemRepoMock
	infos     *OrderInfoRepoMock
	products  *ProductRepoMock
	inventory *InventoryRepoMock
	vouchers  *VoucherRepoMock
	usages    *VoucherUsageRepoMock
	tiers     *RankingTierRepoMock
	rankings  *CustomerRankingRepoMock
	payments  *PaymentMethodRepoMock
}

func newCheckoutMocks() *checkoutMocks {
	m := &checkoutMocks{
		tx:        new(TxManagerMock),
		orders:    new(OrderRepoMock),
		items:     new(OrderItemRepoMock),
		infos:     new(OrderInfoRepoMock),
		products:  new(ProductRepoMock),
		inventory: new(InventoryRepoMock),
		vouchers:  new(VoucherRepoMock),
		usages:    new(VoucherUsageRepoMock),
		tiers:     new(RankingTierRepoMock),
		rankings:  new(CustomerRankingRepoMock),
		payments:  new(PaymentMethodRepoMock),
	}
	m.tx.Repos = &TxReposStub{
		orders:           m.orders,
		orderItems:       m.items,
		orderInfos:       m.infos,
		products:         m.products,
		inventory:        m.inventory,
		vouchers:         m.vouchers,
		voucherUsages:    m.usages,
		rankingTiers:     m.tiers,
		customerRankings: m.rankings,
		paymentMethods:   m.payments,
	}
	m.tx.On("WithinTx", mock.Anything).Return(nil)
	return m
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testTiers() []model.RankingTier {
	return []model.RankingTier{
		{ID: 1, Name: "BRONZE", MinSpending: 0, MaxSpending: 99_999, DiscountPercent: 0},
		{ID: 2, Name: "SILVER", MinSpending: 100_000, MaxSpending: 499_999, DiscountPercent: 10, Benefits: "10%割引"},
	}
}

func validCheckoutInput() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		CustomerName:    "山田太郎",
		PhoneNumber:     "090-0000-0000",
		Email:           "taro@example.com",
		ShippingAddress: "東京都千代田区1-1-1",
		PaymentMethodID: 1,
		Items: []usecase.CheckoutItemInput{
			{ProductID: 100, Quantity: 2, UnitPrice: 100},
		},
		IdempotencyKey: "key-123",
	}
}

// 成功パスの共通スタブ（注文ID 55、BRONZE 0%のまま）
func stubHappyPath(m *checkoutMocks, userID int64) {
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").Return(model.Order{}, false, nil)
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, Code: "CREDIT_CARD", IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(55), nil)
	m.items.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Return(nil)
	m.infos.On("Create", mock.Anything, mock.Anything).Return(model.OrderInfo{ID: 1, OrderID: 55, State: model.OrderStateSuccess}, nil)
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	m.orders.On("SumTotalByUserID", mock.Anything, userID).Return(int64(220), nil)
	m.rankings.On("UpdateTier", mock.Anything, userID, int64(1), int64(220)).Return(nil)
}

func TestCheckoutUsecase_Checkout_Unauthorized(t *testing.T) {
	m := newCheckoutMocks()
	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	_, err := uc.Checkout(context.Background(), 0, validCheckoutInput())
	assertErrContains(t, err, "unauthorized")
}

func TestCheckoutUsecase_Checkout_EmptyCart(t *testing.T) {
	m := newCheckoutMocks()
	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	in := validCheckoutInput()
	in.Items = nil

	_, err := uc.Checkout(context.Background(), 1, in)
	assertErrContains(t, err, "cart empty")
}

func TestCheckoutUsecase_Checkout_MissingIdempotencyKey(t *testing.T) {
	m := newCheckoutMocks()
	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	in := validCheckoutInput()
	in.IdempotencyKey = "  "

	_, err := uc.Checkout(context.Background(), 1, in)
	assertErrContains(t, err, "invalid idempotency_key")
}

// subtotal 200 -> 税20 -> total 220。確定通知が1件出る
func TestCheckoutUsecase_Checkout_Success_NoVoucher(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()
	stubHappyPath(m, userID)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	out, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assert.NoError(t, err)

	assert.False(t, out.Replayed)
	assert.Equal(t, int64(200), out.Summary.Subtotal)
	assert.Equal(t, int64(0), out.Summary.TotalDiscount)
	assert.Equal(t, int64(20), out.Summary.Tax)
	assert.Equal(t, int64(220), out.Summary.Total)
	assert.Nil(t, out.Voucher)
	assert.Equal(t, string(model.OrderStateSuccess), out.Order.State)

	if assert.Len(t, sink.OrderEvents, 1) {
		ev := sink.OrderEvents[0]
		assert.Equal(t, int64(55), ev.OrderID)
		assert.Equal(t, model.NotificationOrderConfirmed, ev.Kind)
		assert.Equal(t, int64(220), ev.OrderTotal)
	}
	assert.Empty(t, sink.RankEvents)

	m.orders.AssertExpectations(t)
	m.inventory.AssertExpectations(t)
	m.rankings.AssertExpectations(t)
}

// SILVER(10%) + SAVE10(10%)：ランク割引20、クーポンは残額180に掛かって18、total 182
func TestCheckoutUsecase_Checkout_RankingAndVoucherDiscount(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").Return(model.Order{}, false, nil)
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 2}, nil)

	voucher := model.Voucher{
		ID:            9,
		Code:          "SAVE10",
		DiscountType:  model.VoucherDiscountPercent,
		DiscountValue: 10,
		StartsAt:      testPast(),
		EndsAt:        testFuture(),
		MaxUses:       100,
		IsActive:      true,
	}
	m.vouchers.On("FindByCode", mock.Anything, "SAVE10").Return(voucher, nil)

	m.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Subtotal == 200 && o.RankingDiscount == 20 && o.VoucherDiscount == 18 && o.Total == 182
	})).Return(int64(55), nil)
	m.items.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Return(nil)
	m.infos.On("Create", mock.Anything, mock.Anything).Return(model.OrderInfo{OrderID: 55, State: model.OrderStateSuccess}, nil)
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	m.vouchers.On("IncrementUsesIfBelowCap", mock.Anything, int64(9)).Return(true, nil)
	m.usages.On("Create", mock.Anything, mock.MatchedBy(func(u model.VoucherUsage) bool {
		return u.VoucherID == 9 && u.OrderID == 55 && u.UserID == userID && u.DiscountAmount == 18
	})).Return(nil)
	m.orders.On("SumTotalByUserID", mock.Anything, userID).Return(int64(150_000), nil)
	m.rankings.On("UpdateTier", mock.Anything, userID, int64(2), int64(150_000)).Return(nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	in := validCheckoutInput()
	in.VoucherCode = "SAVE10"

	out, err := uc.Checkout(ctx, userID, in)
	assert.NoError(t, err)

	assert.Equal(t, int64(182), out.Summary.Total)
	if assert.NotNil(t, out.Voucher) {
		assert.Equal(t, "SAVE10", out.Voucher.Code)
		assert.Equal(t, int64(18), out.Voucher.DiscountAmount)
	}
	//SILVERのままなので昇格通知は出ない
	assert.Empty(t, sink.RankEvents)

	m.orders.AssertExpectations(t)
	m.vouchers.AssertExpectations(t)
	m.usages.AssertExpectations(t)
}

// 書き込み時の条件付きUPDATEで在庫切れ -> 全体が失敗し通知も出ない
func TestCheckoutUsecase_Checkout_OutOfStockAtWrite(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").Return(model.Order{}, false, nil)
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(55), nil)
	m.items.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Return(nil)
	m.infos.On("Create", mock.Anything, mock.Anything).Return(model.OrderInfo{OrderID: 55, State: model.OrderStateSuccess}, nil)

	//事前読みでは足りて見えたが、書き込み時に競合で負けたケース
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(false, nil)

	met := metrics.NewCheckoutMetrics(prometheus.NewRegistry())
	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), met)

	_, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assertErrContains(t, err, "out of stock")

	assert.Empty(t, sink.OrderEvents)
	m.rankings.AssertNotCalled(t, "UpdateTier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	assert.Equal(t, float64(1), testutil.ToFloat64(met.StockRejections))
	assert.Equal(t, float64(1), testutil.ToFloat64(met.Checkouts.WithLabelValues("rejected")))
}

// クーポン上限も書き込み時に再検証される
func TestCheckoutUsecase_Checkout_VoucherCapAtWrite(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").Return(model.Order{}, false, nil)
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)

	voucher := model.Voucher{
		ID:            9,
		Code:          "SAVE10",
		DiscountType:  model.VoucherDiscountPercent,
		DiscountValue: 10,
		StartsAt:      testPast(),
		EndsAt:        testFuture(),
		MaxUses:       100,
		CurrentUses:   99,
		IsActive:      true,
	}
	m.vouchers.On("FindByCode", mock.Anything, "SAVE10").Return(voucher, nil)

	m.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(55), nil)
	m.items.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Return(nil)
	m.infos.On("Create", mock.Anything, mock.Anything).Return(model.OrderInfo{OrderID: 55, State: model.OrderStateSuccess}, nil)
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)

	//読み時点では99/100だったが、書き込みまでに他の注文が上限を埋めた
	m.vouchers.On("IncrementUsesIfBelowCap", mock.Anything, int64(9)).Return(false, nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	in := validCheckoutInput()
	in.VoucherCode = "SAVE10"

	_, err := uc.Checkout(ctx, userID, in)
	assertErrContains(t, err, "voucher usage limit reached")

	m.usages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, sink.OrderEvents)
}

// 同じキーの再送は既存注文をそのまま返す（新規作成・通知なし）
func TestCheckoutUsecase_Checkout_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()

	existing := model.Order{
		ID:              55,
		UserID:          userID,
		Subtotal:        200,
		Tax:             20,
		Total:           220,
		IdempotencyKey:  "key-123",
		PaymentMethodID: 1,
	}
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").Return(existing, true, nil)
	m.items.On("ListByOrderID", mock.Anything, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 100},
	}, nil)
	m.infos.On("FindByOrderID", mock.Anything, int64(55)).Return(model.OrderInfo{OrderID: 55, State: model.OrderStateSuccess}, nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	out, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assert.NoError(t, err)

	assert.True(t, out.Replayed)
	assert.Equal(t, int64(55), out.Order.ID)
	assert.Equal(t, int64(220), out.Summary.Total)

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sink.OrderEvents)
}

// 初注文で昇格ラインを超えたら昇格通知が1件出る
func TestCheckoutUsecase_Checkout_RankUpgradeNotification(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").Return(model.Order{}, false, nil)
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(55), nil)
	m.items.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Return(nil)
	m.infos.On("Create", mock.Anything, mock.Anything).Return(model.OrderInfo{OrderID: 55, State: model.OrderStateSuccess}, nil)
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)

	//今回の注文でSILVERライン（100,000）を超えた
	m.orders.On("SumTotalByUserID", mock.Anything, userID).Return(int64(120_000), nil)
	m.rankings.On("UpdateTier", mock.Anything, userID, int64(2), int64(120_000)).Return(nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	out, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assert.NoError(t, err)

	if assert.NotNil(t, out.Ranking) {
		assert.Equal(t, "SILVER", out.Ranking.TierName)
		assert.Equal(t, int64(120_000), out.Ranking.TotalSpending)
	}
	if assert.Len(t, sink.RankEvents, 1) {
		assert.Equal(t, "SILVER", sink.RankEvents[0].TierName)
	}

	m.rankings.AssertExpectations(t)
}

// 同時リクエストでINSERTが競合したら、新しいtxで先行注文を引き直す
func TestCheckoutUsecase_Checkout_DuplicateKeyRace(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()

	//1回目のtx: キー未登録に見えるがINSERTで競合する
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").
		Return(model.Order{}, false, nil).Once()
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, Code: "CREDIT_CARD", IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(0), assert.AnError)

	//2回目のtx: 先行リクエストが作った注文が見つかる
	existing := model.Order{
		ID:              55,
		UserID:          userID,
		Subtotal:        200,
		Tax:             20,
		Total:           220,
		IdempotencyKey:  "key-123",
		PaymentMethodID: 1,
	}
	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").
		Return(existing, true, nil).Once()
	m.items.On("ListByOrderID", mock.Anything, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 100},
	}, nil)
	m.infos.On("FindByOrderID", mock.Anything, int64(55)).Return(model.OrderInfo{OrderID: 55, State: model.OrderStateSuccess}, nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	out, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assert.NoError(t, err)

	assert.True(t, out.Replayed)
	assert.Equal(t, int64(55), out.Order.ID)
	assert.Equal(t, int64(220), out.Summary.Total)

	//失敗したtxの中で引き直していないこと（abort済みのtxは使えない）
	m.tx.AssertNumberOfCalls(t, "WithinTx", 2)
	m.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sink.OrderEvents)
}

// 先行注文も見つからなければ競合エラーとして返す
func TestCheckoutUsecase_Checkout_DuplicateKeyRace_NoWinner(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()

	m.orders.On("FindByIdempotencyKey", mock.Anything, userID, "key-123").
		Return(model.Order{}, false, nil)
	m.payments.On("FindByID", mock.Anything, int64(1)).Return(model.PaymentMethod{ID: 1, Code: "CREDIT_CARD", IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: 100, Stock: 10, IsAvailable: true,
	}, nil)
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(0), assert.AnError)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	_, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assertErrContains(t, err, "idempotency conflict")
}

func TestCheckoutUsecase_ValidateVoucher_OK(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()

	//SILVER 10%の顧客
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 2}, nil)

	m.vouchers.On("FindByCode", mock.Anything, "SAVE10").Return(model.Voucher{
		ID:            9,
		Code:          "SAVE10",
		DiscountType:  model.VoucherDiscountPercent,
		DiscountValue: 10,
		StartsAt:      testPast(),
		EndsAt:        testFuture(),
		MaxUses:       100,
		IsActive:      true,
	}, nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	out, err := uc.ValidateVoucher(ctx, userID, usecase.ValidateVoucherInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: 100, Quantity: 2, UnitPrice: 100},
		},
		VoucherCode: "SAVE10",
	})
	assert.NoError(t, err)

	//subtotal 200 → ランク割引20 → クーポンは残額180の10%=18
	assert.Equal(t, int64(9), out.Voucher.ID)
	assert.Equal(t, int64(18), out.Voucher.DiscountAmount)
	assert.Equal(t, int64(200), out.Summary.Subtotal)
	assert.Equal(t, int64(182), out.Summary.Total)

	//ドライランなので何も書かない
	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.vouchers.AssertNotCalled(t, "IncrementUsesIfBelowCap", mock.Anything, mock.Anything)
	m.usages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_ValidateVoucher_NotFound(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	m := newCheckoutMocks()
	m.tiers.On("ListOrdered", mock.Anything).Return(testTiers(), nil)
	m.rankings.On("FindByUserID", mock.Anything, userID).Return(model.CustomerRanking{UserID: userID, RankingTierID: 1}, nil)
	m.vouchers.On("FindByCode", mock.Anything, "NOPE").Return(model.Voucher{}, repo.ErrNotFound)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	_, err := uc.ValidateVoucher(ctx, userID, usecase.ValidateVoucherInput{
		Items:       []usecase.CheckoutItemInput{{ProductID: 100, Quantity: 1, UnitPrice: 100}},
		VoucherCode: "NOPE",
	})
	assertErrContains(t, err, "voucher not found")
}

func TestCheckoutUsecase_ListPaymentMethods(t *testing.T) {
	m := newCheckoutMocks()
	m.payments.On("ListActive", mock.Anything).Return([]model.PaymentMethod{
		{ID: 1, Code: "CREDIT_CARD", Name: "クレジットカード", IsActive: true},
		{ID: 3, Code: "COD", Name: "代金引換", IsActive: true},
	}, nil)

	sink := notification.NewMemorySink()
	uc := usecase.NewCheckoutUsecase(m.tx, sink, testLogger(), nil)

	methods, err := uc.ListPaymentMethods(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, methods, 2) {
		assert.Equal(t, "CREDIT_CARD", methods[0].Code)
	}
}
