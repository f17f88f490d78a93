package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposStub struct {
	orders           repo.OrderRepository
	orderItems       repo.OrderItemRepository
	orderInfos       repo.OrderInfoRepository
	products         repo.ProductRepository
	inventory        repo.InventoryRepository
	vouchers         repo.VoucherRepository
	voucherUsages    repo.VoucherUsageRepository
	rankingTiers     repo.RankingTierRepository
	customerRankings repo.CustomerRankingRepository
	paymentMethods   repo.PaymentMethodRepository
}

func (r *TxReposStub) Orders() repo.OrderRepository                     { return r.orders }
func (r *TxReposStub) OrderItems() repo.OrderItemRepository             { return r.orderItems }
func (r *TxReposStub) OrderInfos() repo.OrderInfoRepository             { return r.orderInfos }
func (r *TxReposStub) Products() repo.ProductRepository                 { return r.products }
func (r *TxReposStub) Inventory() repo.InventoryRepository              { return r.inventory }
func (r *TxReposStub) Vouchers() repo.VoucherRepository                 { return r.vouchers }
func (r *TxReposStub) VoucherUsages() repo.VoucherUsageRepository       { return r.voucherUsages }
func (r *TxReposStub) RankingTiers() repo.RankingTierRepository         { return r.rankingTiers }
func (r *TxReposStub) CustomerRankings() repo.CustomerRankingRepository { return r.customerRankings }
func (r *TxReposStub) PaymentMethods() repo.PaymentMethodRepository     { return r.paymentMethods }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) SumTotalByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type OrderInfoRepoMock struct{ mock.Mock }

func (m *OrderInfoRepoMock) Create(ctx context.Context, info model.OrderInfo) (model.OrderInfo, error) {
	args := m.Called(ctx, info)
	out, _ := args.Get(0).(model.OrderInfo)
	return out, args.Error(1)
}

func (m *OrderInfoRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.OrderInfo, error) {
	args := m.Called(ctx, orderID)
	out, _ := args.Get(0).(model.OrderInfo)
	return out, args.Error(1)
}

func (m *OrderInfoRepoMock) UpdateState(ctx context.Context, orderID int64, state model.OrderState) error {
	args := m.Called(ctx, orderID, state)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type VoucherRepoMock struct{ mock.Mock }

func (m *VoucherRepoMock) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepoMock) FindByID(ctx context.Context, id int64) (model.Voucher, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepoMock) Create(ctx context.Context, v model.Voucher) (model.Voucher, error) {
	args := m.Called(ctx, v)
	out, _ := args.Get(0).(model.Voucher)
	return out, args.Error(1)
}

func (m *VoucherRepoMock) List(ctx context.Context, page int, limit int) ([]model.Voucher, int64, error) {
	args := m.Called(ctx, page, limit)
	vouchers, _ := args.Get(0).([]model.Voucher)
	return vouchers, args.Get(1).(int64), args.Error(2)
}

func (m *VoucherRepoMock) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *VoucherRepoMock) IncrementUsesIfBelowCap(ctx context.Context, voucherID int64) (bool, error) {
	args := m.Called(ctx, voucherID)
	return args.Bool(0), args.Error(1)
}

type VoucherUsageRepoMock struct{ mock.Mock }

func (m *VoucherUsageRepoMock) Create(ctx context.Context, usage model.VoucherUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *VoucherUsageRepoMock) ListByVoucherID(ctx context.Context, voucherID int64) ([]model.VoucherUsage, error) {
	args := m.Called(ctx, voucherID)
	usages, _ := args.Get(0).([]model.VoucherUsage)
	return usages, args.Error(1)
}

type RankingTierRepoMock struct{ mock.Mock }

func (m *RankingTierRepoMock) ListOrdered(ctx context.Context) ([]model.RankingTier, error) {
	args := m.Called(ctx)
	tiers, _ := args.Get(0).([]model.RankingTier)
	return tiers, args.Error(1)
}

func (m *RankingTierRepoMock) FindByID(ctx context.Context, id int64) (model.RankingTier, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(model.RankingTier)
	return t, args.Error(1)
}

type CustomerRankingRepoMock struct{ mock.Mock }

func (m *CustomerRankingRepoMock) FindByUserID(ctx context.Context, userID int64) (model.CustomerRanking, error) {
	args := m.Called(ctx, userID)
	cr, _ := args.Get(0).(model.CustomerRanking)
	return cr, args.Error(1)
}

func (m *CustomerRankingRepoMock) Create(ctx context.Context, cr model.CustomerRanking) (model.CustomerRanking, error) {
	args := m.Called(ctx, cr)
	out, _ := args.Get(0).(model.CustomerRanking)
	return out, args.Error(1)
}

func (m *CustomerRankingRepoMock) UpdateTier(ctx context.Context, userID int64, tierID int64, totalSpending int64) error {
	args := m.Called(ctx, userID, tierID, totalSpending)
	return args.Error(0)
}

type PaymentMethodRepoMock struct{ mock.Mock }

func (m *PaymentMethodRepoMock) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	args := m.Called(ctx, id)
	pm, _ := args.Get(0).(model.PaymentMethod)
	return pm, args.Error(1)
}

func (m *PaymentMethodRepoMock) ListActive(ctx context.Context) ([]model.PaymentMethod, error) {
	args := m.Called(ctx)
	methods, _ := args.Get(0).([]model.PaymentMethod)
	return methods, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Create(ctx context.Context, n model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepoMock) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, userID, limit)
	items, _ := args.Get(0).([]model.Notification)
	return items, args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func testPast() time.Time   { return time.Now().Add(-time.Hour) }
func testFuture() time.Time { return time.Now().Add(time.Hour) }

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
