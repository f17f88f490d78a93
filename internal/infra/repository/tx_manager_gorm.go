package repository

import (
	"context"

	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
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

func (r *txReposGorm) Orders() repo.OrderRepository                     { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository             { return r.orderItems }
func (r *txReposGorm) OrderInfos() repo.OrderInfoRepository             { return r.orderInfos }
func (r *txReposGorm) Products() repo.ProductRepository                 { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository              { return r.inventory }
func (r *txReposGorm) Vouchers() repo.VoucherRepository                 { return r.vouchers }
func (r *txReposGorm) VoucherUsages() repo.VoucherUsageRepository       { return r.voucherUsages }
func (r *txReposGorm) RankingTiers() repo.RankingTierRepository         { return r.rankingTiers }
func (r *txReposGorm) CustomerRankings() repo.CustomerRankingRepository { return r.customerRankings }
func (r *txReposGorm) PaymentMethods() repo.PaymentMethodRepository     { return r.paymentMethods }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:           NewOrderGormRepository(tx),
			orderItems:       NewOrderItemGormRepository(tx),
			orderInfos:       NewOrderInfoGormRepository(tx),
			products:         NewProductGormRepository(tx),
			inventory:        NewInventoryGormRepository(tx),
			vouchers:         NewVoucherGormRepository(tx),
			voucherUsages:    NewVoucherUsageGormRepository(tx),
			rankingTiers:     NewRankingTierGormRepository(tx),
			customerRankings: NewCustomerRankingGormRepository(tx),
			paymentMethods:   NewPaymentMethodGormRepository(tx),
		}
		return fn(r)
	})
}
