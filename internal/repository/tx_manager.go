package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	OrderInfos() OrderInfoRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Vouchers() VoucherRepository
	VoucherUsages() VoucherUsageRepository
	RankingTiers() RankingTierRepository
	CustomerRankings() CustomerRankingRepository
	PaymentMethods() PaymentMethodRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
