package repository

import (
	"context"

	"shop/internal/domain/model"
)

// ランクティア定義の取得。min_spending昇順で返す。
type RankingTierRepository interface {
	ListOrdered(ctx context.Context) ([]model.RankingTier, error)
	FindByID(ctx context.Context, id int64) (model.RankingTier, error)
}

// 顧客の現在ランク。
type CustomerRankingRepository interface {
	FindByUserID(ctx context.Context, userID int64) (model.CustomerRanking, error)
	Create(ctx context.Context, cr model.CustomerRanking) (model.CustomerRanking, error)

	// ティアと累計消費額をまとめて更新する
	UpdateTier(ctx context.Context, userID int64, tierID int64, totalSpending int64) error
}
