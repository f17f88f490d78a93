package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type RankingTierGormRepository struct {
	db *gorm.DB
}

func NewRankingTierGormRepository(db *gorm.DB) *RankingTierGormRepository {
	return &RankingTierGormRepository{db: db}
}

// min_spending昇順で全ティアを返す
func (r *RankingTierGormRepository) ListOrdered(ctx context.Context) ([]model.RankingTier, error) {
	var tiers []model.RankingTier
	err := r.db.WithContext(ctx).
		Order("min_spending asc").
		Find(&tiers).Error
	if err != nil {
		return []model.RankingTier{}, err
	}
	return tiers, nil
}

func (r *RankingTierGormRepository) FindByID(ctx context.Context, id int64) (model.RankingTier, error) {
	var t model.RankingTier
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RankingTier{}, repo.ErrNotFound
	}
	if err != nil {
		return model.RankingTier{}, err
	}
	return t, nil
}

type CustomerRankingGormRepository struct {
	db *gorm.DB
}

func NewCustomerRankingGormRepository(db *gorm.DB) *CustomerRankingGormRepository {
	return &CustomerRankingGormRepository{db: db}
}

func (r *CustomerRankingGormRepository) FindByUserID(ctx context.Context, userID int64) (model.CustomerRanking, error) {
	var cr model.CustomerRanking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CustomerRanking{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CustomerRanking{}, err
	}
	return cr, nil
}

func (r *CustomerRankingGormRepository) Create(ctx context.Context, cr model.CustomerRanking) (model.CustomerRanking, error) {
	if err := r.db.WithContext(ctx).Create(&cr).Error; err != nil {
		return model.CustomerRanking{}, err
	}
	return cr, nil
}

// ティアと累計消費額をまとめて更新
func (r *CustomerRankingGormRepository) UpdateTier(ctx context.Context, userID int64, tierID int64, totalSpending int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CustomerRanking{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"ranking_tier_id": tierID,
			"total_spending":  totalSpending,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
