package usecase

import (
	"context"
	"net/http"

	"shop/internal/domain/model"
	"shop/internal/notification"
	repo "shop/internal/repository"

	"github.com/sirupsen/logrus"
)

// ランク再計算の結果
type RankingChange struct {
	OldTier       model.RankingTier
	NewTier       model.RankingTier
	TotalSpending int64
	Upgraded      bool
}

// 累計消費額からランクを決め直す。
// カウンタを持たず毎回SUMし直すので、注文の後追い修正にも追従できる。
// 2回呼んでも同じ結果になる（冪等）。
func recomputeRanking(ctx context.Context, r repo.TxRepos, userID int64) (RankingChange, error) {
	var change RankingChange

	total, err := r.Orders().SumTotalByUserID(ctx, userID)
	if err != nil {
		return change, err
	}

	tiers, err := r.RankingTiers().ListOrdered(ctx)
	if err != nil {
		return change, err
	}
	if len(tiers) == 0 {
		return change, NewHTTPError(http.StatusInternalServerError, "no ranking tiers configured")
	}

	//該当する帯を探す。どの帯にも収まらなければ最上位へフォールバック
	selected := tiers[len(tiers)-1]
	for _, t := range tiers {
		if total >= t.MinSpending && total <= t.MaxSpending {
			selected = t
			break
		}
	}

	cr, err := r.CustomerRankings().FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		//初回は最下位ティアで作ってから判定し直す
		cr, err = r.CustomerRankings().Create(ctx, model.CustomerRanking{
			UserID:        userID,
			RankingTierID: tiers[0].ID,
		})
	}
	if err != nil {
		return change, err
	}

	//現在のティア
	old := tiers[0]
	for _, t := range tiers {
		if t.ID == cr.RankingTierID {
			old = t
			break
		}
	}

	//累計消費額のキャッシュは毎回更新する
	if err := r.CustomerRankings().UpdateTier(ctx, userID, selected.ID, total); err != nil {
		return change, err
	}

	change = RankingChange{
		OldTier:       old,
		NewTier:       selected,
		TotalSpending: total,
		//昇格のみ通知対象（降格は黙って更新）
		Upgraded: selected.ID != old.ID && selected.MinSpending > old.MinSpending,
	}
	return change, nil
}

type RankingOutput struct {
	TierID          int64  `json:"tier_id"`
	TierName        string `json:"tier_name"`
	DiscountPercent int64  `json:"discount_percent"`
	TotalSpending   int64  `json:"total_spending"`
}

// 会員ランクの参照と再計算。
type RankingUsecase struct {
	tx   repo.TransactionManager
	sink notification.Sink
	log  *logrus.Logger
}

func NewRankingUsecase(tx repo.TransactionManager, sink notification.Sink, log *logrus.Logger) *RankingUsecase {
	return &RankingUsecase{tx: tx, sink: sink, log: log}
}

// 自分の現在ランク
func (u *RankingUsecase) MyRanking(ctx context.Context, userID int64) (RankingOutput, error) {
	if userID <= 0 {
		return RankingOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out RankingOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cr, err := r.CustomerRankings().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		tier, err := r.RankingTiers().FindByID(ctx, cr.RankingTierID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = RankingOutput{
			TierID:          tier.ID,
			TierName:        tier.Name,
			DiscountPercent: tier.DiscountPercent,
			TotalSpending:   cr.TotalSpending,
		}
		return nil
	})

	if err != nil {
		return RankingOutput{}, err
	}
	return out, nil
}

// ティア一覧（公開）
func (u *RankingUsecase) ListTiers(ctx context.Context) ([]model.RankingTier, error) {
	var tiers []model.RankingTier

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		tiers, err = r.RankingTiers().ListOrdered(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return []model.RankingTier{}, err
	}
	return tiers, nil
}

// 管理用：ランクを明示的に再計算する。昇格したら通知を出す。
func (u *RankingUsecase) Recompute(ctx context.Context, userID int64) (RankingOutput, error) {
	if userID <= 0 {
		return RankingOutput{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	var change RankingChange

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		change, err = recomputeRanking(ctx, r, userID)
		if err != nil {
			if _, ok := AsHTTPError(err); ok {
				return err
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return RankingOutput{}, err
	}

	//通知の失敗で結果は変えない
	if change.Upgraded {
		if err := u.sink.RankUpgrade(ctx, notification.RankUpgradeEvent{
			UserID:   userID,
			TierName: change.NewTier.Name,
			Benefits: change.NewTier.Benefits,
		}); err != nil {
			u.log.WithFields(logrus.Fields{
				"user_id": userID,
				"tier":    change.NewTier.Name,
				"error":   err.Error(),
			}).Warn("rank upgrade notification failed")
		}
	}

	return RankingOutput{
		TierID:          change.NewTier.ID,
		TierName:        change.NewTier.Name,
		DiscountPercent: change.NewTier.DiscountPercent,
		TotalSpending:   change.TotalSpending,
	}, nil
}
