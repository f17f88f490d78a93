package model

import "time"

// 会員ランクの定義（Bronze/Silver/Goldなど）。
// min_spending昇順で隙間なく並べる。全ティアを超えたら最上位にフォールバック。
type RankingTier struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	MinSpending     int64     `gorm:"not null" json:"min_spending"`
	MaxSpending     int64     `gorm:"not null" json:"max_spending"`
	DiscountPercent int64     `gorm:"not null;default:0" json:"discount_percent"`
	Benefits        string    `gorm:"type:text" json:"benefits"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 顧客の現在ランク。累計消費額は注文合計から毎回計算し直す（キャッシュ）。
// 登録時に最下位ティアで作成し、注文確定のたびに同期的に更新する。
type CustomerRanking struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	RankingTierID int64     `gorm:"not null;index" json:"ranking_tier_id"`
	TotalSpending int64     `gorm:"not null;default:0" json:"total_spending"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
