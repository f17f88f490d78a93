package model

import (
	"time"

	"gorm.io/gorm"
)

// 在庫はマイナス禁止。減算は条件付きUPDATEだけで行う。
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU         string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	Stock       int64          `gorm:"not null" json:"stock"`
	IsAvailable bool           `gorm:"not null;default:false" json:"is_available"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
