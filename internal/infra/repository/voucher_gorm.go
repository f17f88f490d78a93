package repository

import (
	"context"
	"errors"
	"strings"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type VoucherGormRepository struct {
	db *gorm.DB
}

func NewVoucherGormRepository(db *gorm.DB) *VoucherGormRepository {
	return &VoucherGormRepository{db: db}
}

// コードで1件取得（大文字に正規化して検索）
func (r *VoucherGormRepository) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var v model.Voucher
	err := r.db.WithContext(ctx).
		Where("code = ?", normalized).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Voucher{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

func (r *VoucherGormRepository) FindByID(ctx context.Context, id int64) (model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Voucher{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

func (r *VoucherGormRepository) Create(ctx context.Context, v model.Voucher) (model.Voucher, error) {
	v.Code = strings.ToUpper(strings.TrimSpace(v.Code))
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

func (r *VoucherGormRepository) List(ctx context.Context, page int, limit int) ([]model.Voucher, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Voucher{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vouchers []model.Voucher
	err := r.db.WithContext(ctx).
		Order("id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&vouchers).Error
	if err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

func (r *VoucherGormRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Voucher{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 上限未満のときだけ+1する
// 在庫減算と同じく、書き込み時にWHEREで再検証する
func (r *VoucherGormRepository) IncrementUsesIfBelowCap(ctx context.Context, voucherID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Voucher{}).
		Where("id = ? AND current_uses < max_uses", voucherID).
		Update("current_uses", gorm.Expr("current_uses + 1"))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

type VoucherUsageGormRepository struct {
	db *gorm.DB
}

func NewVoucherUsageGormRepository(db *gorm.DB) *VoucherUsageGormRepository {
	return &VoucherUsageGormRepository{db: db}
}

// 利用履歴を1件保存（(voucher, order)の複合ユニークで二重適用を防ぐ）
func (r *VoucherUsageGormRepository) Create(ctx context.Context, usage model.VoucherUsage) error {
	if err := r.db.WithContext(ctx).Create(&usage).Error; err != nil {
		return err
	}
	return nil
}

func (r *VoucherUsageGormRepository) ListByVoucherID(ctx context.Context, voucherID int64) ([]model.VoucherUsage, error) {
	var usages []model.VoucherUsage
	err := r.db.WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		Order("id asc").
		Find(&usages).Error
	if err != nil {
		return []model.VoucherUsage{}, err
	}
	return usages, nil
}
