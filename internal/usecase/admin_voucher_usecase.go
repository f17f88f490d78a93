package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// コード未指定のとき自動採番するための約束
type VoucherCodeGenerator interface {
	NewCode() string
}

// クーポンの管理（作成・一覧・停止）。
// 利用数の加算だけはチェックアウト側の条件付きUPDATEで行い、ここでは触らない。
type AdminVoucherUsecase struct {
	voucherRepo repo.VoucherRepository
	usageRepo   repo.VoucherUsageRepository
	codeGen     VoucherCodeGenerator
}

// DI
func NewAdminVoucherUsecase(
	voucherRepo repo.VoucherRepository,
	usageRepo repo.VoucherUsageRepository,
	codeGen VoucherCodeGenerator,
) *AdminVoucherUsecase {
	return &AdminVoucherUsecase{
		voucherRepo: voucherRepo,
		usageRepo:   usageRepo,
		codeGen:     codeGen,
	}
}

type VoucherCreateInput struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	MaxDiscountAmount int64
	MinOrderValue     int64
	StartsAt          time.Time
	EndsAt            time.Time
	MaxUses           int64
	RankingTierID     *int64
}

func (u *AdminVoucherUsecase) Create(ctx context.Context, in VoucherCreateInput) (model.Voucher, error) {
	dt := model.VoucherDiscountType(strings.ToUpper(strings.TrimSpace(in.DiscountType)))
	if dt != model.VoucherDiscountPercent && dt != model.VoucherDiscountFixed {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}
	if in.DiscountValue <= 0 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid discount_value")
	}
	if dt == model.VoucherDiscountPercent && in.DiscountValue > 100 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid discount_value")
	}
	if in.MaxDiscountAmount < 0 || in.MinOrderValue < 0 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}
	if in.MaxUses < 1 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid max_uses")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid period")
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		code = u.codeGen.NewCode()
	}

	v, err := u.voucherRepo.Create(ctx, model.Voucher{
		Code:              code,
		DiscountType:      dt,
		DiscountValue:     in.DiscountValue,
		MaxDiscountAmount: in.MaxDiscountAmount,
		MinOrderValue:     in.MinOrderValue,
		StartsAt:          in.StartsAt,
		EndsAt:            in.EndsAt,
		MaxUses:           in.MaxUses,
		RankingTierID:     in.RankingTierID,
		IsActive:          true,
	})
	if err != nil {
		//コード重複はユニーク制約で弾かれる
		return model.Voucher{}, NewHTTPError(http.StatusConflict, "voucher code already exists")
	}
	return v, nil
}

type VoucherListOutput struct {
	Items []model.Voucher `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *AdminVoucherUsecase) List(ctx context.Context, page int, limit int) (VoucherListOutput, error) {
	if page < 1 {
		return VoucherListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return VoucherListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.voucherRepo.List(ctx, page, limit)
	if err != nil {
		return VoucherListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return VoucherListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 停止。利用済みの履歴はそのまま残る
func (u *AdminVoucherUsecase) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.voucherRepo.SetActive(ctx, id, false)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// クーポンの利用履歴
func (u *AdminVoucherUsecase) ListUsages(ctx context.Context, voucherID int64) ([]model.VoucherUsage, error) {
	if voucherID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.voucherRepo.FindByID(ctx, voucherID); err != nil {
		if err == repo.ErrNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	usages, err := u.usageRepo.ListByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return usages, nil
}
