package usecase

import (
	"context"
	"net/http"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// 管理者操作ログの閲覧。
type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

// DI
func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

// GET /admin/audit-logsの入力DTO
type AuditLogListInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	filter := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		filter.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		filter.ResourceType = &rt
	}

	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
