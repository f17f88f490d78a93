package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	"shop/internal/notification"
	repo "shop/internal/repository"

	"github.com/sirupsen/logrus"
)

// 許可する遷移。DELIVERED / CANCELLED は終端で、そこからは出られない。
// 旧実装はどこからでもどこへでも遷移できたが、ここでは表で縛る
// （手動オペ用の逃げ道はforceフラグ）。
var allowedTransitions = map[model.OrderState][]model.OrderState{
	model.OrderStateSuccess:            {model.OrderStateTransferToShipping, model.OrderStateShipping, model.OrderStateCancelled},
	model.OrderStateTransferToShipping: {model.OrderStateShipping, model.OrderStateCancelled},
	model.OrderStateShipping:           {model.OrderStateDelivered, model.OrderStateCancelled},
	model.OrderStateDelivered:          {},
	model.OrderStateCancelled:          {},
}

func canTransition(from, to model.OrderState) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 状態→通知種別
func statusNotificationKind(s model.OrderState) model.NotificationKind {
	switch s {
	case model.OrderStateShipping:
		return model.NotificationOrderShipped
	case model.OrderStateDelivered:
		return model.NotificationOrderDelivered
	case model.OrderStateCancelled:
		return model.NotificationOrderCancelled
	}
	return model.NotificationOrderConfirmed
}

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	sink      notification.Sink
	log       *logrus.Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	sink notification.Sink,
	log *logrus.Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, sink: sink, log: log}
}

type AdminUpdateOrderStateInput struct {
	State string
	//終端状態からの復帰など、表にない遷移を手動で通すとき
	Force bool
}

type OrderStateOutput struct {
	OrderID int64  `json:"order_id"`
	State   string `json:"state"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.State != "" && !model.OrderState(f.State).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid state")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out, err := loadOrderOutput(ctx, r, o)
			if err != nil {
				return err
			}
			outs = append(outs, out)
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ステータス遷移（CANCELLED なら在庫戻し）
func (u *AdminOrderUsecase) UpdateState(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStateInput) (OrderStateOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderStateOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderStateOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newState := model.OrderState(strings.TrimSpace(in.State))
	if !newState.Valid() {
		return OrderStateOutput{}, NewHTTPError(http.StatusBadRequest, "invalid state")
	}

	var pending *notification.OrderStatusEvent

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文と現在ステータスの取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		info, err := r.OrderInfos().FindByOrderID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if info.State == newState {
			return nil
		}

		// 遷移表ガード。forceのときだけ表を無視して通す
		if !in.Force && !canTransition(info.State, newState) {
			return NewHTTPError(http.StatusBadRequest, "invalid transition")
		}

		// newStateがCANCELLEDのときだけ在庫戻し
		if newState == model.OrderStateCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		// ステータス更新
		beforeState := string(info.State)
		if err := r.OrderInfos().UpdateState(ctx, orderID, newState); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"state":"` + beforeState + `"}`
		afterJSON := `{"state":"` + string(newState) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		pending = &notification.OrderStatusEvent{
			OrderID:    orderID,
			UserID:     o.UserID,
			Kind:       statusNotificationKind(newState),
			OrderTotal: o.Total,
		}
		return nil
	})

	if err != nil {
		return OrderStateOutput{}, err
	}

	// 通知の失敗は遷移を巻き戻さない。ログだけ
	if pending != nil {
		if err := u.sink.OrderStatus(ctx, *pending); err != nil {
			u.log.WithFields(logrus.Fields{
				"order_id": pending.OrderID,
				"kind":     string(pending.Kind),
				"error":    err.Error(),
			}).Warn("order notification failed")
		}
	}

	return OrderStateOutput{OrderID: orderID, State: string(newState)}, nil
}
