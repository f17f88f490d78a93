package server

import (
	"shop/internal/config"
	"shop/internal/handler"

	"github.com/labstack/echo/v4"
)

// 起動に必要なhandler一式
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Order        *handler.OrderHandler
	Ranking      *handler.RankingHandler
	Notification *handler.NotificationHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminVoucher *handler.AdminVoucherHandler
	AdminAudit   *handler.AdminAuditHandler
}

func Start(cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cfg, h)

	return e.Start(":" + cfg.Port)
}
