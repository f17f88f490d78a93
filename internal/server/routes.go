package server

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/metrics"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Order.RegisterRoutes(e, cfg)
	h.Ranking.RegisterRoutes(e, cfg)
	h.Notification.RegisterRoutes(e, cfg)
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminVoucher.RegisterRoutes(e, cfg)
	h.AdminAudit.RegisterRoutes(e, cfg)
}
