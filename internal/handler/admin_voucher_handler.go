package handler

import (
	"net/http"
	"strconv"
	"time"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type VoucherCreateRequest struct {
	Code              string `json:"code"`
	DiscountType      string `json:"discount_type"`
	DiscountValue     int64  `json:"discount_value"`
	MaxDiscountAmount int64  `json:"max_discount_amount"`
	MinOrderValue     int64  `json:"min_order_value"`
	StartsAt          string `json:"starts_at"`
	EndsAt            string `json:"ends_at"`
	MaxUses           int64  `json:"max_uses"`
	RankingTierID     *int64 `json:"ranking_tier_id"`
}

// クーポン管理
type AdminVoucherHandler struct {
	uc *usecase.AdminVoucherUsecase
}

// DI
func NewAdminVoucherHandler(uc *usecase.AdminVoucherUsecase) *AdminVoucherHandler {
	return &AdminVoucherHandler{uc: uc}
}

func (h *AdminVoucherHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/vouchers")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.create)
	admin.GET("", h.list)
	admin.DELETE("/:id", h.deactivate)
	admin.GET("/:id/usages", h.listUsages)
}

func (h *AdminVoucherHandler) create(c echo.Context) error {
	var req VoucherCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid starts_at"})
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid ends_at"})
	}

	out, err := h.uc.Create(c.Request().Context(), usecase.VoucherCreateInput{
		Code:              req.Code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinOrderValue:     req.MinOrderValue,
		StartsAt:          startsAt,
		EndsAt:            endsAt,
		MaxUses:           req.MaxUses,
		RankingTierID:     req.RankingTierID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminVoucherHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = n
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminVoucherHandler) deactivate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Deactivate(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deactivated"})
}

func (h *AdminVoucherHandler) listUsages(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	usages, err := h.uc.ListUsages(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, usages)
}
