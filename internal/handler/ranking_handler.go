package handler

import (
	"net/http"
	"strconv"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 会員ランク関連
type RankingHandler struct {
	uc *usecase.RankingUsecase
}

// DI
func NewRankingHandler(uc *usecase.RankingUsecase) *RankingHandler {
	return &RankingHandler{uc: uc}
}

func (h *RankingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//ティア一覧は公開
	e.GET("/rankings/tiers", h.listTiers)

	me := e.Group("/rankings")
	me.Use(middleware.AuthJWT(cfg))
	me.GET("/me", h.myRanking)

	admin := e.Group("/admin/rankings")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())
	admin.POST("/:user_id/recompute", h.recompute)
}

func (h *RankingHandler) listTiers(c echo.Context) error {
	tiers, err := h.uc.ListTiers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tiers)
}

func (h *RankingHandler) myRanking(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.MyRanking(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RankingHandler) recompute(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	out, err := h.uc.Recompute(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
