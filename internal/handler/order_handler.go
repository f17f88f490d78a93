package handler

import (
	"net/http"
	"strconv"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// contextからuser_idを取り出す（AuthJWTが入れたもの）
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

type OrderHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	orderUC    *usecase.OrderUsecase
}

func NewOrderHandler(checkoutUC *usecase.CheckoutUsecase, orderUC *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{checkoutUC: checkoutUC, orderUC: orderUC}
}

type CheckoutItemRequest struct {
	ProductID int64 `json:"product_ref"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

type CheckoutRequest struct {
	CustomerName    string                `json:"customer_name"`
	PhoneNumber     string                `json:"phone_number"`
	Email           string                `json:"email"`
	ShippingAddress string                `json:"shipping_address"`
	OrderNote       string                `json:"order_note"`
	PaymentMethodID int64                 `json:"payment_method_id"`
	Items           []CheckoutItemRequest `json:"items"`
	VoucherCode     string                `json:"voucher_code"`
}

type ValidateVoucherRequest struct {
	Items       []CheckoutItemRequest `json:"items"`
	VoucherCode string                `json:"voucher_code"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//支払い方法一覧は公開（チェックアウト画面の選択肢）
	e.GET("/payment-methods", h.listPaymentMethods)

	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/checkout", h.checkout)
	g.POST("/validate-voucher", h.validateVoucher)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func toItemInputs(items []CheckoutItemRequest) []usecase.CheckoutItemInput {
	ins := make([]usecase.CheckoutItemInput, 0, len(items))
	for _, it := range items {
		ins = append(ins, usecase.CheckoutItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return ins
}

func (h *OrderHandler) listPaymentMethods(c echo.Context) error {
	methods, err := h.checkoutUC.ListPaymentMethods(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, methods)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.checkoutUC.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		CustomerName:    req.CustomerName,
		PhoneNumber:     req.PhoneNumber,
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
		OrderNote:       req.OrderNote,
		PaymentMethodID: req.PaymentMethodID,
		Items:           toItemInputs(req.Items),
		VoucherCode:     req.VoucherCode,
		IdempotencyKey:  idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	//再送なら201ではなく200
	if out.Replayed {
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) validateVoucher(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ValidateVoucherRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkoutUC.ValidateVoucher(c.Request().Context(), userID, usecase.ValidateVoucherInput{
		Items:       toItemInputs(req.Items),
		VoucherCode: req.VoucherCode,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orderUC.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.orderUC.GetMyOrderDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
