package handler

import (
	"net/http"
	"strconv"
	"strings"

	"printshop/internal/logger"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc  *usecase.OrderUsecase
	log *logger.Logger
}

func NewOrderHandler(uc *usecase.OrderUsecase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, log: log}
}

type OrderCreateRequest struct {
	Items       []usecase.OrderItemInput `json:"items"`
	TotalAmount *int64                   `json:"totalAmount"`
	// ヘッダX-Idempotency-Keyでもよい
	IdempotencyKey string `json:"idempotencyKey"`
}

// authは認証済みグループ（AuthJWT + UserGuard）
func (h *OrderHandler) RegisterRoutes(auth *echo.Group) {
	auth.POST("/orders", h.create)
	auth.GET("/orders", h.list)
	auth.GET("/orders/:id", h.detail)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	idemKey := strings.TrimSpace(req.IdempotencyKey)
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.Request().Header.Get("X-Idempotency-Key"))
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:          req.Items,
		TotalAmount:    req.TotalAmount,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
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

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
