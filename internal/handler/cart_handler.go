package handler

import (
	"net/http"

	"printshop/internal/logger"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cart/quoteのHTTP
type CartHandler struct {
	uc  *usecase.CartUsecase
	log *logger.Logger
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, log *logger.Logger) *CartHandler {
	return &CartHandler{uc: uc, log: log}
}

type QuoteCartRequest struct {
	Items []usecase.OrderItemInput `json:"items"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/cart/quote", h.quote)
}

func (h *CartHandler) quote(c echo.Context) error {
	var req QuoteCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Quote(c.Request().Context(), req.Items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
