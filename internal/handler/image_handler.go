package handler

import (
	"net/http"

	"printshop/internal/logger"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ImageHandler struct {
	uc  *usecase.ImageUsecase
	log *logger.Logger
}

func NewImageHandler(uc *usecase.ImageUsecase, log *logger.Logger) *ImageHandler {
	return &ImageHandler{uc: uc, log: log}
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

func (h *ImageHandler) RegisterRoutes(auth *echo.Group) {
	auth.POST("/generate-image", h.generate)
}

func (h *ImageHandler) generate(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req generateImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Generate(c.Request().Context(), userID, req.Prompt)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
