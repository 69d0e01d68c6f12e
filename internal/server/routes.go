package server

import (
	"net/http"

	"printshop/internal/config"
	"printshop/internal/handler"
	"printshop/internal/logger"
	"printshop/internal/middleware"
	"printshop/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Orders   *handler.OrderHandler
	Images   *handler.ImageHandler
}

// /api 配下に全部載せる
func RegisterRoutes(e *echo.Echo, cfg config.Config, log *logger.Logger, userRepo repository.UserRepository, h Handlers) {
	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//認証が必要なもの
	authed := api.Group("")
	authed.Use(middleware.AuthJWT(cfg))
	authed.Use(middleware.UserGuard(userRepo, log))

	h.Auth.RegisterRoutes(api, authed)
	h.Products.RegisterRoutes(api)
	h.Cart.RegisterRoutes(api)
	h.Orders.RegisterRoutes(authed)
	h.Images.RegisterRoutes(authed)
}
