package middleware

import (
	"errors"
	"net/http"

	"printshop/internal/logger"
	"printshop/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのsubのユーザーがDBにまだいるか確認。
// いなければ401、DBが落ちているなら500。
func UserGuard(userRepo repository.UserRepository, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrUserNotFound) || (err == nil && user == nil) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if err != nil {
				log.Error("user lookup failed", "user_id", userID, "error", err.Error())
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			return next(c)
		}
	}
}
