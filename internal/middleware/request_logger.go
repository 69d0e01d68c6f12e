package middleware

import (
	"printshop/internal/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// echoのリクエストログをzapに流す
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	l := log.With("component", "http")
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			kv := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"remote_ip", v.RemoteIP,
			}
			if v.RequestID != "" {
				kv = append(kv, "request_id", v.RequestID)
			}
			if uid, ok := c.Get(CtxUserIDKey).(int64); ok {
				kv = append(kv, "user_id", uid)
			}
			if role, ok := RoleFromContext(c); ok {
				kv = append(kv, "role", string(role))
			}

			switch {
			case v.Error != nil:
				l.Error("request failed", append(kv, "error", v.Error.Error())...)
			case v.Status >= 500:
				l.Error("request", kv...)
			case v.Status >= 400:
				l.Warn("request", kv...)
			default:
				l.Info("request", kv...)
			}
			return nil
		},
	})
}
