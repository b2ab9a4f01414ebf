package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys the dispatcher stores the resolved route under
const (
	HandlerKey = "route_handler"
	MethodKey  = "route_method"
)

// AccessLogConfig defines the config for AccessLog middleware
type AccessLogConfig struct {
	Logger *zap.Logger

	// SkipPaths are path prefixes that are not logged
	SkipPaths []string
}

// AccessLog returns a middleware logging one entry per request
func AccessLog(logger *zap.Logger) echo.MiddlewareFunc {
	return AccessLogWithConfig(AccessLogConfig{Logger: logger})
}

// AccessLogWithConfig returns an AccessLog middleware with config
func AccessLogWithConfig(config AccessLogConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, skip := range config.SkipPaths {
				if strings.HasPrefix(path, skip) {
					return next(c)
				}
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the response so the status is known
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes_out", c.Response().Size),
				zap.String("request_id", GetRequestID(c)),
				zap.String("remote_ip", c.RealIP()),
			}
			if h, ok := c.Get(HandlerKey).(string); ok {
				fields = append(fields, zap.String("handler", h), zap.Any("handler_method", c.Get(MethodKey)))
			}

			switch status := c.Response().Status; {
			case err != nil || status >= 500:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				config.Logger.Error("Request failed", fields...)
			case status >= 400:
				config.Logger.Warn("Request completed with error status", fields...)
			default:
				config.Logger.Info("Request completed", fields...)
			}
			return nil
		}
	}
}
