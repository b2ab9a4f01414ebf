package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Middleware records every request served through it with collector
func Middleware(collector Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = 500
				}
			}
			collector.RecordHTTPRequest(c.Request().Method, status, time.Since(start))
			return err
		}
	}
}
