package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/yshengliao/convroute/pkg/errors"
)

// Recovery returns a middleware that turns a panicking handler into a 500
// response and logs the panic with its stack
func Recovery(logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}

				stack := make([]byte, 4<<10)
				stack = stack[:runtime.Stack(stack, false)]
				logger.Error("Panic recovered",
					zap.Error(perr),
					zap.String("path", c.Request().URL.Path),
					zap.String("request_id", GetRequestID(c)),
					zap.ByteString("stack", stack))

				err = SendError(c, errors.NewFromCode(errors.CodeInternalServerError))
			}()

			return next(c)
		}
	}
}
