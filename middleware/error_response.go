package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/yshengliao/convroute/pkg/errors"
)

// SendError writes resp with the HTTP status mapped from its code. The
// request id is filled in unless resp already carries one.
func SendError(c echo.Context, resp *errors.ErrorResponse) error {
	if resp.RequestID == "" {
		resp.WithRequestID(GetRequestID(c))
	}
	return resp.Send(c, errors.GetHTTPStatus(resp.Code()))
}
