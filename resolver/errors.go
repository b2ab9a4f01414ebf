package resolver

import (
	"fmt"

	"github.com/yshengliao/convroute/pkg/errors"
)

// Error is the outcome of a failed resolution
type Error struct {
	Code    errors.ErrorCode
	Message string
	// Err is the underlying cause, if any
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code errors.ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
