package errors

import (
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body written for a failed request
type ErrorResponse struct {
	Success     bool           `json:"success"`
	ErrorDetail ErrorDetail    `json:"error"`
	Timestamp   time.Time      `json:"timestamp"`
	RequestID   string         `json:"request_id,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// ErrorDetail is the code and message of an ErrorResponse. Details carries
// request specific values such as the URI that failed to resolve.
type ErrorDetail struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error returns the message, so handler methods can return an
// *ErrorResponse to choose their error body
func (e *ErrorResponse) Error() string {
	return e.ErrorDetail.Message
}

// New creates an error response with code and message
func New(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		ErrorDetail: ErrorDetail{
			Code:    code.Int(),
			Message: message,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewFromCode creates an error response carrying the default message of code
func NewFromCode(code ErrorCode) *ErrorResponse {
	return New(code, code.Message())
}

// Code returns the error code of the response
func (e *ErrorResponse) Code() ErrorCode {
	return ErrorCode(e.ErrorDetail.Code)
}

// WithRequestID sets the request id
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithMeta replaces the metadata
func (e *ErrorResponse) WithMeta(meta map[string]any) *ErrorResponse {
	e.Meta = meta
	return e
}

// WithDetail adds one entry to the details
func (e *ErrorResponse) WithDetail(key string, value any) *ErrorResponse {
	if e.ErrorDetail.Details == nil {
		e.ErrorDetail.Details = make(map[string]any)
	}
	e.ErrorDetail.Details[key] = value
	return e
}

// Send writes the response as JSON with httpStatus
func (e *ErrorResponse) Send(c echo.Context, httpStatus int) error {
	return c.JSON(httpStatus, e)
}
