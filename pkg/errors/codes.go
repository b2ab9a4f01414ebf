// Package errors provides the error codes used to report route resolution
// failures and the JSON error body the dispatcher renders for them.
package errors

import "net/http"

// ErrorCode represents a standardized error code
type ErrorCode int

// Error code categories:
// 1xxx - Request errors
// 2xxx - Resolution errors
// 3xxx - System errors
const (
	// Request errors (1xxx)
	CodeInvalidURI        ErrorCode = 1000
	CodeTooFewArguments   ErrorCode = 1001
	CodeTooManyArguments  ErrorCode = 1002
	CodeRateLimitExceeded ErrorCode = 1003

	// Resolution errors (2xxx)
	CodeHandlerNotFound ErrorCode = 2000
	CodeTypeNotDefined  ErrorCode = 2001
	CodeMethodNotFound  ErrorCode = 2002

	// System errors (3xxx)
	CodeInternalServerError ErrorCode = 3000
	CodeNotImplemented      ErrorCode = 3001
	CodeConfigurationError  ErrorCode = 3002
	CodeFileSystemError     ErrorCode = 3003
)

// errorMessages maps error codes to default messages
var errorMessages = map[ErrorCode]string{
	CodeInvalidURI:        "Invalid URI",
	CodeTooFewArguments:   "Too few arguments",
	CodeTooManyArguments:  "Too many arguments",
	CodeRateLimitExceeded: "Rate limit exceeded",

	CodeHandlerNotFound: "Handler not found",
	CodeTypeNotDefined:  "Handler file does not define the expected type",
	CodeMethodNotFound:  "Handler method not found",

	CodeInternalServerError: "Internal server error",
	CodeNotImplemented:      "Handler method is not bound",
	CodeConfigurationError:  "Configuration error",
	CodeFileSystemError:     "File system error",
}

// errorLabels are the short names used as metric label values
var errorLabels = map[ErrorCode]string{
	CodeInvalidURI:          "invalid_uri",
	CodeTooFewArguments:     "too_few_arguments",
	CodeTooManyArguments:    "too_many_arguments",
	CodeRateLimitExceeded:   "rate_limited",
	CodeHandlerNotFound:     "handler_not_found",
	CodeTypeNotDefined:      "type_not_defined",
	CodeMethodNotFound:      "method_not_found",
	CodeInternalServerError: "internal",
	CodeNotImplemented:      "not_implemented",
	CodeConfigurationError:  "configuration",
	CodeFileSystemError:     "file_system",
}

// Label returns the short snake_case name of the code
func (e ErrorCode) Label() string {
	if label, ok := errorLabels[e]; ok {
		return label
	}
	return "unknown"
}

// Message returns the default message for an error code
func (e ErrorCode) Message() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return "Unknown error"
}

// Int returns the error code as an integer
func (e ErrorCode) Int() int {
	return int(e)
}

// String returns the error code as a string
func (e ErrorCode) String() string {
	return e.Message()
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeInvalidURI:
		return http.StatusBadRequest

	// A URI that names no handler, no method or the wrong number of arguments
	// does not address anything.
	case CodeHandlerNotFound, CodeMethodNotFound, CodeTooFewArguments, CodeTooManyArguments:
		return http.StatusNotFound

	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests

	case CodeNotImplemented:
		return http.StatusNotImplemented

	case CodeTypeNotDefined, CodeInternalServerError, CodeConfigurationError, CodeFileSystemError:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
