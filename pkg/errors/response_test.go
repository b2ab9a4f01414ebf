package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	err := New(CodeMethodNotFound, "WidgetsController has no method delete")

	assert.False(t, err.Success)
	assert.Equal(t, CodeMethodNotFound.Int(), err.ErrorDetail.Code)
	assert.Equal(t, "WidgetsController has no method delete", err.Error())
	assert.False(t, err.Timestamp.IsZero())
}

func TestNewFromCode(t *testing.T) {
	err := NewFromCode(CodeInvalidURI)

	assert.Equal(t, CodeInvalidURI.Int(), err.ErrorDetail.Code)
	assert.Equal(t, CodeInvalidURI.Message(), err.ErrorDetail.Message)
}

func TestErrorResponseChaining(t *testing.T) {
	err := New(CodeTooManyArguments, "too many").
		WithRequestID("req-123").
		WithMeta(map[string]any{"uri": "/widgets/list/1/2"}).
		WithDetail("max", 1)

	assert.Equal(t, "req-123", err.RequestID)
	assert.Equal(t, "/widgets/list/1/2", err.Meta["uri"])
	assert.Equal(t, 1, err.ErrorDetail.Details["max"])
}

func TestUnknownCode(t *testing.T) {
	assert.Equal(t, "Unknown error", ErrorCode(9999).Message())
	assert.Equal(t, "unknown", ErrorCode(9999).Label())
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(ErrorCode(9999)))
}

func TestLabels(t *testing.T) {
	seen := make(map[string]ErrorCode)
	for code := range errorMessages {
		label := code.Label()
		assert.NotEqual(t, "unknown", label, code.Message())
		if other, dup := seen[label]; dup {
			t.Errorf("codes %d and %d share label %q", code, other, label)
		}
		seen[label] = code
	}
	assert.Equal(t, "handler_not_found", CodeHandlerNotFound.Label())
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidURI, http.StatusBadRequest},
		{CodeHandlerNotFound, http.StatusNotFound},
		{CodeMethodNotFound, http.StatusNotFound},
		{CodeTooFewArguments, http.StatusNotFound},
		{CodeTooManyArguments, http.StatusNotFound},
		{CodeTypeNotDefined, http.StatusInternalServerError},
		{CodeNotImplemented, http.StatusNotImplemented},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestSend(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	resp := New(CodeHandlerNotFound, "no handler").WithRequestID("rid-1")
	require.NoError(t, resp.Send(c, GetHTTPStatus(resp.Code())))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rid-1", body.RequestID)
	assert.Equal(t, CodeHandlerNotFound, body.Code())
	assert.Equal(t, "no handler", body.ErrorDetail.Message)
}
