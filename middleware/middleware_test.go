package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/yshengliao/convroute/internal/testutil/mock"
	apperrors "github.com/yshengliao/convroute/pkg/errors"
)

func TestAccessLog(t *testing.T) {
	logger := mock.NewLogger()
	e := echo.New()
	e.Use(RequestID(), AccessLogWithConfig(AccessLogConfig{Logger: logger.Logger, SkipPaths: []string{"/metrics"}}))

	e.GET("/ok", func(c echo.Context) error {
		c.Set(HandlerKey, "WidgetsController")
		c.Set(MethodKey, "ActionShow")
		return c.String(http.StatusOK, "fine")
	})
	e.GET("/missing", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("boom")
	})
	e.GET("/metrics", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/ok", "/missing", "/fail", "/metrics"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logger.Entries()
	require.Len(t, entries, 3)

	ok := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", ok["path"])
	assert.Equal(t, int64(http.StatusOK), ok["status"])
	assert.Equal(t, "WidgetsController", ok["handler"])
	assert.Equal(t, "ActionShow", ok["handler_method"])
	assert.NotEmpty(t, ok["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[2].ContextMap()["status"])
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestRecovery(t *testing.T) {
	logger := mock.NewLogger()
	e := echo.New()
	e.Use(RequestID(), Recovery(logger.Logger))
	e.GET("/panic", func(c echo.Context) error {
		panic("handler exploded")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id"`)
	assert.True(t, logger.HasEntry(zapcore.ErrorLevel, "Panic recovered"))

	entry := logger.Entries()[0].ContextMap()
	assert.Equal(t, "handler exploded", entry["error"])
	assert.Equal(t, "/panic", entry["path"])
}

func TestSendError(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/limited", func(c echo.Context) error {
		return SendError(c, apperrors.NewFromCode(apperrors.CodeRateLimitExceeded))
	})
	e.GET("/own-id", func(c echo.Context) error {
		return SendError(c, apperrors.New(apperrors.CodeMethodNotFound, "gone").WithRequestID("fixed"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeRateLimitExceeded, body.Code())
	assert.Equal(t, apperrors.CodeRateLimitExceeded.Message(), body.ErrorDetail.Message)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), body.RequestID)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/own-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body = apperrors.ErrorResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fixed", body.RequestID)
}
