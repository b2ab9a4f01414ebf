// Package assert holds HTTP assertions shared by the server tests
package assert

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/convroute/pkg/errors"
)

// JSONResponse asserts that the response has status and a JSON body equal to
// expected once marshalled
func JSONResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, expected any) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	want, err := json.Marshal(expected)
	require.NoError(t, err)
	require.JSONEq(t, string(want), rec.Body.String())
}

// ErrorCode asserts that the response is the error body of code, sent with
// the status the code maps to, and returns it
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code errors.ErrorCode) errors.ErrorResponse {
	t.Helper()

	require.Equal(t, errors.GetHTTPStatus(code), rec.Code, rec.Body.String())

	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, code.Int(), body.ErrorDetail.Code, body.ErrorDetail.Message)
	return body
}
