package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/yshengliao/convroute/middleware"
	"github.com/yshengliao/convroute/observability/metrics"
	apperrors "github.com/yshengliao/convroute/pkg/errors"
	"github.com/yshengliao/convroute/resolver"
)

// Dispatcher serves every request with the handler method its path resolves
// to. A fresh resolver runs per request; loaded handlers are shared through
// the source.
type Dispatcher struct {
	config    resolver.Config
	source    resolver.Source
	logger    *zap.Logger
	collector metrics.Collector
}

// NewDispatcher creates a dispatcher. A nil logger or collector disables
// logging or metrics.
func NewDispatcher(cfg resolver.Config, src resolver.Source, logger *zap.Logger, collector metrics.Collector) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Dispatcher{
		config:    cfg,
		source:    src,
		logger:    logger,
		collector: collector,
	}
}

// Handle is the echo handler. The query string takes no part in resolution.
func (d *Dispatcher) Handle(c echo.Context) error {
	r := resolver.New(d.config, d.source, c.Request().URL.EscapedPath(), resolver.WithLogger(d.logger))

	if target, ok := r.Redirect(); ok {
		d.collector.RecordResolution("redirect")
		return c.Redirect(http.StatusFound, target)
	}

	if !r.Resolved() {
		code, message := apperrors.CodeInternalServerError, ""
		var rerr *resolver.Error
		if errors.As(r.Err(), &rerr) {
			code, message = rerr.Code, rerr.Message
		}
		if apperrors.GetHTTPStatus(code) >= http.StatusInternalServerError {
			d.logger.Error("route resolution failed", zap.String("uri", r.URI()), zap.Error(r.Err()))
			message = ""
		}
		d.collector.RecordResolution(code.Label())

		resp := apperrors.NewFromCode(code)
		if message != "" {
			resp = apperrors.New(code, message)
		}
		return middleware.SendError(c, resp.WithDetail("uri", r.URI()))
	}
	d.collector.RecordResolution("resolved")

	handler, method := r.HandlerName(), r.MethodName()
	c.Set(middleware.HandlerKey, handler)
	c.Set(middleware.MethodKey, method)

	invoke := r.Method().Invoke
	if invoke == nil {
		resp := apperrors.New(apperrors.CodeNotImplemented,
			fmt.Sprintf("%s.%s has no bound implementation", handler, method))
		return middleware.SendError(c, resp.WithMeta(map[string]any{"handler": handler, "method": method}))
	}

	start := time.Now()
	out, err := invoke(c.Request().Context(), r.Arguments())
	if err != nil {
		err = d.fail(c, handler, method, err)
	} else {
		err = render(c, out)
	}
	d.collector.RecordDispatch(handler, method, c.Response().Status, time.Since(start))
	return err
}

// fail writes the error returned by a handler method. Handlers choose the
// response with *echo.HTTPError or *errors.ErrorResponse; anything else is
// an internal error whose detail stays in the log.
func (d *Dispatcher) fail(c echo.Context, handler, method string, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		c.Error(httpErr)
		return nil
	}

	var resp *apperrors.ErrorResponse
	if errors.As(err, &resp) {
		return middleware.SendError(c, resp)
	}

	d.logger.Error("handler method failed",
		zap.String("handler", handler),
		zap.String("method", method),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err))
	return middleware.SendError(c, apperrors.NewFromCode(apperrors.CodeInternalServerError))
}

func render(c echo.Context, out any) error {
	if isNil(out) {
		return c.NoContent(http.StatusNoContent)
	}
	switch v := out.(type) {
	case string:
		return c.String(http.StatusOK, v)
	case []byte:
		return c.Blob(http.StatusOK, echo.MIMEOctetStream, v)
	default:
		return c.JSON(http.StatusOK, v)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
