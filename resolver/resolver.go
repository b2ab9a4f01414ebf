// Package resolver maps a request URI to a handler, a method and positional
// arguments by convention, without a route table.
//
// Segments of the URI first select a directory of the handler tree, then a
// handler file named after the segment, then a method of that handler named
// after the next segment. Remaining segments become arguments. With the
// default conventions:
//
//	/                       IndexController.ActionIndex()
//	/widgets                WidgetsController.ActionIndex()
//	/widgets/show/42        WidgetsController.ActionShow("42")
//	/widgets/42             WidgetsController.ActionIndex("42")
//	/admin/users/list       admin/UsersController.ActionList()
//
// A redirect table is consulted before any of this.
package resolver

import (
	"github.com/yshengliao/convroute/config"
	"github.com/yshengliao/convroute/registry"
	"go.uber.org/zap"
)

// Config is the configuration read contract. See config.RouteConfig for the
// keys.
type Config interface {
	Get(key string, def ...any) any
}

// Source probes the handler tree and loads handlers from it. Paths are slash
// separated and relative to the handler root; the root itself is ".".
type Source interface {
	IsDir(dir string) bool
	Exists(file string) bool
	Load(file, typeName string) (*registry.Handler, error)
}

// Result is the outcome of resolving a URI. Either Redirect is set, or the
// handler, method and arguments are all set, or none of them is.
type Result struct {
	URI         string
	Redirect    string
	HandlerName string
	MethodName  string
	Arguments   []string

	Handler *registry.Handler
	Method  *registry.Method
}

// Resolved reports whether the result names a handler method
func (r Result) Resolved() bool {
	return r.Method != nil
}

// Resolver resolves one URI. Resolution runs once, in New; a new URI needs a
// new Resolver.
type Resolver struct {
	uri    string
	config Config
	logger *zap.Logger

	redirect        string
	redirectChecked bool

	result Result
	err    error
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger resolution failures are reported to
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New resolves uri. A failed resolution does not return an error: the handler,
// method and arguments stay unset and Err reports why.
func New(cfg Config, src Source, uri string, opts ...Option) *Resolver {
	r := &Resolver{
		uri:    uri,
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if _, ok := r.Redirect(); ok {
		return r
	}

	result, err := resolve(uri, cfg, src)
	if err != nil {
		r.err = err
		r.logger.Debug("route not resolved", zap.String("uri", uri), zap.Error(err))
		return r
	}
	r.result = result
	return r
}

// Redirect returns the destination of the first redirect pattern matching
// the URI. The table is consulted once per Resolver.
func (r *Resolver) Redirect() (string, bool) {
	if !r.redirectChecked {
		r.redirectChecked = true
		if table, ok := r.config.Get(config.KeyRedirects).(config.Redirects); ok {
			r.redirect, _ = table.Lookup(r.uri)
		}
	}
	return r.redirect, r.redirect != ""
}

// URI returns the URI being resolved
func (r *Resolver) URI() string {
	return r.uri
}

// HandlerName returns the resolved handler type name, or ""
func (r *Resolver) HandlerName() string {
	return r.result.HandlerName
}

// MethodName returns the resolved method name, or ""
func (r *Resolver) MethodName() string {
	return r.result.MethodName
}

// Arguments returns the URL-decoded arguments in call order
func (r *Resolver) Arguments() []string {
	return r.result.Arguments
}

// Handler returns the resolved handler, or nil
func (r *Resolver) Handler() *registry.Handler {
	return r.result.Handler
}

// Method returns the resolved method, or nil
func (r *Resolver) Method() *registry.Method {
	return r.result.Method
}

// Resolved reports whether a handler method was resolved
func (r *Resolver) Resolved() bool {
	return r.result.Resolved()
}

// Err returns why resolution failed. It is nil after a redirect or a
// successful resolution.
func (r *Resolver) Err() error {
	return r.err
}

// Result returns the whole resolution record
func (r *Resolver) Result() Result {
	result := r.result
	result.URI = r.uri
	result.Redirect, _ = r.Redirect()
	if result.Arguments != nil {
		result.Arguments = append([]string(nil), result.Arguments...)
	}
	return result
}
