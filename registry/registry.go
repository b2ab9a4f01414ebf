// Package registry discovers the handlers of a handler tree and keeps them
// loaded.
//
// A handler tree is a directory whose files are named after the handler type
// they define, for example:
//
//	handlers/
//	├── IndexController.go
//	├── WidgetsController.go
//	└── admin/
//	    └── IndexController.go
//
// With the "go" extension each file is parsed (it is never compiled) to check
// that it declares the type, and the routable methods of the type are read from
// the package source. Binding a Go value to a file makes its methods invokable;
// bound values are described through reflection. With any other extension only
// bound values can define handlers.
//
// Each handler file is loaded at most once until it is invalidated.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrTypeNotDefined is returned when a handler file exists but does not
	// define the expected type
	ErrTypeNotDefined = errors.New("file does not define the expected type")

	// ErrNotFound is returned when a handler file does not exist
	ErrNotFound = fs.ErrNotExist
)

// Registry loads handlers from a handler tree. It is safe for concurrent use.
type Registry struct {
	fsys   fs.FS
	ext    string
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[string]*Handler
	bindings map[string]*boundHandler
}

// Option configures a Registry
type Option func(*Registry)

// WithExtension sets the handler file extension, without the dot. Defaults to "go".
func WithExtension(ext string) Option {
	return func(r *Registry) {
		r.ext = strings.TrimPrefix(ext, ".")
	}
}

// WithLogger sets the logger used to report loads and invalidations
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a registry over the handler tree fsys
func New(fsys fs.FS, opts ...Option) *Registry {
	r := &Registry{
		fsys:     fsys,
		ext:      "go",
		logger:   zap.NewNop(),
		handlers: make(map[string]*Handler),
		bindings: make(map[string]*boundHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extension returns the handler file extension, without the dot
func (r *Registry) Extension() string {
	return r.ext
}

// Bind makes v the implementation of the handler defined by file, given
// relative to the handler root with or without the extension
// ("admin/IndexController"). The type of v must carry the handler type name.
func (r *Registry) Bind(file string, v any) error {
	bh, err := bind(v)
	if err != nil {
		return err
	}
	stem := r.stem(file)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[stem] = bh
	// A handler loaded before the binding lacks invokers
	delete(r.handlers, stem+"."+r.ext)
	return nil
}

// MustBind is like Bind but panics on error
func (r *Registry) MustBind(file string, v any) {
	if err := r.Bind(file, v); err != nil {
		panic(fmt.Sprintf("registry: bind %s: %v", file, err))
	}
}

// IsDir reports whether dir is a directory of the handler tree
func (r *Registry) IsDir(dir string) bool {
	info, err := fs.Stat(r.fsys, dir)
	return err == nil && info.IsDir()
}

// Exists reports whether file is a regular file of the handler tree
func (r *Registry) Exists(file string) bool {
	info, err := fs.Stat(r.fsys, file)
	return err == nil && !info.IsDir()
}

// Load returns the handler typeName defined by file. Loading a file that is
// already loaded returns the cached handler.
func (r *Registry) Load(file, typeName string) (*Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[file]
	r.mu.RUnlock()
	if ok {
		return checkName(h, file, typeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if h, ok := r.handlers[file]; ok {
		return checkName(h, file, typeName)
	}

	h, err := r.load(file, typeName)
	if err != nil {
		return nil, err
	}
	r.handlers[file] = h

	r.logger.Debug("handler loaded",
		zap.String("file", file),
		zap.String("type", typeName),
		zap.Bool("bound", h.Bound),
		zap.Int("methods", len(h.methods)))
	return h, nil
}

func checkName(h *Handler, file, typeName string) (*Handler, error) {
	if h.Name != typeName {
		return nil, fmt.Errorf("%s: %w %s", file, ErrTypeNotDefined, typeName)
	}
	return h, nil
}

func (r *Registry) load(file, typeName string) (*Handler, error) {
	if !r.Exists(file) {
		return nil, fmt.Errorf("%s: %w", file, ErrNotFound)
	}

	bound := r.bindings[r.stem(file)]
	if bound != nil && bound.name != typeName {
		bound = nil
	}

	h := &Handler{Name: typeName, File: file}

	if r.ext == "go" {
		sf, err := parseSource(r.fsys, file)
		if err != nil {
			return nil, err
		}
		if !sf.types[typeName] {
			return nil, fmt.Errorf("%s: %w %s", file, ErrTypeNotDefined, typeName)
		}
		if bound == nil {
			if h.methods, err = sourceMethods(r.fsys, sf, file, typeName); err != nil {
				return nil, err
			}
			return h, nil
		}
	} else if bound == nil {
		return nil, fmt.Errorf("%s: %w %s", file, ErrTypeNotDefined, typeName)
	}

	h.Bound = true
	h.methods = bound.methods
	return h, nil
}

// Invalidate drops the loaded handlers of the directory containing file, so
// the next Load reads them again. Methods of a Go handler may be declared in
// any file of its directory.
func (r *Registry) Invalidate(file string) {
	dir := path.Dir(file)

	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.handlers {
		if path.Dir(key) == dir {
			delete(r.handlers, key)
			r.logger.Debug("handler invalidated", zap.String("file", key))
		}
	}
}

// Purge drops every loaded handler
func (r *Registry) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string]*Handler)
}

// Loaded returns the loaded handlers sorted by file
func (r *Registry) Loaded() []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make([]*Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	sort.Slice(handlers, func(i, j int) bool { return handlers[i].File < handlers[j].File })
	return handlers
}

func (r *Registry) stem(file string) string {
	return strings.TrimSuffix(path.Clean(file), "."+r.ext)
}
