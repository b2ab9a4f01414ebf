package registry

import (
	"context"
	"sort"
)

// Unlimited is the MaxArgs of a variadic method
const Unlimited = -1

// InvokeFunc calls a handler method with positional arguments
type InvokeFunc func(ctx context.Context, args []string) (any, error)

// Method describes one routable method of a handler
type Method struct {
	Name string
	// MinArgs is the number of required arguments
	MinArgs int
	// MaxArgs is the total number of accepted arguments, or Unlimited
	MaxArgs int
	// Invoke is nil for handlers discovered from source without a bound value
	Invoke InvokeFunc
}

// Variadic reports whether the method accepts any number of trailing arguments
func (m *Method) Variadic() bool {
	return m.MaxArgs == Unlimited
}

// Accepts reports whether n arguments satisfy the method arity
func (m *Method) Accepts(n int) bool {
	return n >= m.MinArgs && (m.Variadic() || n <= m.MaxArgs)
}

// Handler describes a handler type found in the handler tree
type Handler struct {
	// Name is the type name
	Name string
	// File is the slash separated path of the defining file, relative to the
	// handler root
	File string
	// Bound reports whether a Go value was bound to the handler, which makes
	// its methods invokable
	Bound bool

	methods map[string]*Method
}

// Method returns the method called name
func (h *Handler) Method(name string) (*Method, bool) {
	m, ok := h.methods[name]
	return m, ok
}

// Methods returns the routable methods sorted by name
func (h *Handler) Methods() []*Method {
	methods := make([]*Method, 0, len(h.methods))
	for _, m := range h.methods {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return methods
}
