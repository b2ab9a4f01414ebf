package registry

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	stringType  = reflect.TypeOf("")
)

// boundHandler is a Go value bound to a handler file
type boundHandler struct {
	name    string
	methods map[string]*Method
}

// bind builds the method table of v once. Routable methods take an optional
// leading context.Context followed by string parameters, the last of which may
// be variadic, and return nothing, a value, an error, or a value and an error.
func bind(v any) (*boundHandler, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot bind nil handler")
	}

	value := reflect.ValueOf(v)
	t := value.Type()
	name := t.Name()
	if t.Kind() == reflect.Ptr {
		name = t.Elem().Name()
	}
	if name == "" {
		return nil, fmt.Errorf("cannot bind unnamed type %s", t)
	}

	bh := &boundHandler{
		name:    name,
		methods: make(map[string]*Method),
	}
	for i := 0; i < t.NumMethod(); i++ {
		if m, ok := reflectMethod(value, t.Method(i)); ok {
			bh.methods[m.Name] = m
		}
	}
	return bh, nil
}

func reflectMethod(recv reflect.Value, method reflect.Method) (*Method, bool) {
	ft := method.Type

	// In(0) is the receiver
	first := 1
	withContext := ft.NumIn() > 1 && ft.In(1) == contextType
	if withContext {
		first = 2
	}

	m := &Method{Name: method.Name}
	for i := first; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			if in.Elem() != stringType {
				return nil, false
			}
			m.MaxArgs = Unlimited
			break
		}
		if in != stringType {
			return nil, false
		}
		m.MinArgs++
	}
	if !m.Variadic() {
		m.MaxArgs = m.MinArgs
	}

	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, false
		}
	default:
		return nil, false
	}

	fn := method.Func
	m.Invoke = func(ctx context.Context, args []string) (any, error) {
		if !m.Accepts(len(args)) {
			return nil, fmt.Errorf("%s called with %d arguments", m.Name, len(args))
		}
		if ctx == nil {
			ctx = context.Background()
		}

		in := make([]reflect.Value, 0, len(args)+2)
		in = append(in, recv)
		if withContext {
			in = append(in, reflect.ValueOf(ctx))
		}
		for _, arg := range args {
			in = append(in, reflect.ValueOf(arg))
		}
		return results(fn.Call(in))
	}
	return m, true
}

// results maps the return values of a handler method to (value, error)
func results(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		return out[0].Interface(), asError(out[1])
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
