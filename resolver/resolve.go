package resolver

import (
	stderrors "errors"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/yshengliao/convroute/config"
	"github.com/yshengliao/convroute/pkg/errors"
	"github.com/yshengliao/convroute/pkg/naming"
	"github.com/yshengliao/convroute/registry"
)

var slashes = regexp.MustCompile(`/+`)

// conventions are the naming settings of one resolution
type conventions struct {
	classDefault, classPrefix, classSuffix          string
	functionDefault, functionPrefix, functionSuffix string
	ext                                             string
}

func readConventions(cfg Config) conventions {
	str := func(key, def string) string {
		s, _ := cfg.Get(key, def).(string)
		return s
	}
	return conventions{
		classDefault:    str(config.KeyClassDefault, "index"),
		classPrefix:     str(config.KeyClassPrefix, ""),
		classSuffix:     str(config.KeyClassSuffix, ""),
		functionDefault: str(config.KeyFunctionDefault, "index"),
		functionPrefix:  str(config.KeyFunctionPrefix, ""),
		functionSuffix:  str(config.KeyFunctionSuffix, ""),
		ext:             strings.TrimPrefix(str(config.KeyExtension, "go"), "."),
	}
}

func (c conventions) handlerFor(segment string) string {
	return naming.HandlerName(segment, c.classPrefix, c.classSuffix)
}

func (c conventions) methodFor(segment string) string {
	return naming.MethodName(segment, c.functionPrefix, c.functionSuffix)
}

// walk is the state of the segment walk
type walk struct {
	conventions
	src Source

	defaultName string
	dir         string

	handlerName string
	handler     *registry.Handler
	methodName  string
	method      *registry.Method
	args        []string
}

// resolve runs the convention walk over uri
func resolve(uri string, cfg Config, src Source) (Result, error) {
	if strings.Contains(uri, "..") {
		return Result{}, newError(errors.CodeInvalidURI, "Invalid URI %s", uri)
	}
	segments := strings.Split(strings.TrimLeft(slashes.ReplaceAllString(uri, "/"), "/"), "/")

	w := &walk{conventions: readConventions(cfg), src: src, dir: "."}
	w.defaultName = w.handlerFor(w.classDefault)
	w.handlerName = w.defaultName
	w.args = []string{}

	for _, segment := range segments {
		if w.method != nil {
			w.args = append(w.args, segment)
			continue
		}
		if w.handlerName == w.defaultName {
			if dir := path.Join(w.dir, segment); w.src.IsDir(dir) {
				w.dir = dir
				continue
			}
			candidate := w.handlerFor(segment)
			if file := w.file(candidate); w.src.Exists(file) {
				if err := w.load(file, candidate); err != nil {
					return Result{}, err
				}
				continue
			}
			// Nothing matched: the segment is tried as a method of the
			// default handler
			if err := w.loadDefault(); err != nil {
				return Result{}, err
			}
		}

		name := w.methodFor(segment)
		if m, ok := w.handler.Method(name); ok {
			w.methodName, w.method = name, m
			continue
		}
		if w.handlerName != w.defaultName {
			if err := w.useDefaultMethod(); err != nil {
				return Result{}, err
			}
			w.args = append(w.args, segment)
		}
	}

	if w.method == nil {
		if w.handlerName == w.defaultName {
			if err := w.loadDefault(); err != nil {
				return Result{}, err
			}
		}
		if err := w.useDefaultMethod(); err != nil {
			return Result{}, err
		}
		if w.handlerName == w.defaultName && segments[0] != "" {
			w.args = append([]string(nil), segments...)
		}
	}

	if n := len(w.args); n < w.method.MinArgs {
		return Result{}, newError(errors.CodeTooFewArguments,
			"%s.%s requires at least %d arguments", w.handlerName, w.methodName, w.method.MinArgs)
	} else if !w.method.Variadic() && n > w.method.MaxArgs {
		return Result{}, newError(errors.CodeTooManyArguments,
			"%s.%s only accepts up to %d arguments", w.handlerName, w.methodName, w.method.MaxArgs)
	}

	for i, arg := range w.args {
		w.args[i] = unescape(arg)
	}

	return Result{
		HandlerName: w.handlerName,
		MethodName:  w.methodName,
		Arguments:   w.args,
		Handler:     w.handler,
		Method:      w.method,
	}, nil
}

func (w *walk) file(typeName string) string {
	return path.Join(w.dir, typeName+"."+w.ext)
}

func (w *walk) load(file, typeName string) error {
	h, err := w.src.Load(file, typeName)
	switch {
	case err == nil:
		w.handlerName, w.handler = typeName, h
		return nil
	case stderrors.Is(err, registry.ErrTypeNotDefined):
		return &Error{
			Code:    errors.CodeTypeNotDefined,
			Message: file + " doesn't contain a " + typeName + " type",
			Err:     err,
		}
	case stderrors.Is(err, registry.ErrNotFound):
		return &Error{
			Code:    errors.CodeHandlerNotFound,
			Message: "Handler file " + file + " cannot be found",
			Err:     err,
		}
	case stderrors.As(err, new(*fs.PathError)):
		return &Error{
			Code:    errors.CodeFileSystemError,
			Message: "Handler file " + file + " cannot be read",
			Err:     err,
		}
	default:
		return &Error{
			Code:    errors.CodeInternalServerError,
			Message: "Handler file " + file + " cannot be loaded",
			Err:     err,
		}
	}
}

func (w *walk) loadDefault() error {
	file := w.file(w.defaultName)
	if !w.src.Exists(file) {
		return newError(errors.CodeHandlerNotFound, "Default handler %s cannot be found in %s", w.defaultName, w.dir)
	}
	return w.load(file, w.defaultName)
}

func (w *walk) useDefaultMethod() error {
	name := w.methodFor(w.functionDefault)
	m, ok := w.handler.Method(name)
	if !ok {
		return newError(errors.CodeMethodNotFound, "%s doesn't have a %s method", w.handlerName, name)
	}
	w.methodName, w.method = name, m
	return nil
}

// unescape decodes "+" to a space and every well formed %XX escape of s.
// Malformed escapes are kept as they are, the rest of s is still decoded.
func unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
