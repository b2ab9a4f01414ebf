package config

import (
	"path/filepath"
	"strings"
)

// Keys understood by RouteConfig.Get.
const (
	KeyClassDefault    = "class.default"
	KeyClassPrefix     = "class.prefix"
	KeyClassSuffix     = "class.suffix"
	KeyFunctionDefault = "function.default"
	KeyFunctionPrefix  = "function.prefix"
	KeyFunctionSuffix  = "function.suffix"
	KeyBaseDir         = "base_dir"
	KeyDirectory       = "directory"
	KeyExtension       = "extension"
	KeyRedirects       = "redirects"
)

// Get returns the value stored under key. When the value is unset (empty) or
// the key is unknown, the first default is returned instead, or nil without
// one. Redirects are returned as Redirects, everything else as a string.
func (r *RouteConfig) Get(key string, def ...any) any {
	var value any
	switch key {
	case KeyClassDefault:
		value = r.Class.Default
	case KeyClassPrefix:
		value = r.Class.Prefix
	case KeyClassSuffix:
		value = r.Class.Suffix
	case KeyFunctionDefault:
		value = r.Function.Default
	case KeyFunctionPrefix:
		value = r.Function.Prefix
	case KeyFunctionSuffix:
		value = r.Function.Suffix
	case KeyBaseDir:
		value = r.BaseDir
	case KeyDirectory:
		value = r.Directory
	case KeyExtension:
		value = strings.TrimPrefix(r.Extension, ".")
	case KeyRedirects:
		if len(r.Redirects) > 0 {
			return r.Redirects
		}
	}

	if s, ok := value.(string); ok && s != "" {
		return s
	}
	if len(def) > 0 {
		return def[0]
	}
	if value != nil {
		return value
	}
	return nil
}

// HandlerRoot returns the directory handler files are looked up in
func (r *RouteConfig) HandlerRoot() string {
	return filepath.Join(r.BaseDir, r.Directory)
}
