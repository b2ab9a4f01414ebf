package registry

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"
)

// Scan walks the whole handler tree ahead of time and loads every handler
// file. Files that do not define a type named after them are helpers and are
// skipped; any other failure is returned after the walk completes, together
// with the handlers that did load.
func (r *Registry) Scan() ([]*Handler, error) {
	var errs []error

	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if path.Ext(p) != "."+r.ext || strings.HasSuffix(p, "_test.go") {
			return nil
		}

		typeName := strings.TrimSuffix(d.Name(), "."+r.ext)
		if _, err := r.Load(p, typeName); err != nil {
			if errors.Is(err, ErrTypeNotDefined) {
				r.logger.Debug("skipping file without handler type", zap.String("file", p))
				return nil
			}
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	return r.Loaded(), errors.Join(errs...)
}
