package registry

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"strings"
)

// sourceFile is the part of a parsed Go file the registry needs
type sourceFile struct {
	pkg   string
	types map[string]bool
	file  *ast.File
}

func parseSource(fsys fs.FS, name string) (*sourceFile, error) {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	f, err := parser.ParseFile(token.NewFileSet(), name, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	sf := &sourceFile{
		pkg:   f.Name.Name,
		types: make(map[string]bool),
		file:  f,
	}
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				sf.types[ts.Name.Name] = true
			}
		}
	}
	return sf, nil
}

// sourceMethods collects the routable methods of typeName from every Go file
// of the package that defines it. Methods may live in any file of the
// package, not only the one named after the type.
func sourceMethods(fsys fs.FS, defining *sourceFile, file, typeName string) (map[string]*Method, error) {
	dir := path.Dir(file)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	methods := make(map[string]*Method)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		sf := defining
		if p := path.Join(dir, name); p != file {
			if sf, err = parseSource(fsys, p); err != nil {
				return nil, err
			}
			if sf.pkg != defining.pkg {
				continue
			}
		}

		for _, decl := range sf.file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			if receiverName(fn.Recv.List[0].Type) != typeName {
				continue
			}
			if m, ok := sourceMethod(fn); ok {
				methods[m.Name] = m
			}
		}
	}
	return methods, nil
}

// receiverName strips pointers and type parameters from a receiver type
func receiverName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// sourceMethod derives the arity of a method declared as
//
//	func (h *T) Name([ctx context.Context,] a, b string[, rest ...string])
//
// Methods with any other parameter type are not routable.
func sourceMethod(fn *ast.FuncDecl) (*Method, bool) {
	var params []ast.Expr
	for _, field := range fn.Type.Params.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			params = append(params, field.Type)
		}
	}

	if len(params) > 0 && isContextType(params[0]) {
		params = params[1:]
	}

	m := &Method{Name: fn.Name.Name}
	for i, p := range params {
		if isIdent(p, "string") {
			m.MinArgs++
			continue
		}
		if e, ok := p.(*ast.Ellipsis); ok && i == len(params)-1 && isIdent(e.Elt, "string") {
			m.MaxArgs = Unlimited
			return m, true
		}
		return nil, false
	}
	m.MaxArgs = m.MinArgs
	return m, true
}

func isIdent(expr ast.Expr, name string) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == name
}

func isContextType(expr ast.Expr) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	return ok && sel.Sel.Name == "Context" && isIdent(sel.X, "context")
}
