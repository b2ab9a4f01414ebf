package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/yshengliao/convroute/registry"
)

const indexSource = `package handlers

type IndexController struct{}

func (IndexController) ActionIndex(path ...string) {}

func (IndexController) ActionAbout() {}
`

const widgetsSource = `package handlers

import "context"

type WidgetsController struct{}

func (*WidgetsController) ActionIndex() {}

func (*WidgetsController) ActionShow(ctx context.Context, id string) {}

func (*WidgetsController) ActionSearch(terms ...string) {}

func (*WidgetsController) ActionRaw() {}

func (*WidgetsController) ActionDelete(id string) {}

func (*WidgetsController) ActionFail() {}

func (*WidgetsController) ActionPanic() {}
`

const adminUsersSource = `package admin

type UsersController struct{}

func (UsersController) ActionList() {}

func (UsersController) ActionShow(name string) {}
`

// HandlerTree returns an in-memory handler tree:
//
//	IndexController.go
//	WidgetsController.go
//	admin/UsersController.go
func HandlerTree() fstest.MapFS {
	return fstest.MapFS{
		"IndexController.go":       {Data: []byte(indexSource)},
		"WidgetsController.go":     {Data: []byte(widgetsSource)},
		"admin/UsersController.go": {Data: []byte(adminUsersSource)},
	}
}

// WriteHandlerTree writes HandlerTree under a temporary directory and
// returns it
func WriteHandlerTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, file := range HandlerTree() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// BindAll binds the implementations of the HandlerTree handlers
func BindAll(reg *registry.Registry) {
	reg.MustBind("IndexController.go", &IndexController{})
	reg.MustBind("WidgetsController.go", &WidgetsController{})
}

// IndexController implements IndexController.go
type IndexController struct{}

func (IndexController) ActionIndex(path ...string) map[string]any {
	return map[string]any{"page": "home", "path": path}
}

func (IndexController) ActionAbout() string {
	return "about us"
}

// ErrDeleteRefused is returned by WidgetsController.ActionDelete
var ErrDeleteRefused = errors.New("widget is locked")

// WidgetsController implements WidgetsController.go
type WidgetsController struct{}

// Widget is the JSON body of the widget endpoints
type Widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (*WidgetsController) ActionIndex() []Widget {
	return []Widget{{ID: "1", Name: "gear"}, {ID: "2", Name: "sprocket"}}
}

func (*WidgetsController) ActionShow(ctx context.Context, id string) (*Widget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Widget{ID: id, Name: "widget " + id}, nil
}

func (*WidgetsController) ActionSearch(terms ...string) []string {
	return terms
}

func (*WidgetsController) ActionRaw() []byte {
	return []byte{0x01, 0x02, 0x03}
}

func (*WidgetsController) ActionDelete(id string) error {
	return nil
}

func (*WidgetsController) ActionFail() error {
	return ErrDeleteRefused
}

func (*WidgetsController) ActionPanic() {
	panic("widget exploded")
}
