package resolver_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/convroute/registry"
	"github.com/yshengliao/convroute/resolver"
)

func TestRoutes(t *testing.T) {
	reg := registry.New(handlerTree())
	handlers, err := reg.Scan()
	require.NoError(t, err)

	routes := resolver.Routes(routeConfig(), handlers)

	got := make(map[string]string)
	var uris []string
	for _, r := range routes {
		got[r.URI] = r.Handler + "." + r.Method
		uris = append(uris, r.URI)
	}
	assert.IsNonDecreasing(t, uris)
	assert.Equal(t, map[string]string{
		"/":                 "IndexController.ActionIndex",
		"/about":            "IndexController.ActionAbout",
		"/admin":            "IndexController.ActionIndex",
		"/admin/stats":      "IndexController.ActionStats",
		"/admin/users":      "UsersController.ActionIndex",
		"/admin/users/list": "UsersController.ActionList",
		"/reports/daily":    "ReportsController.ActionDaily",
		"/widgets":          "WidgetsController.ActionIndex",
		"/widgets/compare":  "WidgetsController.ActionCompare",
		"/widgets/find-by":  "WidgetsController.ActionFindBy",
		"/widgets/list":     "WidgetsController.ActionList",
		"/widgets/show":     "WidgetsController.ActionShow",
	}, got)

	for _, r := range routes {
		assert.NotEqual(t, "AdminController", r.Handler, "shadowed by the admin directory")
	}
}

func TestRoutes_ResolveBack(t *testing.T) {
	reg := registry.New(handlerTree())
	handlers, err := reg.Scan()
	require.NoError(t, err)

	for _, route := range resolver.Routes(routeConfig(), handlers) {
		uri := strings.TrimSuffix(route.URI, "/") + strings.Repeat("/x", route.MinArgs)
		t.Run(uri, func(t *testing.T) {
			r := resolver.New(routeConfig(), reg, uri)
			require.NoError(t, r.Err())
			assert.Equal(t, route.Handler, r.HandlerName())
			assert.Equal(t, route.Method, r.MethodName())
			assert.Equal(t, route.File, r.Handler().File)
			assert.False(t, route.Bound)
		})
	}
}
