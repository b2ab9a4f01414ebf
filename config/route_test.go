package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshengliao/convroute/config"
)

func TestRouteConfig_Get(t *testing.T) {
	route := config.DefaultConfig().Route
	route.Extension = ".php"
	route.Redirects = config.Redirects{{Pattern: "^a", Target: "/b"}}

	assert.Equal(t, "index", route.Get(config.KeyClassDefault))
	assert.Equal(t, "", route.Get(config.KeyClassPrefix))
	assert.Equal(t, "Controller", route.Get(config.KeyClassSuffix))
	assert.Equal(t, "index", route.Get(config.KeyFunctionDefault))
	assert.Equal(t, "Action", route.Get(config.KeyFunctionPrefix))
	assert.Equal(t, "", route.Get(config.KeyFunctionSuffix))
	assert.Equal(t, ".", route.Get(config.KeyBaseDir))
	assert.Equal(t, "handlers", route.Get(config.KeyDirectory))
	assert.Equal(t, "php", route.Get(config.KeyExtension))

	redirects, ok := route.Get(config.KeyRedirects).(config.Redirects)
	require.True(t, ok)
	assert.Len(t, redirects, 1)
}

func TestRouteConfig_GetDefaults(t *testing.T) {
	route := config.RouteConfig{}

	assert.Equal(t, "go", route.Get(config.KeyExtension, "go"))
	assert.Equal(t, "Ctl", route.Get(config.KeyClassSuffix, "Ctl"))
	assert.Equal(t, "", route.Get(config.KeyClassSuffix))
	assert.Nil(t, route.Get(config.KeyRedirects))
	assert.Nil(t, route.Get("no.such.key"))
	assert.Equal(t, 42, route.Get("no.such.key", 42))
}

func TestRedirects_LookupFirstMatchWins(t *testing.T) {
	table := config.Redirects{
		{Pattern: "blog", Target: "/first"},
		{Pattern: "^blog/2020", Target: "/second"},
	}
	require.NoError(t, table.Compile())

	target, ok := table.Lookup("blog/2020/post")
	assert.True(t, ok)
	assert.Equal(t, "/first", target)

	_, ok = table.Lookup("news")
	assert.False(t, ok)
}

func TestRedirects_UncompiledInvalidPatternNeverMatches(t *testing.T) {
	table := config.Redirects{
		{Pattern: "([", Target: "/broken"},
		{Pattern: "x", Target: "/x"},
	}

	target, ok := table.Lookup("([x")
	assert.True(t, ok)
	assert.Equal(t, "/x", target)
	assert.Error(t, table.Compile())
}
