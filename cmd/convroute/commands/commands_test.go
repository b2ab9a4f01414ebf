package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yshengliao/convroute/internal/testutil/fixture"
	apperrors "github.com/yshengliao/convroute/pkg/errors"
)

// writeConfig writes a config file serving a fresh copy of the fixture tree
func writeConfig(t *testing.T) string {
	t.Helper()
	tree := fixture.WriteHandlerTree(t)

	content := `server:
  address: 127.0.0.1:0
logger:
  level: error
  output_paths: [stderr]
route:
  base_dir: ` + filepath.Dir(tree) + `
  directory: ` + filepath.Base(tree) + `
  redirects:
    ^/old/: /widgets
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCmd(t *testing.T) {
	cfgPath := writeConfig(t)

	t.Run("resolved", func(t *testing.T) {
		out, err := run(t, "resolve", "-c", cfgPath, "/widgets/show/a%20b")
		require.NoError(t, err)

		var got resolution
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, resolution{
			URI:       "/widgets/show/a%20b",
			Handler:   "WidgetsController",
			File:      "WidgetsController.go",
			Method:    "ActionShow",
			Arguments: []string{"a b"},
		}, got)
	})

	t.Run("redirect", func(t *testing.T) {
		out, err := run(t, "resolve", "-c", cfgPath, "/old/page")
		require.NoError(t, err)

		var got resolution
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, "/widgets", got.Redirect)
		assert.Empty(t, got.Handler)
	})

	t.Run("failure", func(t *testing.T) {
		out, err := run(t, "resolve", "-c", cfgPath, "/widgets/show")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/widgets/show did not resolve")
		var cmdErr *Error
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, apperrors.CodeTooFewArguments, cmdErr.Code)

		var got resolution
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		require.NotNil(t, got.Error)
		assert.Equal(t, 1001, got.Error.Code)
		assert.Equal(t, "too_few_arguments", got.Error.Kind)
		assert.Empty(t, got.Method)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := run(t, "resolve", "-c", cfgPath)
		assert.Error(t, err)
	})
}

func TestRoutesCmd(t *testing.T) {
	cfgPath := writeConfig(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "routes", "-c", cfgPath)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.NotEmpty(t, lines)
		assert.Equal(t, []string{"URI", "HANDLER", "METHOD", "ARGS", "BOUND", "FILE"}, strings.Fields(lines[0]))
		assert.Contains(t, out, "/widgets/show")
		assert.Contains(t, out, "admin/UsersController.go")
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := run(t, "routes", "-c", cfgPath, "-o", "yaml")
		require.NoError(t, err)

		var entries []routeEntry
		require.NoError(t, yaml.Unmarshal([]byte(out), &entries))

		byURI := map[string]routeEntry{}
		for _, e := range entries {
			byURI[e.URI] = e
		}
		assert.Equal(t, routeEntry{URI: "/", Handler: "IndexController", Method: "ActionIndex", Args: "0+", File: "IndexController.go"}, byURI["/"])
		assert.Equal(t, "1", byURI["/widgets/show"].Args)
		assert.Equal(t, "ActionShow", byURI["/admin/users/show"].Method)
		assert.False(t, byURI["/about"].Bound)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "routes", "-c", cfgPath, "-o", "xml")
		assert.ErrorContains(t, err, `unknown output format "xml"`)
	})
}

func TestArity(t *testing.T) {
	assert.Equal(t, "0+", arity(0, -1))
	assert.Equal(t, "2", arity(2, 2))
	assert.Equal(t, "1-3", arity(1, 3))
}

func TestServeCmd(t *testing.T) {
	cfgPath := writeConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := NewRootCmd("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "-c", cfgPath})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: loud\n"), 0o644))

	_, err := run(t, "serve", "-c", path)
	var cmdErr *Error
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, apperrors.CodeConfigurationError, cmdErr.Code)
	assert.Contains(t, err.Error(), "Configuration error: ")
}

func TestEnvPrefix(t *testing.T) {
	cfgPath := writeConfig(t)
	t.Setenv("SITE_LOGGER_LEVEL", "loud")

	_, err := run(t, "resolve", "-c", cfgPath, "/about")
	require.NoError(t, err)

	_, err = run(t, "resolve", "-c", cfgPath, "--env-prefix", "SITE_", "/about")
	var cmdErr *Error
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, apperrors.CodeConfigurationError, cmdErr.Code)
}
