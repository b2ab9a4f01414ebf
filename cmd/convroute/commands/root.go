package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yshengliao/convroute/config"
	apperrors "github.com/yshengliao/convroute/pkg/errors"
	"github.com/yshengliao/convroute/registry"
)

// Execute runs the convroute command line
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// options are the flags shared by every command
type options struct {
	configPath string
	envPrefix  string
	baseDir    string
}

// Error is a command failure carrying the error code of its cause
type Error struct {
	Code apperrors.ErrorCode
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Code.Message(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "convroute",
		Short: "Convention based request routing",
		Long: `convroute maps request paths onto a tree of handler files by naming
convention: directories, then a handler file, then a method, then arguments.

It resolves single URIs, lists the routes of a handler tree and serves the
tree over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "config file path")
	root.PersistentFlags().StringVar(&opts.envPrefix, "env-prefix", config.DefaultEnvPrefix, "prefix of configuration environment variables")
	root.PersistentFlags().StringVar(&opts.baseDir, "base-dir", "", "override route.base_dir")

	root.AddCommand(newResolveCmd(opts))
	root.AddCommand(newRoutesCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

// load reads the configuration the flags point at: the config file, the
// .env file next to it and the environment under the env prefix
func (o *options) load() (*config.Config, error) {
	cfg := &config.Config{}
	err := config.NewLoader().
		WithYAMLFile(o.configPath).
		WithDotEnvFile(config.DotEnvFor(o.configPath)).
		WithEnvPrefix(o.envPrefix).
		Load(cfg)
	if err != nil {
		return nil, &Error{Code: apperrors.CodeConfigurationError, Err: err}
	}
	if o.baseDir != "" {
		cfg.Route.BaseDir = o.baseDir
	}
	return cfg, nil
}

func newRegistry(cfg *config.Config, logger *zap.Logger) *registry.Registry {
	return registry.New(os.DirFS(cfg.Route.HandlerRoot()),
		registry.WithExtension(cfg.Route.Extension),
		registry.WithLogger(logger))
}
