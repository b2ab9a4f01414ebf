package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	apperrors "github.com/yshengliao/convroute/pkg/errors"
	"github.com/yshengliao/convroute/resolver"
)

// resolution is the printed form of a resolver result
type resolution struct {
	URI       string           `yaml:"uri"`
	Redirect  string           `yaml:"redirect,omitempty"`
	Handler   string           `yaml:"handler,omitempty"`
	File      string           `yaml:"file,omitempty"`
	Method    string           `yaml:"method,omitempty"`
	Arguments []string         `yaml:"arguments,omitempty"`
	Error     *resolutionError `yaml:"error,omitempty"`
}

type resolutionError struct {
	Code    int    `yaml:"code"`
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Resolve a URI and print the result as YAML",
		Example: `  convroute resolve /widgets/show/42
  convroute resolve --base-dir ./site /admin/users/list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			r := resolver.New(&cfg.Route, newRegistry(cfg, zap.NewNop()), args[0])
			out := describe(r)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}

			if out.Error != nil {
				return &Error{Code: apperrors.ErrorCode(out.Error.Code), Err: fmt.Errorf("%s did not resolve", args[0])}
			}
			return nil
		},
	}
}

func describe(r *resolver.Resolver) resolution {
	result := r.Result()
	out := resolution{
		URI:       result.URI,
		Redirect:  result.Redirect,
		Handler:   result.HandlerName,
		Method:    result.MethodName,
		Arguments: result.Arguments,
	}
	if result.Handler != nil {
		out.File = result.Handler.File
	}

	if err := r.Err(); err != nil {
		var rerr *resolver.Error
		if errors.As(err, &rerr) {
			out.Error = &resolutionError{Code: rerr.Code.Int(), Kind: rerr.Code.Label(), Message: rerr.Error()}
		} else {
			code := apperrors.CodeInternalServerError
			out.Error = &resolutionError{Code: code.Int(), Kind: code.Label(), Message: err.Error()}
		}
	}
	return out
}
