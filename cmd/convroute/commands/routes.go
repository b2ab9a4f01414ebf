package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yshengliao/convroute/registry"
	"github.com/yshengliao/convroute/resolver"
)

func newRoutesCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes of the handler tree",
		Long: `Load every handler file of the handler tree and list the URI each
handler method is reached at, with the number of arguments it accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			handlers, scanErr := newRegistry(cfg, zap.NewNop()).Scan()
			routes := resolver.Routes(&cfg.Route, handlers)

			switch output {
			case "table":
				err = writeTable(cmd.OutOrStdout(), routes)
			case "yaml":
				err = writeYAML(cmd.OutOrStdout(), routes)
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
			if err != nil {
				return err
			}
			if scanErr != nil {
				return fmt.Errorf("some handler files could not be loaded: %w", scanErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func arity(min, max int) string {
	switch {
	case max == registry.Unlimited:
		return strconv.Itoa(min) + "+"
	case min == max:
		return strconv.Itoa(min)
	default:
		return fmt.Sprintf("%d-%d", min, max)
	}
}

func writeTable(w io.Writer, routes []resolver.Route) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "URI\tHANDLER\tMETHOD\tARGS\tBOUND\tFILE")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", r.URI, r.Handler, r.Method, arity(r.MinArgs, r.MaxArgs), r.Bound, r.File)
	}
	return tw.Flush()
}

type routeEntry struct {
	URI     string `yaml:"uri"`
	Handler string `yaml:"handler"`
	Method  string `yaml:"method"`
	Args    string `yaml:"args"`
	Bound   bool   `yaml:"bound"`
	File    string `yaml:"file"`
}

func writeYAML(w io.Writer, routes []resolver.Route) error {
	entries := make([]routeEntry, 0, len(routes))
	for _, r := range routes {
		entries = append(entries, routeEntry{
			URI:     r.URI,
			Handler: r.Handler,
			Method:  r.Method,
			Args:    arity(r.MinArgs, r.MaxArgs),
			Bound:   r.Bound,
			File:    r.File,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}
