package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yshengliao/convroute/pkg/logger"
	"github.com/yshengliao/convroute/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		address string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the handler tree over HTTP",
		Long: `Serve the handler tree over HTTP. Handler files read from disk are
routable but answer 501 until an implementation is bound; embed the server
package to bind implementations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if cmd.Flags().Changed("watch") {
				cfg.Route.Watch = watch
			}

			log, err := logger.New(cfg.Logger)
			if err != nil {
				return err
			}
			defer log.Sync()

			srv, err := server.New(cfg, server.WithLogger(log))
			if err != nil {
				return err
			}
			return serve(cmd.Context(), srv, log)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "override server.address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload handler files when they change")
	return cmd
}

// serve runs srv until ctx is done or the process is interrupted
func serve(ctx context.Context, srv *server.Server, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
