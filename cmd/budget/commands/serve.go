package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budget/internal/cli"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
)

const shutdownTimeout = 30 * time.Second

// serve [--port 8081]: run the web UI and JSON API until interrupted.
func serveCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if port == "" {
				port = app.cfg.Port
			}

			ctx, stop := cli.SignalContext(commandContext(cmd))
			defer stop()

			// Heal a corrupt store before the first request.
			if snap, err := app.store.Load(ctx); err != nil {
				return err
			} else if snap.Warning != nil {
				printWarning(cmd.ErrOrStderr(), snap.Warning)
			}

			svc := opts.newService(true)
			defer svc.Close()

			srv := apphttp.NewServer(":"+port, svc, app.logger, apphttp.Options{
				CurrencySymbol: app.cfg.CurrencySymbol,
				StoreInfo:      app.store,
				MetricsEnabled: app.cfg.MetricsEnabled,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				app.logger.Info("Starting HTTP server",
					"addr", srv.Addr,
					applog.FieldFile, app.store.Path(),
					applog.FieldOperation, applog.OpStartup)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			err := g.Wait()
			app.logger.Info("Server stopped", applog.FieldOperation, applog.OpShutdown)
			return err
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT or 8081)")
	return cmd
}
