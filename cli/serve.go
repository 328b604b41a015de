package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/roster-engine/api"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, planner, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			pusher, err := a.pusher(store, false)
			if err != nil {
				return err
			}

			handler := api.NewHandler(planner, a.log)
			handler.Backup = pusher

			scheduler := api.NewReconciliationScheduler(planner, pusher, a.log)
			scheduler.Enabled = a.cfg.Scheduler.Enabled
			scheduler.CheckInterval = a.cfg.Scheduler.Every
			scheduler.WeeksAhead = a.cfg.Scheduler.WeeksAhead

			server := &http.Server{
				Addr:         a.cfg.Server.Addr(),
				Handler:      api.NewRouter(handler, a.cfg.Server.AllowedOrigins),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.log.Info("server starting",
					zap.String("addr", server.Addr),
					zap.String("storage", a.cfg.Storage.Path))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}()
			scheduler.Start()
			defer scheduler.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errc:
				return err
			case <-quit:
			}

			a.log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			a.log.Info("server stopped")
			return nil
		},
	}
}
