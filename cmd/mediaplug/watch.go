package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/thesyncim/mediaplug/watch"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rescan plugin directories on change and serve /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.registry.Static() {
				return errors.New("watch is not available in static mode")
			}

			w, err := watch.New(a.registry, watch.WithLogger(a.log), watch.WithDebounce(a.cfg.Watch.Debounce))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var srv *http.Server
			if addr := a.cfg.Watch.MetricsAddr; addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{}))
				srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					a.log.WithField("addr", addr).Info("Metrics server listening")
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						a.log.WithError(err).Error("Metrics server error")
						stop()
					}
				}()
			}

			err = w.Run(ctx)
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
