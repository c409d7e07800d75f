package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"recipebox/handlers"
	"recipebox/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recipe API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		a.registry.MustRegister(collectors.NewGoCollector())

		log := logger.WithComponent("http")
		srv := &http.Server{
			Addr: a.cfg.Server.Addr,
			Handler: handlers.NewRouter(a.recipes, handlers.RouterOptions{
				Logger:         log,
				Gatherer:       a.registry,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("server starting")
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
