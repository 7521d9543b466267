// Package app ties the configured server and observability runtime into one
// runnable unit with graceful shutdown.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buran83/makechat/internal/config"
	"github.com/buran83/makechat/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Observability: runtime}
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// flushes telemetry within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()

		a.Logger.Info("shutting down")
		err := a.Server.Shutdown(shutdownCtx)
		if a.Observability != nil {
			err = errors.Join(err, a.Observability.Shutdown(shutdownCtx))
		}
		return err
	})

	return g.Wait()
}

func (a *App) shutdownTimeout() time.Duration {
	if a.Config != nil && a.Config.ShutdownTimeout > 0 {
		return a.Config.ShutdownTimeout
	}
	return 10 * time.Second
}
