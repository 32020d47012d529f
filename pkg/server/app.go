package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ReplicaForecast/internal/service/ratelimit"
	"ReplicaForecast/internal/usecase"
	"ReplicaForecast/pkg/config"
	xhttp "ReplicaForecast/pkg/http"
	applogger "ReplicaForecast/pkg/logger"
)

const pruneInterval = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	buffer     *usecase.RecordBuffer
	proc       *usecase.RecordProcessor
	limiter    *ratelimit.Limiter
}

// New creates a new App instance with all dependencies.
// buffer and limiter are optional.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	buffer *usecase.RecordBuffer,
	proc *usecase.RecordProcessor,
	limiter *ratelimit.Limiter,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		logger:     l,
		httpServer: httpServer,
		buffer:     buffer,
		proc:       proc,
		limiter:    limiter,
	}
}

// Run starts the application and blocks until ctx is cancelled or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.httpServer == nil {
		return errors.New("http server is not configured")
	}

	// Records queued before shutdown are still written after ctx is done.
	if a.buffer != nil {
		a.buffer.Start(context.WithoutCancel(ctx))
		a.logger.Info("record buffer started", applogger.String("backend", a.cfg.Backend.Type))
	}

	if a.limiter != nil {
		go a.pruneLimiter(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Prune(); n > 0 {
				a.logger.Debug("rate limiter pruned", applogger.Int("clients", n))
			}
		}
	}
}

// shutdown stops accepting requests, flushes pending records and closes the sinks.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.buffer != nil {
		if err := a.buffer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("record buffer flush incomplete", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.proc != nil {
		a.proc.Close()
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
