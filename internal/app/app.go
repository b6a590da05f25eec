package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/pairchat/internal/config"
	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/session"
	"github.com/vovakirdan/pairchat/internal/store"
	"github.com/vovakirdan/pairchat/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/pairchat/internal/transport/http"
	"github.com/vovakirdan/pairchat/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	tcp             *tcp.Server
	admin           *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	store           store.EventStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	var st store.EventStore
	if cfg.DatabasePath != "" {
		sqliteStore, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = sqliteStore
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("audit log initialized")
	}

	registry := core.NewRegistry()

	opts := session.Options{
		MaxLineBytes:     cfg.MaxLineBytes,
		WriteTimeout:     cfg.WriteTimeout,
		MsgRatePerMinute: cfg.MsgRatePerMinute,
	}
	if st != nil {
		opts.Recorder = st
	}
	handler := session.NewHandler(registry, opts, logger)

	a := &App{
		tcp:             tcp.NewServer(cfg.Addr, handler, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		registry:        registry,
		store:           st,
		log:             logger,
	}
	if cfg.AdminAddr != "" {
		a.admin = transporthttp.NewServer(registry, st, handler, cfg, logger)
	}
	return a, nil
}

// Run serves the chat listener and the admin server until ctx is cancelled or
// either of them fails.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.tcp.ListenAndServe(gctx)
	})

	if a.admin != nil {
		// WebSocket sessions outlive Shutdown; tie them to the app context instead.
		a.admin.BaseContext = func(net.Listener) context.Context { return gctx }

		g.Go(func() error {
			a.log.Info().Str("addr", a.admin.Addr).Msg("admin http server started")
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down admin http server")
			return a.admin.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Addr returns the chat listener address once it is bound, nil before.
func (a *App) Addr() net.Addr {
	return a.tcp.Addr()
}

// Registry exposes the shared session registry.
func (a *App) Registry() *core.Registry {
	return a.registry
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
