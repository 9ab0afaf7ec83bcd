// Command server runs the portal HTTP API.
//
//	@title						Portal API
//	@version					1.0.0
//	@description				Session-authenticated user administration and XML document generation.
//	@BasePath					/
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						portal_session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portalkit/portal/internal/api"
	"github.com/portalkit/portal/internal/core/service"
	"github.com/portalkit/portal/internal/infrastructure/store"
	"github.com/portalkit/portal/internal/pkg/config"
	"github.com/portalkit/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		logger.Init(logger.Options{Pretty: true})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		App:     cfg.AppName,
		Version: cfg.AppVersion,
	})
	if cfg.GeneratedSecret {
		log.Warn().Msg("SESSION_SECRET is empty; using a random secret, sessions will not survive a restart")
	}

	st, err := store.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	hasher, err := service.NewBcryptHasher(cfg.Store.BcryptCost)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(st.Users, hasher, logger.Component("auth"))
	documentService := service.NewDocumentService(st.Messages, logger.Component("documents"))

	if _, err := service.EnsureDefaultAdmin(ctx, authService, st.Users,
		cfg.Admin.Username, cfg.Admin.Password, logger.Component("bootstrap")); err != nil {
		return err
	}

	e := api.NewRouter(cfg, api.Dependencies{
		Auth:      authService,
		Documents: documentService,
		Store:     st.Users,
		Log:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.Store.Driver).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
