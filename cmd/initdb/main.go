// Command initdb prepares the configured store and creates the default admin
// account, then exits.
package main

import (
	"context"
	"os"

	"github.com/portalkit/portal/internal/core/service"
	"github.com/portalkit/portal/internal/infrastructure/store"
	"github.com/portalkit/portal/internal/pkg/config"
	"github.com/portalkit/portal/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Pretty: true})
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()})

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store")
	}

	code := 0
	if err := bootstrap(ctx, cfg, st); err != nil {
		log.Error().Err(err).Msg("bootstrap failed")
		code = 1
	}
	_ = st.Close(ctx)
	os.Exit(code)
}

func bootstrap(ctx context.Context, cfg *config.Config, st *store.Store) error {
	hasher, err := service.NewBcryptHasher(cfg.Store.BcryptCost)
	if err != nil {
		return err
	}
	auth := service.NewAuthService(st.Users, hasher, logger.Get())

	created, err := service.EnsureDefaultAdmin(ctx, auth, st.Users, cfg.Admin.Username, cfg.Admin.Password, logger.Get())
	if err != nil {
		return err
	}
	l := logger.Get()
	l.Info().Bool("admin_created", created).Msg("database initialized")
	return nil
}
