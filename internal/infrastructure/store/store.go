// Package store opens the persistence backend selected by STORE_DRIVER and
// prepares its schema.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/core/ports"
	"github.com/portalkit/portal/internal/infrastructure/db/mongo"
	"github.com/portalkit/portal/internal/infrastructure/db/sqlite"
	"github.com/portalkit/portal/internal/pkg/config"
)

// Store bundles the repositories of one backend.
type Store struct {
	Users    ports.CredentialStore
	Messages ports.MessageRepository

	close func(ctx context.Context) error
}

// Open connects to the configured backend and runs its migrations. Migrations
// are idempotent, so Open is safe on every start.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}

func openSQLite(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.Store.DBPath})
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("path", cfg.Store.DBPath).Msg("sqlite store ready")

	return &Store{
		Users:    sqlite.NewUserRepository(db),
		Messages: sqlite.NewMessageRepository(db),
		close:    func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")

	return &Store{
		Users:    mongo.NewUserRepository(db),
		Messages: mongo.NewMessageRepository(db),
		close:    client.Disconnect,
	}, nil
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
