package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/pkg/config"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{
		Driver: config.DriverSQLite,
		DBPath: filepath.Join(t.TempDir(), "nested", "app.db"),
	}}

	s, err := Open(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close(ctx)

	if err := s.Users.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := s.Users.Insert(ctx, "alice", "hash", domain.RoleUser); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Messages.Insert(ctx, "a.xml", "<a/>", "alice"); err != nil {
		t.Fatalf("insert message: %v", err)
	}

	// Reopening the same file keeps the data.
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	s, err = Open(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close(ctx)
	if _, err := s.Users.FindByUsername(ctx, "alice"); err != nil {
		t.Fatalf("user lost across reopen: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "bolt"}}, zerolog.Nop())
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}
