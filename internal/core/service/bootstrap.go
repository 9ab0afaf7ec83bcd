package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/core/ports"
)

// EnsureDefaultAdmin creates the well-known admin account when no user with
// that name exists. It is safe to run on every start.
func EnsureDefaultAdmin(ctx context.Context, auth ports.AuthService, store ports.CredentialStore, username, password string, log zerolog.Logger) (bool, error) {
	_, err := store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		log.Debug().Str("username", username).Msg("default admin already present")
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	if _, err := auth.CreateUser(ctx, username, password, domain.RoleAdmin); err != nil {
		// Another process won the race; the account exists either way.
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	log.Warn().
		Str("username", username).
		Msg("default admin created with the well-known password; change it immediately")
	return true, nil
}
