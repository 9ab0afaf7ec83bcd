package ports

import (
	"context"

	"github.com/portalkit/portal/internal/core/domain"
)

// CredentialStore is the persistence boundary for user records.
//
// Implementations wrap connection and driver failures in
// domain.ErrStoreUnavailable and serialize writes.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Insert returns domain.ErrDuplicateUsername when the username is taken.
	Insert(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error)
	// UpdatePasswordHash returns domain.ErrUserNotFound when id is absent.
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) (bool, error)
	// UpdateRole returns domain.ErrUserNotFound when id is absent.
	UpdateRole(ctx context.Context, id int64, role domain.Role) (bool, error)
	// Delete reports false without error when id is absent.
	Delete(ctx context.Context, id int64) (bool, error)
	// ListAll returns every user ordered by username, without hashes.
	ListAll(ctx context.Context) ([]domain.PublicUser, error)
	Ping(ctx context.Context) error
}
