package ports

import (
	"context"

	"github.com/portalkit/portal/internal/core/domain"
)

// PasswordHasher is a one-way salted hash with a self-describing output.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	// VerifyDummy burns the same work as Verify against a fixed hash so a
	// missing user costs as much as a wrong password.
	VerifyDummy(plaintext string)
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.PublicUser, error)
	CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.PublicUser, error)
	UpdatePassword(ctx context.Context, userID int64, newPassword string) error
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	UpdateRole(ctx context.Context, userID int64, role domain.Role) error
	DeleteUser(ctx context.Context, userID int64) (bool, error)
	ListUsers(ctx context.Context) ([]domain.PublicUser, error)
	IsAdmin(user domain.PublicUser) bool
}
