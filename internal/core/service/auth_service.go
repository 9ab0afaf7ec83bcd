package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/core/ports"
)

// AuthService implements credential checks and user administration on top of
// a CredentialStore.
//
// Input lengths and password confirmation are validated by the caller; this
// service only enforces the role enum.
type AuthService struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, hasher ports.PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, hasher: hasher, log: log}
}

// Authenticate returns the public user on a match and ErrInvalidCredentials
// otherwise. Unknown usernames and wrong passwords cost the same and fail
// the same way.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.PublicUser, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			s.log.Warn().Str("username", username).Msg("login rejected")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Warn().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	public := user.Public()
	return &public, nil
}

func (s *AuthService) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.PublicUser, error) {
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, username, hash, role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Str("role", string(created.Role)).Msg("user created")
	public := created.Public()
	return &public, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.log.Info().Int64("user_id", userID).Msg("password updated")
	return nil
}

// ChangePassword requires the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return s.UpdatePassword(ctx, userID, newPassword)
}

func (s *AuthService) UpdateRole(ctx context.Context, userID int64, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	if _, err := s.store.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	s.log.Info().Int64("user_id", userID).Str("role", string(role)).Msg("role updated")
	return nil
}

// DeleteUser reports false when no such user existed.
func (s *AuthService) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if deleted {
		s.log.Info().Int64("user_id", userID).Msg("user deleted")
	}
	return deleted, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) IsAdmin(user domain.PublicUser) bool {
	return user.IsAdmin()
}
