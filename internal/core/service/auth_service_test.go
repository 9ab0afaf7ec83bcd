package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/core/domain"
)

type stubCredentialStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
	err    error // returned by every call when set
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubCredentialStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubCredentialStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubCredentialStore) Insert(_ context.Context, username, hash string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, exists := r.users[username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	r.nextID++
	now := time.Now().UTC()
	u := &domain.User{ID: r.nextID, Username: username, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	r.users[username] = u
	return cloneUser(u), nil
}

func (r *stubCredentialStore) update(id int64, fn func(*domain.User)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			fn(u)
			u.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, domain.ErrUserNotFound
}

func (r *stubCredentialStore) UpdatePasswordHash(_ context.Context, id int64, hash string) (bool, error) {
	return r.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *stubCredentialStore) UpdateRole(_ context.Context, id int64, role domain.Role) (bool, error) {
	return r.update(id, func(u *domain.User) { u.Role = role })
}

func (r *stubCredentialStore) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for name, u := range r.users {
		if u.ID == id {
			delete(r.users, name)
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCredentialStore) ListAll(_ context.Context) ([]domain.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.PublicUser, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubCredentialStore) Ping(_ context.Context) error {
	return r.err
}

// countingHasher wraps the real hasher and records dummy verifications.
type countingHasher struct {
	*BcryptHasher
	dummyCalls int
}

func (h *countingHasher) VerifyDummy(plaintext string) {
	h.dummyCalls++
	h.BcryptHasher.VerifyDummy(plaintext)
}

func newAuthSvc(t *testing.T) (*AuthService, *stubCredentialStore, *countingHasher) {
	t.Helper()
	store := newStubCredentialStore()
	hasher := &countingHasher{BcryptHasher: newTestHasher(t)}
	return NewAuthService(store, hasher, zerolog.Nop()), store, hasher
}

func TestAuthService_CreateThenAuthenticate(t *testing.T) {
	svc, store, _ := newAuthSvc(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "alice", "password123", domain.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Username != "alice" || created.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", created)
	}
	if store.users["alice"].PasswordHash == "password123" {
		t.Fatalf("expected password to be hashed")
	}

	user, err := svc.Authenticate(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != created.ID || user.Username != "alice" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected authenticated user: %+v", user)
	}
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "alice", "password123", domain.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for _, pw := range []string{"wrong", "", "Password123", "password1234"} {
		if _, err := svc.Authenticate(ctx, "alice", pw); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("password %q: expected ErrInvalidCredentials, got %v", pw, err)
		}
	}
}

func TestAuthService_Authenticate_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	svc, _, hasher := newAuthSvc(t)

	_, err := svc.Authenticate(context.Background(), "ghost", "password123")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.dummyCalls != 1 {
		t.Fatalf("expected a dummy verification for the missing user, got %d", hasher.dummyCalls)
	}
}

func TestAuthService_Authenticate_StoreUnavailable(t *testing.T) {
	svc, store, _ := newAuthSvc(t)
	store.err = fmt.Errorf("dial: %w", domain.ErrStoreUnavailable)

	_, err := svc.Authenticate(context.Background(), "alice", "password123")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("store failures must not look like bad credentials")
	}
}

func TestAuthService_CreateUser_Duplicate(t *testing.T) {
	svc, store, _ := newAuthSvc(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "bob", "password123", domain.RoleUser); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "bob", "otherpass99", domain.RoleAdmin); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	users, _ := store.ListAll(ctx)
	if len(users) != 1 || users[0].Role != domain.RoleUser {
		t.Fatalf("expected exactly the original bob, got %+v", users)
	}
	if _, err := svc.Authenticate(ctx, "bob", "password123"); err != nil {
		t.Fatalf("original password must still work: %v", err)
	}
}

func TestAuthService_CreateUser_Role(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "carol", "password123", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %q", u.Role)
	}

	if _, err := svc.CreateUser(ctx, "dave", "password123", domain.Role("root")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_UpdatePassword(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	u, _ := svc.CreateUser(ctx, "erin", "password123", domain.RoleUser)
	if err := svc.UpdatePassword(ctx, u.ID, "newpassword1"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "erin", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "erin", "newpassword1"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}

	if err := svc.UpdatePassword(ctx, 999, "whatever12"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	u, _ := svc.CreateUser(ctx, "frank", "password123", domain.RoleUser)

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "newpassword1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "frank", "newpassword1"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestAuthService_UpdateRole(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	u, _ := svc.CreateUser(ctx, "gina", "password123", domain.RoleUser)
	if err := svc.UpdateRole(ctx, u.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	got, _ := svc.Authenticate(ctx, "gina", "password123")
	if !svc.IsAdmin(*got) {
		t.Fatalf("expected gina to be admin")
	}

	if err := svc.UpdateRole(ctx, u.ID, domain.Role("owner")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if err := svc.UpdateRole(ctx, 999, domain.RoleUser); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ListUsersSorted(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	for _, name := range []string{"zoe", "adam", "mia"} {
		if _, err := svc.CreateUser(ctx, name, "password123", domain.RoleUser); err != nil {
			t.Fatalf("CreateUser(%s): %v", name, err)
		}
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 || users[0].Username != "adam" || users[1].Username != "mia" || users[2].Username != "zoe" {
		t.Fatalf("unexpected order: %+v", users)
	}
}

func TestAuthService_AliceScenario(t *testing.T) {
	svc, _, _ := newAuthSvc(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "alice", "password123", domain.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, err := svc.Authenticate(ctx, "alice", "password123")
	if err != nil || user.Username != "alice" || user.Role != domain.RoleUser {
		t.Fatalf("expected alice/user, got %+v (%v)", user, err)
	}
	if svc.IsAdmin(*user) {
		t.Fatalf("alice must not be admin")
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	deleted, err := svc.DeleteUser(ctx, user.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteUser: deleted=%v err=%v", deleted, err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials after delete, got %v", err)
	}

	deleted, err = svc.DeleteUser(ctx, user.ID)
	if err != nil || deleted {
		t.Fatalf("second delete should report false without error, got deleted=%v err=%v", deleted, err)
	}
}
