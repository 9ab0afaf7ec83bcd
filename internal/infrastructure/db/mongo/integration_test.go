package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/portalkit/portal/internal/core/domain"
)

// openTestDB connects to MONGO_URI and returns a throwaway database with the
// indexes in place. The test is skipped when MONGO_URI is unset.
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("portal_test_%d", time.Now().UnixNano())
	client, db, err := Connect(ctx, Config{URI: uri, Database: name, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	// Running it twice must be harmless.
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("indexes again: %v", err)
	}
	return db
}

func TestUserRepository_Mongo_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	alice, err := repo.Insert(ctx, "alice", "hash-a", domain.RoleUser)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	bob, err := repo.Insert(ctx, "bob", "hash-b", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if alice.ID == 0 || bob.ID <= alice.ID {
		t.Fatalf("expected increasing ids, got %d and %d", alice.ID, bob.ID)
	}

	got, err := repo.FindByUsername(ctx, "alice")
	if err != nil || got.ID != alice.ID || got.PasswordHash != "hash-a" {
		t.Fatalf("find by username: %+v %v", got, err)
	}
	if got, err := repo.FindByID(ctx, bob.ID); err != nil || got.Role != domain.RoleAdmin {
		t.Fatalf("find by id: %+v %v", got, err)
	}
	if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_Mongo_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewUserRepository(db)

	if _, err := repo.Insert(ctx, "alice", "hash-1", domain.RoleUser); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := repo.Insert(ctx, "alice", "hash-2", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("a duplicate must not read as an outage: %v", err)
	}

	n, err := db.Collection(usersCollection).CountDocuments(ctx, bson.M{"username": "alice"})
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one alice, got %d (%v)", n, err)
	}
	got, _ := repo.FindByUsername(ctx, "alice")
	if got == nil || got.PasswordHash != "hash-1" {
		t.Fatalf("the first row must survive, got %+v", got)
	}
}

func TestUserRepository_Mongo_UpdatesAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	alice, err := repo.Insert(ctx, "alice", "old-hash", domain.RoleUser)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if ok, err := repo.UpdatePasswordHash(ctx, alice.ID, "new-hash"); !ok || err != nil {
		t.Fatalf("update password: %v %v", ok, err)
	}
	if ok, err := repo.UpdateRole(ctx, alice.ID, domain.RoleAdmin); !ok || err != nil {
		t.Fatalf("update role: %v %v", ok, err)
	}
	got, _ := repo.FindByID(ctx, alice.ID)
	if got == nil || got.PasswordHash != "new-hash" || got.Role != domain.RoleAdmin {
		t.Fatalf("updates not applied: %+v", got)
	}

	if _, err := repo.UpdatePasswordHash(ctx, 9999, "x"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on password update, got %v", err)
	}
	if _, err := repo.UpdateRole(ctx, 9999, domain.RoleUser); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on role update, got %v", err)
	}

	if ok, err := repo.Delete(ctx, alice.ID); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := repo.Delete(ctx, alice.ID); ok || err != nil {
		t.Fatalf("deleting an absent id must report false without error, got %v %v", ok, err)
	}
	if _, err := repo.FindByID(ctx, alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestUserRepository_Mongo_ListAllSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := repo.Insert(ctx, name, "hash-"+name, domain.RoleUser); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	users, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(users) != len(want) {
		t.Fatalf("expected %d users, got %d", len(want), len(users))
	}
	for i, u := range users {
		if u.Username != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], u.Username)
		}
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMessageRepository_Mongo_Recent(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(openTestDB(t))

	for i := 1; i <= 3; i++ {
		if _, err := repo.Insert(ctx, fmt.Sprintf("m%d.xml", i), "<m/>", "alice"); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	msgs, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Filename != "m3.xml" || msgs[1].Filename != "m2.xml" {
		t.Fatalf("unexpected order %+v", msgs)
	}
	if msgs[0].Content != "" {
		t.Fatalf("listing must not carry content")
	}
}
