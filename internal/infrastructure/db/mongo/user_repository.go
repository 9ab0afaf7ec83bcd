package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portalkit/portal/internal/core/domain"
)

// UserRepository is the MongoDB CredentialStore.
type UserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	mu   sync.Mutex
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, coll: db.Collection(usersCollection), now: time.Now}
}

type mongoUser struct {
	ID           int64  `bson:"_id"`
	Username     string `bson:"username"`
	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID,
		Username:     mu.Username,
		PasswordHash: mu.PasswordHash,
		Role:         domain.Role(mu.Role),
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable(op, err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "find user", bson.M{"username": username})
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "find user by id", bson.M{"_id": id})
}

func (r *UserRepository) Insert(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := nextID(ctx, r.db, usersCollection)
	if err != nil {
		return nil, unavailable("insert user", err)
	}

	now := r.now().UTC().Truncate(time.Second)
	doc := mongoUser{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         string(role),
		CreatedAt:    now.Unix(),
		UpdatedAt:    now.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, unavailable("insert user", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) update(ctx context.Context, op string, id int64, set bson.M) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set["updated_at"] = r.now().UTC().Unix()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, unavailable(op, err)
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrUserNotFound
	}
	return true, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) (bool, error) {
	return r.update(ctx, "update password", id, bson.M{"password_hash": passwordHash})
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) (bool, error) {
	return r.update(ctx, "update role", id, bson.M{"role": string(role)})
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, unavailable("delete user", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]domain.PublicUser, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer cur.Close(ctx)

	users := make([]domain.PublicUser, 0)
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, unavailable("list users", err)
		}
		users = append(users, mu.toDomain().Public())
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.db.Client().Ping(ctx, nil); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
