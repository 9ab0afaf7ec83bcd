package mongo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portalkit/portal/internal/core/domain"
)

type MessageRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	mu   sync.Mutex
	now  func() time.Time
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{db: db, coll: db.Collection(messagesCollection), now: time.Now}
}

type mongoMessage struct {
	ID        int64  `bson:"_id"`
	Filename  string `bson:"filename"`
	Content   string `bson:"content,omitempty"`
	CreatedBy string `bson:"created_by"`
	CreatedAt int64  `bson:"created_at"`
}

func (m mongoMessage) toDomain() domain.Message {
	return domain.Message{
		ID:        m.ID,
		Filename:  m.Filename,
		Content:   m.Content,
		CreatedBy: m.CreatedBy,
		CreatedAt: unixToTime(m.CreatedAt),
	}
}

func (r *MessageRepository) Insert(ctx context.Context, filename, content, createdBy string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := nextID(ctx, r.db, messagesCollection)
	if err != nil {
		return nil, unavailable("insert message", err)
	}
	doc := mongoMessage{
		ID:        id,
		Filename:  filename,
		Content:   content,
		CreatedBy: createdBy,
		CreatedAt: r.now().UTC().Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, unavailable("insert message", err)
	}
	m := doc.toDomain()
	return &m, nil
}

// Recent lists the newest messages without their content.
func (r *MessageRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"content": 0})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, unavailable("recent messages", err)
	}
	defer cur.Close(ctx)

	msgs := make([]domain.Message, 0)
	for cur.Next(ctx) {
		var m mongoMessage
		if err := cur.Decode(&m); err != nil {
			return nil, unavailable("recent messages", err)
		}
		msgs = append(msgs, m.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable("recent messages", err)
	}
	return msgs, nil
}
