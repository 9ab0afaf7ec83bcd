package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/portalkit/portal/internal/core/domain"
)

type MessageRepository struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

func (r *MessageRepository) Insert(ctx context.Context, filename, content, createdBy string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO xml_messages (filename, content, created_by, created_at) VALUES (?, ?, ?, ?)`,
		filename, content, createdBy, formatTime(now))
	if err != nil {
		return nil, unavailable("insert message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, unavailable("insert message", err)
	}
	return &domain.Message{
		ID:        id,
		Filename:  filename,
		Content:   content,
		CreatedBy: createdBy,
		CreatedAt: now,
	}, nil
}

// Recent lists the newest messages without their content.
func (r *MessageRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, created_by, created_at FROM xml_messages ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, unavailable("recent messages", err)
	}
	defer rows.Close()

	msgs := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m         domain.Message
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Filename, &m.CreatedBy, &createdAt); err != nil {
			return nil, unavailable("recent messages", err)
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("recent messages", err)
	}
	return msgs, nil
}
