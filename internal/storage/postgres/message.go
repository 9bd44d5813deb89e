package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is a posted chat card.
type Message struct {
	ID      uuid.UUID
	Speaker string
	// UserID is the user the card was posted on behalf of.
	UserID  string
	Content string
	// Style is the card's CSS class, e.g. "flat-check-success".
	Style string
	// Whisper lists recipient user ids; empty means public.
	Whisper   []string
	Blind     bool
	CreatedAt time.Time
}

// MessageRepository provides chat message persistence operations.
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a MessageRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts m. A zero ID is replaced with a fresh random UUID.
//
// Precondition: m.Speaker and m.Content must be non-empty.
// Postcondition: Returns the stored Message with ID and CreatedAt set.
func (r *MessageRepository) Create(ctx context.Context, m Message) (Message, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	whisper := m.Whisper
	if whisper == nil {
		whisper = []string{}
	}

	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_messages (id, speaker, user_id, content, style, whisper, blind)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id::text, created_at`,
		m.ID.String(), m.Speaker, m.UserID, m.Content, m.Style, whisper, m.Blind,
	).Scan(&id, &m.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("inserting chat message: %w", err)
	}
	m.Whisper = whisper
	return m, nil
}

// ListRecent returns up to limit messages, newest first.
//
// Precondition: limit > 0.
func (r *MessageRepository) ListRecent(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0, got %d", limit)
	}
	rows, err := r.db.Query(ctx,
		`SELECT id::text, speaker, user_id, content, style, whisper, blind, created_at
		 FROM chat_messages
		 ORDER BY created_at DESC, id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m  Message
			id string
		)
		if err := rows.Scan(&id, &m.Speaker, &m.UserID, &m.Content, &m.Style, &m.Whisper, &m.Blind, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing chat message id %q: %w", id, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat messages: %w", err)
	}
	return out, nil
}
