// Package transcript persists conversation transcripts to PostgreSQL for
// long-term history and auditing. The Redis session store remains the source
// of truth for live conversations; this store is write-behind and optional —
// a nil *Store is a no-op, so the service runs without a database.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store persists conversations and their messages.
type Store struct {
	db *sql.DB
}

// NewStore creates a transcript store. Returns nil when db is nil so callers
// can pass the result around without nil checks.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// MessageRecord is one persisted transcript entry.
type MessageRecord struct {
	ID             uuid.UUID
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// parseConversationID splits "channel:identity" (e.g. "whatsapp:+15551234567"
// or "voice:call-abc") into its parts.
func parseConversationID(conversationID string) (channel, identity string, ok bool) {
	parts := strings.SplitN(conversationID, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// EnsureConversation creates the conversation row if it does not exist and
// returns its UUID.
func (s *Store) EnsureConversation(ctx context.Context, conversationID string) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}

	channel, identity, ok := parseConversationID(conversationID)
	if !ok {
		return uuid.Nil, fmt.Errorf("transcript: invalid conversation_id format: %s", conversationID)
	}

	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE conversation_id = $1`,
		conversationID,
	).Scan(&existingID)

	if err == nil {
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("transcript: failed to check existing: %w", err)
	}

	newID := uuid.New()
	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (
			id, conversation_id, channel, guest_identity, started_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, newID, conversationID, channel, identity, now, now)
	if err != nil {
		// Another process may have raced the insert.
		if strings.Contains(err.Error(), "duplicate key") {
			return s.EnsureConversation(ctx, conversationID)
		}
		return uuid.Nil, fmt.Errorf("transcript: failed to create: %w", err)
	}
	return newID, nil
}

// AppendMessage persists one transcript entry.
func (s *Store) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	if s == nil || s.db == nil {
		return nil
	}

	if _, err := s.EnsureConversation(ctx, conversationID); err != nil {
		return err
	}

	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (
			id, conversation_id, role, content, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), conversationID, role, content, now)
	if err != nil {
		return fmt.Errorf("transcript: failed to insert message: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE conversation_id = $2`,
		now, conversationID,
	)
	if err != nil {
		return fmt.Errorf("transcript: failed to touch conversation: %w", err)
	}
	return nil
}

// MarkConfirmed records the booking outcome on the conversation row.
func (s *Store) MarkConfirmed(ctx context.Context, conversationID, confirmationNumber string) error {
	if s == nil || s.db == nil {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET
			confirmation_number = $1,
			confirmed_at = $2,
			updated_at = $2
		WHERE conversation_id = $3
	`, confirmationNumber, time.Now(), conversationID)
	if err != nil {
		return fmt.Errorf("transcript: failed to mark confirmed: %w", err)
	}
	return nil
}

// GetMessages returns the transcript for a conversation in chronological order.
func (s *Store) GetMessages(ctx context.Context, conversationID string) ([]MessageRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("transcript: failed to query messages: %w", err)
	}
	defer rows.Close()

	var records []MessageRecord
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &rec.Role, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("transcript: failed to scan message: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: failed to read messages: %w", err)
	}
	return records, nil
}
