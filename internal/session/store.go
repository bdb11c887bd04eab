// Package session persists per-guest conversation state in Redis, keyed by
// the channel identity of the guest (phone number or call ID).
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/grandpine/hotel-concierge/internal/booking"
)

// DefaultTTL matches the idle window after which an abandoned conversation
// is forgotten and the guest starts fresh.
const DefaultTTL = time.Hour

// Store reads and writes conversation state with a sliding TTL.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewStore creates a session store. A non-positive ttl falls back to
// DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("concierge.internal.session"),
	}
}

// Load returns the stored state for userID, or a fresh state when none
// exists. The bool reports whether an existing session was found.
func (s *Store) Load(ctx context.Context, userID string) (booking.State, bool, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return booking.NewState(), false, nil
	}
	if err != nil {
		span.RecordError(err)
		return booking.State{}, false, fmt.Errorf("session: failed to load state: %w", err)
	}

	var state booking.State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		// A corrupt record is unrecoverable; start the guest over rather
		// than wedging the conversation.
		return booking.NewState(), false, nil
	}
	return state, true, nil
}

// Save persists the state and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, userID string, state booking.State) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}

// Clear deletes the session, used by the reset command and the admin API.
func (s *Store) Clear(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to clear state: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return fmt.Sprintf("hotel_session:%s", userID)
}
