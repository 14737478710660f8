// Package storage provides the persistence layer for the mission server.
// It implements the repository pattern so the domain packages never see
// database/sql directly.
package storage

import (
	"context"
	"time"
)

// StoredEvent mirrors the mission event structure for persistence.
type StoredEvent struct {
	ID         string    `json:"id" db:"id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	EventType  string    `json:"event_type" db:"event_type"`
	ActorID    string    `json:"actor_id" db:"actor_id"`
	TargetID   string    `json:"target_id" db:"target_id"`
	Payload    string    `json:"payload" db:"payload"` // JSON blob
	SimSeconds float64   `json:"sim_seconds" db:"sim_seconds"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event StoredEvent) error

	// GetAll retrieves the full history in append order.
	GetAll(ctx context.Context) ([]StoredEvent, error)

	// GetByActorID retrieves all events caused by one actor.
	GetByActorID(ctx context.Context, actorID string) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error)
}

// LogEntry is one persisted wardroom transcript.
type LogEntry struct {
	ID          string    `json:"id" db:"id"`
	MemberID    string    `json:"member_id" db:"member_id"`
	MemberName  string    `json:"member_name" db:"member_name"`
	MilestoneID string    `json:"milestone_id" db:"milestone_id"`
	Transcript  string    `json:"transcript" db:"transcript"`
	Chain       string    `json:"chain" db:"chain"` // JSON array of thought lines
	Provider    string    `json:"provider" db:"provider"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// LogRepository defines the interface for wardroom log persistence.
type LogRepository interface {
	// Save stores one finished transcript.
	Save(ctx context.Context, entry LogEntry) error

	// GetRecent retrieves the newest entries, most recent first.
	GetRecent(ctx context.Context, limit int) ([]LogEntry, error)

	// GetByMemberID retrieves all entries spoken by one crew member.
	GetByMemberID(ctx context.Context, memberID string) ([]LogEntry, error)
}
