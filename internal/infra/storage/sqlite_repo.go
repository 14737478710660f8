package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	query := `
		INSERT INTO events (id, timestamp, event_type, actor_id, target_id, payload, sim_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.EventType, event.ActorID,
		event.TargetID, event.Payload, event.SimSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EventType, &e.ActorID,
			&e.TargetID, &e.Payload, &e.SimSeconds); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

const eventColumns = `id, timestamp, event_type, actor_id, target_id, payload, sim_seconds`

func (r *SQLiteEventRepository) GetAll(ctx context.Context) ([]StoredEvent, error) {
	return r.getMany(ctx, `SELECT `+eventColumns+` FROM events ORDER BY timestamp ASC`)
}

func (r *SQLiteEventRepository) GetByActorID(ctx context.Context, actorID string) ([]StoredEvent, error) {
	return r.getMany(ctx, `SELECT `+eventColumns+` FROM events WHERE actor_id = ? ORDER BY timestamp ASC`, actorID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error) {
	return r.getMany(ctx, `SELECT `+eventColumns+` FROM events WHERE event_type = ? ORDER BY timestamp ASC`, eventType)
}

var _ EventRepository = (*SQLiteEventRepository)(nil)

// SQLiteLogRepository implements LogRepository for SQLite.
type SQLiteLogRepository struct {
	db *sql.DB
}

func NewSQLiteLogRepository(db *sql.DB) *SQLiteLogRepository {
	return &SQLiteLogRepository{db: db}
}

func (r *SQLiteLogRepository) Save(ctx context.Context, entry LogEntry) error {
	query := `
		INSERT INTO log_entries (id, member_id, member_name, milestone_id, transcript, chain, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.MemberID, entry.MemberName, entry.MilestoneID,
		entry.Transcript, entry.Chain, entry.Provider, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save log entry: %w", err)
	}
	return nil
}

const logColumns = `id, member_id, member_name, milestone_id, transcript, chain, provider, created_at`

func (r *SQLiteLogRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.MemberName, &e.MilestoneID,
			&e.Transcript, &e.Chain, &e.Provider, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *SQLiteLogRepository) GetRecent(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.getMany(ctx, `SELECT `+logColumns+` FROM log_entries ORDER BY created_at DESC LIMIT ?`, limit)
}

func (r *SQLiteLogRepository) GetByMemberID(ctx context.Context, memberID string) ([]LogEntry, error) {
	return r.getMany(ctx, `SELECT `+logColumns+` FROM log_entries WHERE member_id = ? ORDER BY created_at ASC`, memberID)
}

var _ LogRepository = (*SQLiteLogRepository)(nil)
