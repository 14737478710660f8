package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cablerun/internal/events"
	"cablerun/internal/platform/metrics"
	"cablerun/internal/wardroom"
)

// EventPersisterAdapter bridges the in-memory event log to the SQLite
// ledger. It satisfies events.EventPersister.
type EventPersisterAdapter struct {
	repo    EventRepository
	timeout time.Duration
}

func NewEventPersisterAdapter(repo EventRepository) *EventPersisterAdapter {
	return &EventPersisterAdapter{repo: repo, timeout: 5 * time.Second}
}

// Append serializes the event payload and writes through to the ledger.
func (a *EventPersisterAdapter) Append(event events.MissionEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	start := time.Now()
	err = a.repo.Append(ctx, StoredEvent{
		ID:         event.ID,
		Timestamp:  event.Timestamp,
		EventType:  string(event.Type),
		ActorID:    event.ActorID,
		TargetID:   event.TargetID,
		Payload:    string(payload),
		SimSeconds: event.SimSeconds,
	})
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

var _ events.EventPersister = (*EventPersisterAdapter)(nil)

// ThoughtStoreAdapter persists wardroom transcripts into log_entries. It
// satisfies wardroom.LogStore.
type ThoughtStoreAdapter struct {
	repo    LogRepository
	timeout time.Duration
}

func NewThoughtStoreAdapter(repo LogRepository) *ThoughtStoreAdapter {
	return &ThoughtStoreAdapter{repo: repo, timeout: 5 * time.Second}
}

// SaveThought stores one finished transcript.
func (a *ThoughtStoreAdapter) SaveThought(t wardroom.Thought) error {
	chain, err := json.Marshal(t.ChainOfThought)
	if err != nil {
		return fmt.Errorf("failed to marshal thought chain: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	return a.repo.Save(ctx, LogEntry{
		ID:          events.GenerateEventID(),
		MemberID:    t.MemberID,
		MemberName:  t.MemberName,
		MilestoneID: t.MilestoneID,
		Transcript:  t.Transcript,
		Chain:       string(chain),
		Provider:    t.Provider,
		CreatedAt:   t.At,
	})
}

var _ wardroom.LogStore = (*ThoughtStoreAdapter)(nil)
