// Package events provides the append-only mission event log. Every state
// transition the engine makes is recorded here; the websocket hub, the
// wardroom narrative loop and the persistence layer all consume it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a mission event.
type EventType string

const (
	EventTypeTimeTick         EventType = "TIME_TICK"
	EventTypeMissionStarted   EventType = "MISSION_STARTED"
	EventTypeMissionPaused    EventType = "MISSION_PAUSED"
	EventTypeMissionResumed   EventType = "MISSION_RESUMED"
	EventTypeMissionRestarted EventType = "MISSION_RESTARTED"
	EventTypeMissionCompleted EventType = "MISSION_COMPLETED"
	EventTypeMissionFailed    EventType = "MISSION_FAILED"
	EventTypeTimeScaleSet     EventType = "TIME_SCALE_SET"
	EventTypeMilestoneReached EventType = "MILESTONE_REACHED"
	EventTypeHazardSpawned    EventType = "HAZARD_SPAWNED"
	EventTypeHazardBeat       EventType = "HAZARD_BEAT"
	EventTypeHazardResolved   EventType = "HAZARD_RESOLVED"
	EventTypeHazardCleared    EventType = "HAZARD_CLEARED"
	EventTypeCrewEdited       EventType = "CREW_EDITED"
	EventTypeCrewLog          EventType = "CREW_LOG"
)

// MissionEvent represents an immutable record of something that happened
// during a mission.
type MissionEvent struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Type       EventType   `json:"type"`
	ActorID    string      `json:"actor_id"`  // who caused it (SYSTEM_*, operator, crew id)
	TargetID   string      `json:"target_id"` // who was affected (optional)
	Payload    interface{} `json:"payload"`   // event-specific data
	SimSeconds float64     `json:"sim_seconds"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event MissionEvent) error
}

// EventLog is the in-memory append-only log of mission events with optional
// write-through persistence.
type EventLog struct {
	mu        sync.RWMutex
	events    []MissionEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]MissionEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event MissionEvent) {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to persistent storage off the caller's path.
		go func(e MissionEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []MissionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// Len returns the number of appended events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Since returns events appended after the given index alongside the new
// high-water mark. Pollers use it to page through the log.
func (el *EventLog) Since(index int) ([]MissionEvent, int) {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if index < 0 {
		index = 0
	}
	if index >= len(el.events) {
		return nil, len(el.events)
	}
	return el.events[index:], len(el.events)
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []MissionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []MissionEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
