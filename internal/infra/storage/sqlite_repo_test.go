package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablerun/internal/events"
	"cablerun/internal/wardroom"
)

func testDB(t *testing.T) *SQLiteEventRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "mission.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEventRepository(db)
}

func TestEventRepositoryRoundTrip(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, typ := range []string{"MISSION_STARTED", "TIME_TICK", "TIME_TICK"} {
		require.NoError(t, repo.Append(ctx, StoredEvent{
			ID:         events.GenerateEventID(),
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			EventType:  typ,
			ActorID:    "OPERATOR",
			TargetID:   "biscay-crossing",
			Payload:    `{"progress":0}`,
			SimSeconds: float64(i),
		}))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "MISSION_STARTED", all[0].EventType)

	ticks, err := repo.GetByEventType(ctx, "TIME_TICK")
	require.NoError(t, err)
	assert.Len(t, ticks, 2)

	byActor, err := repo.GetByActorID(ctx, "OPERATOR")
	require.NoError(t, err)
	assert.Len(t, byActor, 3)
}

func TestEventPersisterAdapter(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "mission.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewSQLiteEventRepository(db)
	adapter := NewEventPersisterAdapter(repo)

	require.NoError(t, adapter.Append(events.MissionEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeHazardSpawned,
		ActorID:   "OPERATOR",
		TargetID:  "obstacle-1",
		Payload:   map[string]string{"label": "Snagged Fishing Gear"},
	}))

	stored, err := repo.GetByEventType(context.Background(), string(events.EventTypeHazardSpawned))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Contains(t, stored[0].Payload, "Snagged Fishing Gear")
}

func TestLogRepositoryAndThoughtAdapter(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "mission.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewSQLiteLogRepository(db)
	adapter := NewThoughtStoreAdapter(repo)

	require.NoError(t, adapter.SaveThought(wardroom.Thought{
		MemberID:       "navigator",
		MemberName:     "Ensign Vela",
		MilestoneID:    "shelf-break",
		Transcript:     "Hold 220 through the shelf break.",
		ChainOfThought: []string{"Intel reports clear lanes."},
		Provider:       wardroom.ProviderFallback,
		At:             time.Now(),
	}))

	recent, err := repo.GetRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "navigator", recent[0].MemberID)
	assert.Contains(t, recent[0].Chain, "clear lanes")

	byMember, err := repo.GetByMemberID(context.Background(), "navigator")
	require.NoError(t, err)
	assert.Len(t, byMember, 1)
}
