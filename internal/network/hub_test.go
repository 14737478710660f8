package network

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablerun/internal/domain/crew"
	"cablerun/internal/engine"
	"cablerun/internal/events"
	"cablerun/internal/platform/logger"
)

func newTestHub(t *testing.T) (*Hub, *engine.Engine, *events.EventLog) {
	t.Helper()
	log := logger.NewLogger()
	eventLog := events.NewEventLog(nil)
	eng := engine.NewEngine(engine.DefaultConfig(), crew.DefaultRoster(), eventLog, log,
		engine.NewSequenceRand(0.5))
	return NewHub(eng, log), eng, eventLog
}

func TestHubBroadcastsToRegisteredClients(t *testing.T) {
	hub, _, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient(hub, nil)
	hub.register <- client

	hub.BroadcastEvent(events.MissionEvent{
		ID:      "ev-1",
		Type:    events.EventTypeTimeTick,
		ActorID: "SYSTEM_CLOCK",
	})

	select {
	case raw := <-client.send:
		var ev events.MissionEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, events.EventTypeTimeTick, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestEventPollerForwardsLogEntries(t *testing.T) {
	hub, eng, eventLog := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	client := NewClient(hub, nil)
	hub.register <- client

	require.NoError(t, eng.StartMission("biscay-crossing"))

	select {
	case raw := <-client.send:
		var ev events.MissionEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, events.EventTypeMissionStarted, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never forwarded the start event")
	}
}

func TestOperatorActionsDriveEngine(t *testing.T) {
	hub, eng, _ := newTestHub(t)
	client := NewClient(hub, nil)

	client.handleOperatorAction(OperatorAction{
		Type:    "START_MISSION",
		Payload: json.RawMessage(`{"route_id":"biscay-crossing"}`),
	})
	assert.Equal(t, engine.StatusRunning, eng.Status())

	client.handleOperatorAction(OperatorAction{
		Type:    "SET_TIME_SCALE",
		Payload: json.RawMessage(`{"time_scale":4}`),
	})
	assert.Equal(t, 4.0, eng.Snapshot().TimeScale)

	client.handleOperatorAction(OperatorAction{Type: "PAUSE"})
	assert.Equal(t, engine.StatusPaused, eng.Status())
	client.handleOperatorAction(OperatorAction{Type: "RESUME"})
	assert.Equal(t, engine.StatusRunning, eng.Status())

	client.handleOperatorAction(OperatorAction{
		Type:    "SPAWN_HAZARD",
		Payload: json.RawMessage(`{"hazard_type":"surface_ship"}`),
	})
	assert.Len(t, eng.Snapshot().Obstacles, 1)

	client.handleOperatorAction(OperatorAction{
		Type:    "EDIT_DIRECTIVE",
		Payload: json.RawMessage(`{"member_id":"navigator","directive":"Hug the southern wall."}`),
	})
	found := false
	for _, cs := range eng.Snapshot().Crew {
		if cs.ID == "navigator" {
			found = true
			assert.Equal(t, "Hug the southern wall.", cs.Directive)
		}
	}
	assert.True(t, found)

	// Rejected commands surface an error result instead of panicking.
	client.handleOperatorAction(OperatorAction{
		Type:    "SET_UNITS",
		Payload: json.RawMessage(`{"member_id":"engineer","units":5}`),
	})
	var last ActionResult
	for len(client.send) > 0 {
		require.NoError(t, json.Unmarshal(<-client.send, &last))
	}
	assert.Equal(t, "SET_UNITS", last.Action)
	assert.False(t, last.OK)
	assert.NotEmpty(t, last.Error)
}
