// Package wardroom generates crew narrative around mission milestones. It
// observes the event log, runs the support-sequence briefing through an LLM
// provider and writes the resulting transcripts back as CREW_LOG events.
package wardroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cablerun/internal/domain/crew"
	"cablerun/internal/engine"
	"cablerun/internal/events"
	"cablerun/internal/infra/ai"
	"cablerun/internal/platform/logger"
	"cablerun/internal/platform/metrics"
)

// StateProvider gives the wardroom read access to mission state without a
// dependency on the engine's internals.
type StateProvider interface {
	Snapshot() engine.Telemetry
	Roster() []*crew.Member
	Status() engine.Status
}

// LogStore persists finished thoughts. Optional.
type LogStore interface {
	SaveThought(Thought) error
}

// ThoughtContext is the flattened situation picture handed to the prompt
// builder and the fallback synthesizer.
type ThoughtContext struct {
	MemberID   string
	MemberName string
	TargetRole crew.Role
	Directive  string
	Alliances  []string

	RouteName string
	Cable     string

	MilestoneID          string
	MilestoneLabel       string
	MilestoneDescription string

	ElapsedMinutes  float64
	ProgressPercent float64
	HeadingLabel    string
	DriftLabel      string
	FuelLabel       string
	MetricsLabel    string
}

// Thought is one finished wardroom transcript.
type Thought struct {
	MemberID       string    `json:"member_id"`
	MemberName     string    `json:"member_name"`
	MilestoneID    string    `json:"milestone_id"`
	Transcript     string    `json:"transcript"`
	ChainOfThought []string  `json:"chain_of_thought"`
	Provider       string    `json:"provider"`
	At             time.Time `json:"at"`
}

// Mind polls the event log for milestone events and narrates them. It also
// produces a periodic heartbeat thought so long quiet stretches still get
// wardroom colour.
type Mind struct {
	state    StateProvider
	eventLog *events.EventLog
	provider ai.LLMProvider
	store    LogStore
	logger   *logger.Logger

	pollInterval   time.Duration
	heartbeatEvery time.Duration
	timeout        time.Duration

	cursor       int
	heartbeatIdx int
}

// NewMind wires the narrative loop. provider and store may be nil; without a
// provider every thought comes from the fallback synthesizer.
func NewMind(state StateProvider, eventLog *events.EventLog, provider ai.LLMProvider,
	store LogStore, log *logger.Logger, heartbeatEvery, timeout time.Duration) *Mind {
	return &Mind{
		state:          state,
		eventLog:       eventLog,
		provider:       provider,
		store:          store,
		logger:         log,
		pollInterval:   2 * time.Second,
		heartbeatEvery: heartbeatEvery,
		timeout:        timeout,
	}
}

// Run drives the poll and heartbeat loops until the context ends.
func (m *Mind) Run(ctx context.Context) {
	m.logger.Info("Wardroom watching the mission log (heartbeat every %s)", m.heartbeatEvery)
	poll := time.NewTicker(m.pollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(m.heartbeatEvery)
	defer heartbeat.Stop()

	// Skip history from before this mind woke up.
	_, m.cursor = m.eventLog.Since(0)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Wardroom stood down.")
			return
		case <-poll.C:
			m.drainEvents(ctx)
		case <-heartbeat.C:
			m.heartbeatThought(ctx)
		}
	}
}

// drainEvents narrates every milestone appended since the last poll.
func (m *Mind) drainEvents(ctx context.Context) {
	newEvents, cursor := m.eventLog.Since(m.cursor)
	m.cursor = cursor
	for _, ev := range newEvents {
		if ev.Type != events.EventTypeMilestoneReached {
			continue
		}
		payload, ok := ev.Payload.(engine.MilestonePayload)
		if !ok {
			m.logger.Warn("Milestone event %s carried an unexpected payload", ev.ID)
			continue
		}
		member := m.targetMember(payload.Milestone.Roles)
		if member == nil {
			continue
		}
		tc := m.buildContext(member, payload.Milestone.ID, payload.Milestone.Label,
			payload.Milestone.Description, payload.Telemetry)
		m.narrate(ctx, tc)
	}
}

// heartbeatThought gives a rotating roster member a routine watch entry
// while the mission is underway.
func (m *Mind) heartbeatThought(ctx context.Context) {
	if m.state.Status() != engine.StatusRunning {
		return
	}
	roster := m.state.Roster()
	if len(roster) == 0 {
		return
	}
	member := roster[m.heartbeatIdx%len(roster)]
	m.heartbeatIdx++

	snap := m.state.Snapshot()
	tc := m.buildContext(member, "steady-watch", "Steady Watch",
		"Routine watch turnover along the corridor.", snap)
	m.narrate(ctx, tc)
}

// buildContext flattens a telemetry snapshot into prompt-ready labels.
func (m *Mind) buildContext(member *crew.Member, milestoneID, label, description string,
	snap engine.Telemetry) ThoughtContext {
	tc := ThoughtContext{
		MemberID:             member.ID,
		MemberName:           member.Name,
		TargetRole:           member.Role,
		Directive:            member.Directive,
		Alliances:            append([]string(nil), member.Alliances...),
		RouteName:            snap.RouteName,
		Cable:                snap.Cable,
		MilestoneID:          milestoneID,
		MilestoneLabel:       label,
		MilestoneDescription: description,
		ElapsedMinutes:       snap.MissionMinutes,
		ProgressPercent:      snap.Progress * 100,
		HeadingLabel:         FormatHeading(snap.HeadingDeg),
		DriftLabel:           FormatDrift(snap.Drift),
		FuelLabel:            FormatFuel(snap.Fuel.ConsumedPercent),
	}
	for _, cs := range snap.Crew {
		if cs.ID != member.ID {
			continue
		}
		tc.MetricsLabel = fmt.Sprintf("%s, Stress %.0f%%, Fatigue %.0f%%",
			FormatEfficiency(cs.Metrics.Efficiency), cs.Metrics.Stress, cs.Metrics.Fatigue)
		break
	}
	return tc
}

// targetMember picks the spokesperson for a milestone: the first roster
// member holding one of the reacting roles, then the captain, then anyone.
func (m *Mind) targetMember(roles []crew.Role) *crew.Member {
	roster := m.state.Roster()
	if len(roster) == 0 {
		return nil
	}
	for _, member := range roster {
		for _, role := range roles {
			if member.Role == role {
				return member
			}
		}
	}
	for _, member := range roster {
		if member.Role == crew.RoleCaptain {
			return member
		}
	}
	return roster[0]
}

// narrate produces one thought, live if possible, and records it.
func (m *Mind) narrate(ctx context.Context, tc ThoughtContext) {
	thought := m.generate(ctx, tc)
	thought.At = time.Now()

	m.eventLog.Append(events.MissionEvent{
		Type:     events.EventTypeCrewLog,
		ActorID:  thought.MemberID,
		TargetID: thought.MilestoneID,
		Payload:  thought,
	})
	if m.store != nil {
		if err := m.store.SaveThought(thought); err != nil {
			m.logger.Error("Failed to persist wardroom thought: %v", err)
		}
	}
	m.logger.Event("CREW_LOG", thought.MemberID,
		fmt.Sprintf("%s briefing via %s", tc.MilestoneLabel, thought.Provider))
}

func (m *Mind) generate(ctx context.Context, tc ThoughtContext) Thought {
	if m.provider == nil || !m.provider.IsAvailable() {
		metrics.Get().RecordThought(true, 0, 0, 0)
		return SynthesizeFallback(tc)
	}
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conversation, tokens, latency, err := m.runSequence(callCtx, tc)
	if err != nil {
		m.logger.Warn("Live briefing failed, using fallback: %v", err)
		metrics.Get().RecordThought(true, 0, 0, 0)
		return SynthesizeFallback(tc)
	}
	metrics.Get().RecordThought(false, tokens, 0, latency)
	return buildThought(tc, conversation)
}

// runSequence walks the support sequence, each station seeing everything
// said before it. The targeted station always speaks last.
func (m *Mind) runSequence(ctx context.Context, tc ThoughtContext) ([]priorEntry, int, time.Duration, error) {
	var (
		conversation []priorEntry
		tokens       int
		latency      time.Duration
	)
	for _, role := range buildSequence(tc.TargetRole) {
		def := agentDefinitions[role]
		resp, err := m.provider.Complete(ctx, ai.CompletionRequest{
			Messages: []ai.Message{
				{Role: "system", Content: def.Instructions},
				{Role: "user", Content: composePrompt(role, tc, conversation)},
			},
			MaxTokens:   400,
			Temperature: 0.7,
		})
		if err != nil {
			return nil, 0, 0, fmt.Errorf("station %s: %w", role, err)
		}
		tokens += resp.TotalTokens
		latency += resp.Latency
		content := strings.TrimSpace(resp.Content)
		if content == "" {
			content = "No directive provided."
		}
		conversation = append(conversation, priorEntry{Role: role, Content: content})
	}
	return conversation, tokens, latency, nil
}

// buildThought splits a finished conversation into the spoken transcript
// (the final entry) and the supporting chain of thought.
func buildThought(tc ThoughtContext, conversation []priorEntry) Thought {
	if len(conversation) == 0 {
		return SynthesizeFallback(tc)
	}
	final := conversation[len(conversation)-1]
	var chain []string
	for _, entry := range conversation[:len(conversation)-1] {
		for _, raw := range strings.Split(entry.Content, "\n") {
			cleaned := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-•·"))
			if cleaned != "" {
				chain = append(chain, cleaned)
			}
		}
	}
	return Thought{
		MemberID:       tc.MemberID,
		MemberName:     tc.MemberName,
		MilestoneID:    tc.MilestoneID,
		Transcript:     final.Content,
		ChainOfThought: chain,
		Provider:       ProviderLive,
	}
}
