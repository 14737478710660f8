package wardroom

import (
	"fmt"
	"strings"
)

// Provider tags recorded on every thought so the UI can show whether a
// transcript came from a live model or from the canned synthesizer.
const (
	ProviderLive     = "agents-backend"
	ProviderFallback = "fallback"
)

// SynthesizeFallback produces a deterministic briefing when no LLM backend
// is configured or a live call fails. The chain mirrors the support
// sequence in miniature.
func SynthesizeFallback(tc ThoughtContext) Thought {
	chain := []string{
		fmt.Sprintf("Navigator notes heading %s with %s.", tc.HeadingLabel, tc.DriftLabel),
		fmt.Sprintf("Intel confirms corridor risks near %s.", tc.MilestoneLabel),
		"Engineering keeps propulsion steady for cardinal adjustments.",
	}
	transcript := fmt.Sprintf(
		"%s: Maintain %s and hold the line through %s. Report if drift grows beyond safe margins.",
		tc.MemberName, strings.ToLower(tc.HeadingLabel), strings.ToLower(tc.MilestoneLabel))

	return Thought{
		MemberID:       tc.MemberID,
		MemberName:     tc.MemberName,
		MilestoneID:    tc.MilestoneID,
		Transcript:     transcript,
		ChainOfThought: chain,
		Provider:       ProviderFallback,
	}
}
