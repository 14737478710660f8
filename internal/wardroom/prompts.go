package wardroom

import (
	"fmt"
	"strings"

	"cablerun/internal/domain/crew"
)

// agentDefinition describes one wardroom voice: the persona instructions
// sent as the system message and the per-turn prompt template.
type agentDefinition struct {
	Role         crew.Role
	Name         string
	Instructions string
	Template     string
}

var agentDefinitions = map[crew.Role]agentDefinition{
	crew.RoleNavigator: {
		Role: crew.RoleNavigator,
		Name: "Navigation Watch Officer",
		Instructions: "You are the navigation liaison for a submarine threading subsea cable corridors." +
			" Emphasise headings, cardinal directions, depth bands, and cross-track drift when advising the bridge." +
			" Provide concise bullet points that describe how to steer relative to the plotted line.",
		Template: "Detail two bullet points covering helm adjustments and hazard avoidance using cardinal language." +
			" Finish with one sentence that issues a navigation recommendation.",
	},
	crew.RoleIntel: {
		Role: crew.RoleIntel,
		Name: "Intelligence Analyst",
		Instructions: "You fuse sensor, satellite, and maritime traffic intelligence." +
			" Speak to how contacts or hydrography influence safe headings in cardinal terms." +
			" Reference coordination with other teams.",
		Template: "Provide two short bullets describing the sensor picture and recommended observation arcs," +
			" then close with a sentence that briefs the bridge on monitoring priorities.",
	},
	crew.RoleEngineer: {
		Role: crew.RoleEngineer,
		Name: "Engineering Watch Supervisor",
		Instructions: "You monitor propulsion, ballast, and reactor loads." +
			" Note how engineering settings support the requested heading and drift corrections." +
			" Coordinate with navigation and operations for stability.",
		Template: "Share two bullets on machinery posture and ballast trim," +
			" followed by one sentence that confirms propulsion readiness for the specified course.",
	},
	crew.RoleOperations: {
		Role: crew.RoleOperations,
		Name: "Operations Coordinator",
		Instructions: "You synchronise crew rotations and readiness." +
			" Emphasise how communications with the bridge and engineering keep the vessel on the plotted line.",
		Template: "Produce two bullets highlighting crew coordination tied to the current heading and drift," +
			" and finish with a sentence assigning next check-in responsibilities.",
	},
	crew.RoleCaptain: {
		Role: crew.RoleCaptain,
		Name: "Commanding Officer",
		Instructions: "You arbitrate the final manoeuvre." +
			" Synthesize prior officer inputs and judge risk relative to the cardinal course.",
		Template: "Deliver two short assessments covering risk and mission priority," +
			" then issue a single-sentence command decision that names the heading to hold.",
	},
}

// buildSequence returns the briefing order: every supporting station first,
// the targeted station last.
func buildSequence(target crew.Role) []crew.Role {
	sequence := make([]crew.Role, 0, len(crew.SupportSequence)+1)
	for _, role := range crew.SupportSequence {
		if role != target {
			sequence = append(sequence, role)
		}
	}
	return append(sequence, target)
}

// priorEntry is one already-spoken contribution in the briefing chain.
type priorEntry struct {
	Role    crew.Role
	Content string
}

// composePrompt builds the user message for one station's turn.
func composePrompt(role crew.Role, tc ThoughtContext, prior []priorEntry) string {
	summary := []string{
		fmt.Sprintf("Mission: %s (%s).", tc.RouteName, tc.Cable),
		fmt.Sprintf("Milestone: %s. %s", tc.MilestoneLabel, tc.MilestoneDescription),
		fmt.Sprintf("Elapsed: %.1f min, progress %.0f%% complete", tc.ElapsedMinutes, tc.ProgressPercent),
		fmt.Sprintf("Heading %s with %s drift", tc.HeadingLabel, tc.DriftLabel),
	}
	if tc.FuelLabel != "" {
		summary = append(summary, "Fuel reserves "+tc.FuelLabel)
	}
	if tc.MetricsLabel != "" {
		summary = append(summary, tc.MetricsLabel)
	}
	if tc.Directive != "" {
		summary = append(summary, "Standing directive: "+tc.Directive)
	}
	if len(tc.Alliances) > 0 {
		summary = append(summary, "Coordinating with "+strings.Join(tc.Alliances, ", "))
	}

	var conversation string
	if len(prior) > 0 {
		var thread []string
		for _, entry := range prior {
			thread = append(thread, fmt.Sprintf("%s: %s", titled(entry.Role), entry.Content))
		}
		conversation = "\nPrior inputs:\n" + strings.Join(thread, "\n") + "\n"
	} else {
		conversation = "\nNo prior station inputs.\n"
	}

	template := "Summarise the situation in two bullet points and close with a directive sentence" +
		" that references the present heading."
	if def, ok := agentDefinitions[role]; ok {
		template = def.Template
	}
	if role == tc.TargetRole {
		template = fmt.Sprintf("Speak as %s (%s). ", tc.MemberName, tc.TargetRole) +
			"Provide two crisp bullets describing your reasoning and finish with a directive" +
			" sentence for the crew that cites the heading to steer."
	}

	return strings.Join(summary, "\n") + "\n" + conversation + "\n" + template
}

func titled(role crew.Role) string {
	s := string(role)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
