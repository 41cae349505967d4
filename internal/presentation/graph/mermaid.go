// Package graph renders the workflow phase machine as Mermaid flowchart
// syntax. The topology is fixed; it mirrors the transitions the engine
// actually performs, including the resume edges that cross a suspension.
package graph

import (
	"fmt"
	"strings"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Overlay marks run progress on the rendered machine.
type Overlay struct {
	Visited []domain.Phase
	Current domain.Phase
}

// edge is one transition of the phase machine. Resume edges fire on a human
// decision after a suspension and are drawn dotted.
type edge struct {
	from   domain.Phase
	to     domain.Phase
	label  string
	resume bool
}

var machineEdges = []edge{
	{from: domain.PhaseIdle, to: domain.PhaseClassifying, label: "utterance"},
	{from: domain.PhaseClassifying, to: domain.PhaseIdle, label: "unknown intent"},
	{from: domain.PhaseClassifying, to: domain.PhaseDiscovering, label: "discover / edit"},
	{from: domain.PhaseClassifying, to: domain.PhaseComparing, label: "view"},
	{from: domain.PhaseDiscovering, to: domain.PhaseEvaluating},
	{from: domain.PhaseDiscovering, to: domain.PhaseComparing, label: "edit"},
	{from: domain.PhaseDiscovering, to: domain.PhaseDone, label: "edit not actionable"},
	{from: domain.PhaseDiscovering, to: domain.PhaseErrorReported, label: "retries spent"},
	{from: domain.PhaseEvaluating, to: domain.PhaseComparing},
	{from: domain.PhaseEvaluating, to: domain.PhaseErrorReported, label: "retries spent"},
	{from: domain.PhaseComparing, to: domain.PhaseProposing},
	{from: domain.PhaseComparing, to: domain.PhaseDone, label: "no matching entry"},
	{from: domain.PhaseComparing, to: domain.PhaseErrorReported, label: "retries spent"},
	{from: domain.PhaseProposing, to: domain.PhaseAwaitingApproval, label: "needs approval"},
	{from: domain.PhaseProposing, to: domain.PhaseDone, label: "nothing to approve"},
	{from: domain.PhaseAwaitingApproval, to: domain.PhaseApplying, label: "approved", resume: true},
	{from: domain.PhaseAwaitingApproval, to: domain.PhaseDone, label: "rejected", resume: true},
	{from: domain.PhaseApplying, to: domain.PhaseDone},
	{from: domain.PhaseApplying, to: domain.PhaseErrorReported, label: "retries spent"},
	{from: domain.PhaseErrorReported, to: domain.PhaseDiscovering, label: "retry", resume: true},
	{from: domain.PhaseErrorReported, to: domain.PhaseComparing, label: "retry view", resume: true},
	{from: domain.PhaseErrorReported, to: domain.PhaseDone, label: "terminate", resume: true},
}

// GenerateMermaid produces the phase machine as a Mermaid flowchart.
// It applies semantic styling:
// - Idle/Done (rest states): ((Circle))
// - Collaborator-calling phases: [[Subroutine]]
// - Suspended phases (awaiting a decision): [/Parallelogram/]
// - Default: [Rectangle]
// Resume edges are dotted; step edges are solid. Overlay styles
// (Visited/Current) are applied if provided.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, phase := range domain.Phases() {
		safeID := sanitizeMermaidID(string(phase))
		opener, closer := shape(phase)
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, phase, closer))

		for _, e := range machineEdges {
			if e.from != phase {
				continue
			}
			safeTo := sanitizeMermaidID(string(e.to))

			arrow := "-->"
			if e.resume {
				arrow = "-.->"
			}
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", e.label)
				if e.resume {
					arrow = fmt.Sprintf("-. \"%s\" .->", e.label)
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, p := range overlay.Visited {
			safeID := sanitizeMermaidID(string(p))
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.Current != "" {
			safeCurrent := sanitizeMermaidID(string(overlay.Current))
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safeCurrent))
		}
	}

	return sb.String()
}

// shape picks the Mermaid node delimiters for a phase.
func shape(p domain.Phase) (string, string) {
	switch {
	case p == domain.PhaseIdle || p == domain.PhaseDone:
		return "((", "))"
	case p.Suspended():
		return "[/", "/]"
	case callsCollaborators(p):
		return "[[", "]]"
	default:
		return "[", "]"
	}
}

// callsCollaborators reports whether a phase invokes searchers, evaluators,
// or the list collaborator. These are the phases the retry budget guards.
func callsCollaborators(p domain.Phase) bool {
	switch p {
	case domain.PhaseDiscovering, domain.PhaseEvaluating, domain.PhaseComparing, domain.PhaseApplying:
		return true
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
