package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/spotlist/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	Visited []domain.Step
	Current domain.Step
	// Branch highlights the chosen location branch, if any.
	Branch domain.Presence
}

// OverlayFromState builds the overlay of a stored session.
func OverlayFromState(s *domain.State) *GraphOverlay {
	if s == nil {
		return nil
	}
	return &GraphOverlay{Visited: s.History, Current: s.Step, Branch: s.AtLocationNow}
}

const (
	fetchNode  = "location_fetch"
	searchNode = "location_search"
)

// GenerateMermaid produces a Mermaid flowchart of the step table.
// Shapes: the entry step is a circle, data steps are inputs [/.../] and the
// terminal step is a double circle. Forward edges carry the gate of the step
// they leave; back edges are dotted. The location step is drawn as a subgraph
// with its two branches.
func GenerateMermaid(steps []domain.Step, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range steps {
		id := step.String()
		switch {
		case step.Terminal():
			fmt.Fprintf(&sb, "    %s(((\"%s\")))\n", id, id)
		case step == steps[0]:
			fmt.Fprintf(&sb, "    %s((\"%s\"))\n", id, id)
		case step == domain.StepLocationEntry:
			fmt.Fprintf(&sb, "    subgraph %s_branch [\"%s\"]\n", id, id)
			fmt.Fprintf(&sb, "        %s[/\"%s\"/]\n", id, id)
			fmt.Fprintf(&sb, "        %s[[\"Fetch Location\"]]\n", fetchNode)
			fmt.Fprintf(&sb, "        %s[/\"Search Location\"/]\n", searchNode)
			fmt.Fprintf(&sb, "        %s -- \"yes\" --> %s\n", id, fetchNode)
			fmt.Fprintf(&sb, "        %s -- \"no\" --> %s\n", id, searchNode)
			sb.WriteString("    end\n")
		default:
			fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", id, id)
		}
	}

	for _, step := range steps {
		if next, ok := step.Next(); ok {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", step, GateLabel(step), next)
		}
		if prev, ok := step.Prev(); ok {
			fmt.Fprintf(&sb, "    %s -. back .-> %s\n", step, prev)
		}
	}

	if overlay != nil {
		writeOverlay(&sb, overlay)
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, overlay *GraphOverlay) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps the highlight readable on light and dark themes.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[domain.Step]bool)
	for _, step := range overlay.Visited {
		if !step.Valid() || seen[step] {
			continue
		}
		seen[step] = true
		fmt.Fprintf(sb, "    class %s visited;\n", step)
	}

	switch overlay.Branch {
	case domain.PresenceYes:
		fmt.Fprintf(sb, "    class %s visited;\n", fetchNode)
	case domain.PresenceNo:
		fmt.Fprintf(sb, "    class %s visited;\n", searchNode)
	}

	if overlay.Current.Valid() {
		fmt.Fprintf(sb, "    class %s current;\n", overlay.Current)
	}
}

// GateLabel describes what must hold to leave step forward.
func GateLabel(step domain.Step) string {
	switch step {
	case domain.StepOwnerType:
		return "ownerType set; otherOwnerType if other"
	case domain.StepLocationEntry:
		return "location address set"
	case domain.StepDetails:
		return "slots set; contact is 10 digits"
	case domain.StepSpaceType:
		return "spaceType set; otherSpaceType if other"
	}
	return ""
}
