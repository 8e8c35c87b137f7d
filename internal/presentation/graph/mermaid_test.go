package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/spotlist/internal/presentation/graph"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(domain.AllSteps(), nil)

	for _, want := range []string{
		"graph TD\n",
		`owner_type(("owner_type"))`,
		`details[/"details"/]`,
		`complete((("complete")))`,
		`subgraph location_branch ["location"]`,
		`location -- "yes" --> location_fetch`,
		`location -- "no" --> location_search`,
		`owner_type -- "ownerType set; otherOwnerType if other" --> location`,
		`space_type -- "spaceType set; otherSpaceType if other" --> complete`,
		`details -. back .-> location`,
	} {
		assert.Contains(t, got, want)
	}

	assert.NotContains(t, got, "complete -. back", "the terminal step has no way back")
	assert.NotContains(t, got, "classDef", "no overlay without a session")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	s := domain.NewState("g")
	s.History = []domain.Step{domain.StepOwnerType, domain.StepLocationEntry, domain.StepDetails, domain.StepLocationEntry}
	s.Step = domain.StepLocationEntry
	s.AtLocationNow = domain.PresenceNo

	got := graph.GenerateMermaid(domain.AllSteps(), graph.OverlayFromState(s))

	assert.Equal(t, 1, strings.Count(got, "class location visited;"), "visited steps are deduplicated")
	assert.Contains(t, got, "class details visited;")
	assert.Contains(t, got, "class location_search visited;")
	assert.NotContains(t, got, "class location_fetch visited;")
	assert.Contains(t, got, "class location current;")
}

func TestOverlayFromState_Nil(t *testing.T) {
	assert.Nil(t, graph.OverlayFromState(nil))
}

func TestGateLabel(t *testing.T) {
	assert.Empty(t, graph.GateLabel(domain.StepComplete))
	assert.NotEmpty(t, graph.GateLabel(domain.StepDetails))
}
