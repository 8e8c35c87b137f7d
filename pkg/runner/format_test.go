package runner

import (
	"testing"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatView_MarksSelectedChoice(t *testing.T) {
	view := viewFor(domain.StepSpaceType)
	view.Number, view.Total, view.Progress = 4, 4, 1
	view.NextLabel = "Finish"
	view.CanBack = true
	view.ShowOtherInput = true
	view.Fields = map[string]any{
		domain.FieldSpaceType:      domain.SpaceOther,
		domain.FieldOtherSpaceType: "rooftop",
	}
	view.Missing = nil

	out := FormatView(view)
	assert.Contains(t, out, "**Step 4 of 4** `#################### 100%`")
	assert.Contains(t, out, "3. [x] **Other**")
	assert.Contains(t, out, "1. [ ] **Type-I**")
	assert.Contains(t, out, "Please specify: `rooftop`")
	assert.Contains(t, out, "`next` finish")
	assert.Contains(t, out, "`back`")
}

func TestFormatView_LocationFailure(t *testing.T) {
	view := viewFor(domain.StepLocationEntry)
	view.LocationBranch = domain.PresenceYes
	view.Locate = &domain.LocateStatus{Generation: 1, Error: domain.LocateFailureMessage}
	view.Missing = []string{domain.FieldLocation}

	out := FormatView(view)
	assert.Contains(t, out, "> "+domain.LocateFailureMessage)
	assert.Contains(t, out, "_Missing: location_")
	assert.Contains(t, out, "`locate` fetch")
}

func TestFormatView_Terminal(t *testing.T) {
	view := viewFor(domain.StepComplete)
	view.Terminal = true

	out := FormatView(view)
	assert.Contains(t, out, "# Submission Complete")
	assert.NotContains(t, out, "Step ")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "#####--------------- 25%", progressBar(0.25))
	assert.Equal(t, "-------------------- 0%", progressBar(0))
}
