package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/spotlist/pkg/domain"
)

// ContactPrefix is the dialling prefix shown next to the contact input. It is
// never part of the stored number.
const ContactPrefix = "+91"

// Render calculates the presentation of the current step without transitioning.
func (e *Engine) Render(ctx context.Context, state *domain.State) (domain.View, error) {
	if state == nil {
		return domain.View{}, fmt.Errorf("render: %w", domain.ErrSessionNotFound)
	}

	stepCopy, err := e.stepCopy(ctx, state.Step)
	if err != nil {
		return domain.View{}, fmt.Errorf("rendering step %s: %w", state.Step, err)
	}

	_, canBack := state.Step.Prev()
	view := domain.View{
		SessionID: state.SessionID,
		Step:      state.Step,
		StepID:    state.Step.String(),
		Copy:      stepCopy,
		Number:    int(state.Step),
		Total:     domain.DataSteps,
		Progress:  progress(state.Step),
		CanBack:   canBack,
		Terminal:  state.Terminated(),
		Fields:    state.Fields(),
	}

	if !view.Terminal {
		view.Missing = domain.MissingFields(state, state.Step)
		view.CanNext = len(view.Missing) == 0
		view.NextLabel = "Next"
		if int(state.Step) == domain.DataSteps {
			view.NextLabel = "Finish"
		}
	}

	switch state.Step {
	case domain.StepOwnerType:
		view.ShowOtherInput = state.OwnerType == domain.OwnerOther
	case domain.StepLocationEntry:
		view.LocationBranch = state.AtLocationNow
		locate := state.Locate
		view.Locate = &locate
		if state.AtLocationNow == domain.PresenceNo {
			picker := e.picker
			view.Picker = &picker
		}
	case domain.StepDetails:
		view.ContactPrefix = ContactPrefix
	case domain.StepSpaceType:
		view.ShowOtherInput = state.SpaceType == domain.SpaceOther
	}

	return view, nil
}

func (e *Engine) stepCopy(ctx context.Context, step domain.Step) (domain.StepCopy, error) {
	if e.catalog == nil {
		return domain.StepCopy{Title: step.String()}, nil
	}
	return e.catalog.StepCopy(ctx, step)
}

func progress(step domain.Step) float64 {
	n := int(step)
	if n > domain.DataSteps {
		n = domain.DataSteps
	}
	return float64(n) / float64(domain.DataSteps)
}
