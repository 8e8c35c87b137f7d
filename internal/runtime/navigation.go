package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/spotlist/pkg/domain"
)

// Next advances to the following step when the gate of the current step holds.
// It is a no-op (moved=false, the input state returned as is) when the gate fails
// or the session is complete.
func (e *Engine) Next(ctx context.Context, state *domain.State) (*domain.State, bool, error) {
	if state == nil {
		return nil, false, fmt.Errorf("next: %w", domain.ErrSessionNotFound)
	}
	if state.Terminated() {
		return state, false, nil
	}

	if missing := domain.MissingFields(state, state.Step); len(missing) > 0 {
		e.logger.DebugContext(ctx, "step blocked",
			"session_id", state.SessionID,
			"step", state.Step.String(),
			"missing", missing)
		e.emitBlocked(ctx, state, missing)
		return state, false, nil
	}

	to, ok := state.Step.Next()
	if !ok {
		return state, false, nil
	}
	return e.transitionTo(ctx, state, to, domain.DirectionForward), true, nil
}

// Back retreats one step. It is a no-op on the first step and on the terminal step.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, bool, error) {
	if state == nil {
		return nil, false, fmt.Errorf("back: %w", domain.ErrSessionNotFound)
	}

	to, ok := state.Step.Prev()
	if !ok {
		return state, false, nil
	}
	return e.transitionTo(ctx, state, to, domain.DirectionBackward), true, nil
}

// transitionTo leaves the current step and enters the target one.
func (e *Engine) transitionTo(ctx context.Context, state *domain.State, to domain.Step, dir domain.Direction) *domain.State {
	e.emitStepLeave(ctx, state, dir)

	next := state.Snapshot()
	if state.Step == domain.StepLocationEntry && next.Locate.Pending {
		e.cancelLocate(ctx, next)
	}

	next.Step = to
	next.Direction = dir
	next.History = append(next.History, to)
	next.UpdatedAt = e.now()

	e.logger.InfoContext(ctx, "step changed",
		"session_id", next.SessionID,
		"from", state.Step.String(),
		"to", to.String(),
		"direction", string(dir))

	e.emitStepEnter(ctx, next)

	if to.Terminal() {
		e.submit(ctx, next)
	}
	return next
}

// submit assembles the record and hands it to the sink.
// Failures are logged; the session stays complete either way.
func (e *Engine) submit(ctx context.Context, state *domain.State) {
	record, err := domain.Assemble(state)
	if err != nil {
		e.logger.ErrorContext(ctx, "submission not assembled", "session_id", state.SessionID, "error", err)
		e.emitSubmit(ctx, state, true)
		return
	}

	if e.sink == nil {
		e.logger.InfoContext(ctx, "submission assembled without sink",
			"session_id", state.SessionID,
			"contact", domain.RedactContact(record.Contact))
		e.emitSubmit(ctx, state, false)
		return
	}

	err = e.sink.Submit(ctx, domain.Submission{
		SessionID:   state.SessionID,
		SubmittedAt: e.now(),
		Record:      record,
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "submission sink failed",
			"session_id", state.SessionID,
			"contact", domain.RedactContact(record.Contact),
			"error", err)
		e.emitSubmit(ctx, state, true)
		return
	}
	e.emitSubmit(ctx, state, false)
}

func (e *Engine) base(state *domain.State, t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: state.SessionID,
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: e.base(state, domain.EventStepEnter),
		Step:      state.Step,
		Direction: state.Direction,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, state *domain.State, dir domain.Direction) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: e.base(state, domain.EventStepLeave),
		Step:      state.Step,
		Direction: dir,
	})
}

func (e *Engine) emitBlocked(ctx context.Context, state *domain.State, missing []string) {
	if e.hooks.OnBlocked == nil {
		return
	}
	e.hooks.OnBlocked(ctx, &domain.StepEvent{
		EventBase: e.base(state, domain.EventBlocked),
		Step:      state.Step,
		Missing:   missing,
	})
}

func (e *Engine) emitSubmit(ctx context.Context, state *domain.State, isError bool) {
	if e.hooks.OnSubmit == nil {
		return
	}
	e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
		EventBase: e.base(state, domain.EventSubmit),
		OwnerType: state.OwnerType,
		Slots:     state.Slots,
		IsError:   isError,
	})
}
