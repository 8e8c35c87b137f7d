package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// LocateError reports a failed device geolocation request.
// The state returned alongside it is valid and records Message for display.
type LocateError struct {
	Generation uint64
	Message    string
	Cause      error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("locate #%d failed: %v", e.Generation, e.Cause)
}

func (e *LocateError) Unwrap() error {
	return e.Cause
}

// BeginLocate opens a new geolocation request on the "at the spot" branch.
// Any earlier request becomes stale. The returned generation identifies the
// request in ResolveLocate.
func (e *Engine) BeginLocate(ctx context.Context, state *domain.State) (*domain.State, uint64, error) {
	if state == nil {
		return nil, 0, fmt.Errorf("begin locate: %w", domain.ErrSessionNotFound)
	}
	if state.Step != domain.StepLocationEntry {
		return nil, 0, fmt.Errorf("begin locate on step %s: %w", state.Step, domain.ErrWrongBranch)
	}
	if state.AtLocationNow != domain.PresenceYes {
		return nil, 0, fmt.Errorf("begin locate with at_location_now=%q: %w", state.AtLocationNow, domain.ErrWrongBranch)
	}

	next := state.Snapshot()
	next.Locate = domain.LocateStatus{
		Generation: state.Locate.Generation + 1,
		Pending:    true,
	}
	next.UpdatedAt = e.now()

	e.logger.DebugContext(ctx, "locate started", "session_id", next.SessionID, "generation", next.Locate.Generation)
	e.emitLocate(ctx, next, next.Locate.Generation, domain.LocateStarted, 0)
	return next, next.Locate.Generation, nil
}

// ResolveLocate applies the outcome of the request identified by generation.
// A nil pos or a non-nil cause is a failure: the location is left untouched
// and the retryable message is recorded. Results for any generation other than
// the pending one are discarded with ErrStaleLocate.
func (e *Engine) ResolveLocate(ctx context.Context, state *domain.State, generation uint64, pos *domain.Position, cause error) (*domain.State, error) {
	return e.resolveLocate(ctx, state, generation, pos, cause, 0)
}

func (e *Engine) resolveLocate(ctx context.Context, state *domain.State, generation uint64, pos *domain.Position, cause error, took time.Duration) (*domain.State, error) {
	if state == nil {
		return nil, fmt.Errorf("resolve locate: %w", domain.ErrSessionNotFound)
	}
	if generation != state.Locate.Generation || !state.Locate.Pending {
		e.logger.DebugContext(ctx, "stale locate result discarded",
			"session_id", state.SessionID,
			"generation", generation,
			"current", state.Locate.Generation)
		e.emitLocate(ctx, state, generation, domain.LocateStale, took)
		return nil, fmt.Errorf("generation %d (current %d): %w", generation, state.Locate.Generation, domain.ErrStaleLocate)
	}

	next := state.Snapshot()
	next.Locate.Pending = false
	next.UpdatedAt = e.now()

	if cause != nil || pos == nil {
		if cause == nil {
			cause = domain.ErrLocateUnavailable
		}
		next.Locate.Error = domain.LocateFailureMessage
		e.logger.WarnContext(ctx, "locate failed", "session_id", next.SessionID, "generation", generation, "error", cause)
		e.emitLocate(ctx, next, generation, domain.LocateFailed, took)
		return next, nil
	}

	next.Locate.Error = ""
	next.Location = pos.CurrentLocation()
	e.emitLocate(ctx, next, generation, domain.LocateResolved, took)
	return next, nil
}

// FetchLocation runs a complete geolocation request against the configured locator,
// bounded by the locate timeout. On failure it returns the updated state together
// with a *LocateError.
func (e *Engine) FetchLocation(ctx context.Context, state *domain.State) (*domain.State, error) {
	pending, generation, err := e.BeginLocate(ctx, state)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pos, cause := e.locate(ctx)
	took := time.Since(start)

	var posPtr *domain.Position
	if cause == nil {
		posPtr = &pos
	}

	next, err := e.resolveLocate(ctx, pending, generation, posPtr, cause, took)
	if err != nil {
		return nil, err
	}
	if cause != nil {
		return next, &LocateError{Generation: generation, Message: next.Locate.Error, Cause: cause}
	}
	return next, nil
}

func (e *Engine) locate(ctx context.Context) (domain.Position, error) {
	if e.locator == nil {
		return domain.Position{}, domain.ErrLocateUnavailable
	}

	if e.locateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.locateTimeout)
		defer cancel()
	}

	pos, err := e.locator.Locate(ctx, ports.LocateOptions{
		Timeout:      e.locateTimeout,
		HighAccuracy: e.highAccuracy,
	})
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return pos, err
}

// ConfirmLocation records the address chosen in the manual picker.
// Only the address changes; coordinates and the step are left as they are.
func (e *Engine) ConfirmLocation(ctx context.Context, state *domain.State, address string) (*domain.State, error) {
	if state == nil {
		return nil, fmt.Errorf("confirm location: %w", domain.ErrSessionNotFound)
	}

	next := state.Snapshot()
	next.Location.Address = address
	next.UpdatedAt = e.now()

	e.logger.DebugContext(ctx, "location confirmed", "session_id", next.SessionID)
	return next, nil
}

// ConfirmManual composes the picker selection and confirms it.
func (e *Engine) ConfirmManual(ctx context.Context, state *domain.State, addr domain.ManualAddress) (*domain.State, error) {
	return e.ConfirmLocation(ctx, state, addr.Compose())
}

// cancelLocate invalidates the pending request of next in place.
func (e *Engine) cancelLocate(ctx context.Context, next *domain.State) {
	cancelled := next.Locate.Generation
	next.Locate.Generation++
	next.Locate.Pending = false
	e.logger.DebugContext(ctx, "locate cancelled", "session_id", next.SessionID, "generation", cancelled)
	e.emitLocate(ctx, next, cancelled, domain.LocateCancelled, 0)
}

func (e *Engine) emitLocate(ctx context.Context, state *domain.State, generation uint64, outcome domain.LocateOutcome, took time.Duration) {
	if e.hooks.OnLocate == nil {
		return
	}
	e.hooks.OnLocate(ctx, &domain.LocateEvent{
		EventBase:  e.base(state, domain.EventLocate),
		Generation: generation,
		Outcome:    outcome,
		Duration:   took,
	})
}
