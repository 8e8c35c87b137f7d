package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// DefaultLocateTimeout bounds the wait for a device position.
const DefaultLocateTimeout = 10 * time.Second

// Engine is the core wizard state machine.
// It holds no session data: every operation takes a State and returns a new one.
type Engine struct {
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	locator ports.Locator
	sink    ports.SubmissionSink
	catalog ports.CopyCatalog
	picker  domain.PickerOptions

	locateTimeout time.Duration
	highAccuracy  bool
	now           func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLocator sets the device geolocation provider used by FetchLocation.
func WithLocator(l ports.Locator) EngineOption {
	return func(e *Engine) {
		e.locator = l
	}
}

// WithSubmissionSink sets the receiver of completed records.
func WithSubmissionSink(s ports.SubmissionSink) EngineOption {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithCatalog sets the source of step copy used by Render.
func WithCatalog(c ports.CopyCatalog) EngineOption {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithPickerOptions overrides the choices offered by the manual location picker.
func WithPickerOptions(p domain.PickerOptions) EngineOption {
	return func(e *Engine) {
		e.picker = p
	}
}

// WithLocateTimeout bounds FetchLocation. Zero disables the bound.
func WithLocateTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.locateTimeout = d
	}
}

// WithHighAccuracy forwards the high-accuracy hint to the locator.
func WithHighAccuracy(enabled bool) EngineOption {
	return func(e *Engine) {
		e.highAccuracy = enabled
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:        logging.NewNop(),
		picker:        domain.DefaultPickerOptions(),
		locateTimeout: DefaultLocateTimeout,
		highAccuracy:  true,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates the initial state of a session and enters the first step.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	state := domain.NewState(sessionID)
	now := e.now()
	state.CreatedAt = now
	state.UpdatedAt = now

	e.logger.DebugContext(ctx, "session started", "session_id", sessionID)
	e.emitStepEnter(ctx, state)
	return state, nil
}

// Steps returns the steps of the transition table in order.
func (e *Engine) Steps() []domain.Step {
	return domain.AllSteps()
}

// Apply overwrites one field of the record. It is never blocked by validation
// and never changes the step.
func (e *Engine) Apply(ctx context.Context, state *domain.State, cmd domain.Command) (*domain.State, error) {
	if state == nil {
		return nil, fmt.Errorf("apply: %w", domain.ErrSessionNotFound)
	}
	if cmd == nil {
		return nil, fmt.Errorf("apply: nil command: %w", domain.ErrUnknownField)
	}

	next := domain.Reduce(state, cmd)
	next.UpdatedAt = e.now()

	// Switching away from the geolocation branch abandons the request in flight.
	if next.AtLocationNow != domain.PresenceYes && next.Locate.Pending {
		e.cancelLocate(ctx, next)
	}

	e.logger.DebugContext(ctx, "field updated",
		"session_id", state.SessionID,
		"field", cmd.Field(),
		"step", state.Step.String())
	return next, nil
}
