package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/internal/runtime"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/aretw0/spotlist/pkg/session"
)

// DefaultSessionID names the session of a runner without persistence.
const DefaultSessionID = "local"

var (
	// ErrInterrupted is returned when a signal or the parent context stops the loop.
	ErrInterrupted = errors.New("interrupted")
	// ErrIdleTimeout is returned when no input arrives within the idle timeout.
	ErrIdleTimeout = errors.New("idle timeout exceeded")
)

// Engine is the wizard surface the runner drives.
type Engine interface {
	ports.WizardEngine
	ConfirmManual(ctx context.Context, state *domain.State, addr domain.ManualAddress) (*domain.State, error)
}

// Runner handles the terminal loop of the wizard: render, read a line, apply, persist.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Renderer is applied to the default TextHandler only.
	Renderer ContentRenderer

	// Guard is consulted before Finish. Defaults to ConfirmSubmit, or AutoApprove when Headless.
	Guard SubmitGuard

	Logger *slog.Logger

	// Sessions makes the run durable. If nil, the session lives in memory only.
	Sessions  *session.Manager
	SessionID string

	Headless bool

	// IdleTimeout bounds the wait for each line. Zero waits forever.
	IdleTimeout time.Duration

	engine Engine
}

// NewRunner creates a Runner for engine.
func NewRunner(engine Engine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the terminal step, "quit", end of input or interruption.
// It returns the last state seen. End of input is not an error: the session can be resumed.
func (r *Runner) Run(ctx context.Context) (*domain.State, error) {
	if r.engine == nil {
		return nil, errors.New("runner: no engine configured")
	}

	handler := r.resolveHandler()
	guard := r.resolveGuard(handler)

	state, err := r.resolveInitialState(ctx)
	if err != nil {
		return nil, err
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		view, err := r.engine.Render(ctx, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}
		if err := handler.Output(ctx, view); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}
		if view.Terminal {
			return state, nil
		}

		line, err := r.read(signals, handler)
		if err != nil {
			return state, r.inputError(err, signals)
		}

		intent, err := ParseIntent(state, view, line)
		if err != nil {
			if err := handler.SystemOutput(ctx, err.Error()); err != nil {
				return state, err
			}
			continue
		}
		r.Logger.Debug("runner intent", "session_id", state.SessionID, "step", state.Step.String(), "kind", int(intent.Kind))

		switch intent.Kind {
		case IntentQuit:
			return state, nil
		case IntentHelp:
			if err := handler.SystemOutput(ctx, helpText); err != nil {
				return state, err
			}
			continue
		case IntentNext:
			if int(view.Step) == domain.DataSteps && view.CanNext {
				allowed, err := guard(signals.Context(), view)
				if err != nil {
					return state, r.inputError(err, signals)
				}
				if !allowed {
					if err := handler.SystemOutput(ctx, "Submission cancelled."); err != nil {
						return state, err
					}
					continue
				}
			}
		}

		next, feedback, err := r.step(ctx, state, intent)
		if err != nil {
			return state, err
		}
		state = next
		if feedback != "" {
			if err := handler.SystemOutput(ctx, feedback); err != nil {
				return state, err
			}
		}
	}
}

func (r *Runner) read(signals *SignalManager, handler IOHandler) (string, error) {
	ctx := signals.Context()
	if r.IdleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.IdleTimeout)
		defer cancel()
	}
	return handler.Input(ctx)
}

// inputError classifies a failed read. End of input ends the run cleanly.
func (r *Runner) inputError(err error, signals *SignalManager) error {
	if errors.Is(err, io.EOF) {
		signals.CheckRace()
		if signals.Interrupted() {
			return ErrInterrupted
		}
		return nil
	}
	if signals.Interrupted() {
		r.Logger.Debug("runner input: context cancelled", "err", err)
		return ErrInterrupted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrIdleTimeout
	}
	return fmt.Errorf("input error: %w", err)
}

// step applies intent and persists the result. Validation failures become feedback
// for the lister rather than errors.
func (r *Runner) step(ctx context.Context, state *domain.State, intent Intent) (*domain.State, string, error) {
	var feedback string
	next, err := r.commit(ctx, state, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		out, msg, err := r.transition(ctx, current, intent)
		feedback = msg
		return out, err
	})
	if err != nil {
		if isListerError(err) {
			return state, err.Error(), nil
		}
		return state, "", err
	}
	return next, feedback, nil
}

func (r *Runner) transition(ctx context.Context, s *domain.State, intent Intent) (*domain.State, string, error) {
	switch intent.Kind {
	case IntentSet:
		next, err := r.engine.Apply(ctx, s, intent.Command)
		return next, "", err
	case IntentNext:
		next, moved, err := r.engine.Next(ctx, s)
		if err != nil || moved {
			return next, "", err
		}
		return next, "Please complete: " + strings.Join(domain.MissingFields(s, s.Step), ", "), nil
	case IntentBack:
		next, moved, err := r.engine.Back(ctx, s)
		if err != nil || moved {
			return next, "", err
		}
		return next, "Already at the first step.", nil
	case IntentLocate:
		next, err := r.engine.FetchLocation(ctx, s)
		var locErr *runtime.LocateError
		if errors.As(err, &locErr) {
			r.Logger.Warn("locate failed", "session_id", s.SessionID, "err", locErr.Cause)
			return next, locErr.Message, nil
		}
		return next, "", err
	case IntentManual:
		next, err := r.engine.ConfirmManual(ctx, s, intent.Address)
		return next, "", err
	}
	return s, "", nil
}

func (r *Runner) commit(ctx context.Context, state *domain.State, fn session.UpdateFunc) (*domain.State, error) {
	if r.Sessions == nil || r.SessionID == "" {
		return fn(ctx, state)
	}
	_, after, err := r.Sessions.Update(ctx, r.SessionID, fn)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "step", after.Step.String())
	return after, nil
}

func isListerError(err error) bool {
	return errors.Is(err, domain.ErrInvalidValue) ||
		errors.Is(err, domain.ErrUnknownField) ||
		errors.Is(err, domain.ErrWrongBranch) ||
		errors.Is(err, domain.ErrStaleLocate) ||
		errors.Is(err, ErrUnrecognized)
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}

func (r *Runner) resolveGuard(h IOHandler) SubmitGuard {
	if r.Guard != nil {
		return r.Guard
	}
	if r.Headless {
		return AutoApprove()
	}
	return ConfirmSubmit(h)
}

func (r *Runner) resolveInitialState(ctx context.Context) (*domain.State, error) {
	if r.Sessions != nil && r.SessionID != "" {
		state, created, err := r.Sessions.LoadOrStart(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		if !created {
			r.Logger.Info("session resumed", "session_id", r.SessionID, "step", state.Step.String())
		}
		return state, nil
	}

	id := r.SessionID
	if id == "" {
		id = DefaultSessionID
	}
	state, err := r.engine.Start(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	return state, nil
}

const helpText = `Type the number of a choice, or a value, then "next".
  field=value    set any field (ownerType, otherOwnerType, atLocationNow, slots, contact, spaceType, otherSpaceType)
  locate         fetch the device location (when at the spot)
  manual a, b, c, d   search location: state, district, city, landmark
  back | next | quit`
