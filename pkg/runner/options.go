package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/spotlist/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSessions configures durable sessions. It needs WithSessionID to take effect.
func WithSessions(m *session.Manager) Option {
	return func(r *Runner) {
		r.Sessions = m
	}
}

// WithSessionID sets the session to start or resume.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless sets the runner to headless mode (no submit confirmation).
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithRenderer configures the content renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithGuard configures the submit guard.
func WithGuard(guard SubmitGuard) Option {
	return func(r *Runner) {
		r.Guard = guard
	}
}

// WithIdleTimeout bounds the wait for each input line.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.IdleTimeout = d
	}
}
