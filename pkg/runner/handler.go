package runner

import (
	"context"

	"github.com/aretw0/spotlist/pkg/domain"
)

// IOHandler defines the strategy for interacting with the lister.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the current step.
	Output(ctx context.Context, view domain.View) error

	// Input reads one line of response. It returns io.EOF when the source is exhausted
	// and ctx.Err() when the context ends first.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (validation feedback, locate failures).
	// This is distinct from step rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms markdown before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
