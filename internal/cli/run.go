package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	SessionID   string
	Headless    bool
	JSON        bool
	Fresh       bool
	Plain       bool
	IdleTimeout time.Duration

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// Execute handles the run command: optional reset, then one session.
func Execute(ctx context.Context, app *App, opts RunOptions) error {
	if opts.JSON && opts.Plain {
		return errors.New("--json and --plain cannot be used together")
	}
	if opts.SessionID == "" {
		opts.SessionID = runner.DefaultSessionID
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if app.Config.MaxInputSize > 0 {
		// Terminal handlers read the limit from the environment.
		if err := os.Setenv(runner.EnvMaxInputSize, strconv.Itoa(app.Config.MaxInputSize)); err != nil {
			return err
		}
	}

	if opts.Fresh {
		if err := ResetSession(ctx, app, opts.SessionID); err != nil {
			return err
		}
	}
	return RunSession(ctx, app, opts)
}

// ResetSession clears the stored progress of sessionID. A missing session is not an error.
func ResetSession(ctx context.Context, app *App, sessionID string) error {
	err := app.Sessions.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to reset session %q: %w", sessionID, err)
	}
	return nil
}
