package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/spotlist/internal/config"
	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/runner"
)

// NewLogger configures the application logger from cfg.
// Debug forces the debug level. Quiet hosts (JSON mode, MCP stdio) still log
// to Stderr so that Stdout stays machine-readable.
func NewLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithWriter(os.Stderr, level, logging.Format(cfg.LogFormat)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(w io.Writer, logger *slog.Logger, sessionID string, step domain.Step, loaded, quiet bool) {
	if loaded {
		logger.Info("session resumed", "session_id", sessionID, "step", step.String())
		if !quiet {
			printSystemMessage(w, "Resuming at '%s' step...", step)
		}
		return
	}
	logger.Info("session created", "session_id", sessionID)
	if !quiet {
		printSystemMessage(w, "Session '%s' active.", sessionID)
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

// handleExecutionError maps an interrupted run to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(w io.Writer, state *domain.State, err error, quiet bool) {
	if quiet || state == nil {
		return
	}
	switch {
	case err == nil && state.Step.Terminal():
		printSystemMessage(w, "Listing submitted.")
	case err == nil:
		printSystemMessage(w, "Saved at '%s' step. Run again to resume.", state.Step)
	case errors.Is(err, runner.ErrIdleTimeout):
		fmt.Fprintln(w)
		printSystemMessage(w, "Timed out at '%s' step.", state.Step)
	case isInterrupted(err):
		fmt.Fprintln(w, "[CTRL+C]")
		printSystemMessage(w, "Interrupted at '%s' step.", state.Step)
	}
}
