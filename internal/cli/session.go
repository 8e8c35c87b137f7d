package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aretw0/spotlist/internal/presentation/tui"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/runner"
)

// RunSession drives one terminal session of the wizard until it is submitted,
// the lister quits or input ends. Progress is saved after every accepted turn.
func RunSession(ctx context.Context, app *App, opts RunOptions) error {
	quiet := opts.JSON || opts.Headless
	interactive := !quiet && runner.IsTerminal(opts.Stdin)

	if !quiet {
		tui.PrintBanner(opts.Stdout)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	existing, err := app.Sessions.Load(ctx, opts.SessionID)
	switch {
	case err == nil:
		logSessionStatus(opts.Stdout, app.Logger, opts.SessionID, existing.Step, true, quiet)
	case errors.Is(err, domain.ErrSessionNotFound):
		logSessionStatus(opts.Stdout, app.Logger, opts.SessionID, domain.StepOwnerType, false, quiet)
	default:
		return fmt.Errorf("failed to init session: %w", err)
	}

	r := runner.NewRunner(app.Wizard, createRunnerOptions(app, opts, interactive)...)
	final, runErr := r.Run(ctx)

	logCompletion(opts.Stdout, final, runErr, quiet)
	return handleExecutionError(runErr)
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(app *App, opts RunOptions, interactive bool) []runner.Option {
	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithHeadless(opts.Headless),
		runner.WithSessions(app.Sessions),
		runner.WithSessionID(opts.SessionID),
		runner.WithIdleTimeout(opts.IdleTimeout),
	}

	switch {
	case opts.JSON:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(opts.Stdin, opts.Stdout)))
	default:
		var render runner.ContentRenderer
		if !opts.Headless {
			render = tui.NewPlainRenderer(tui.DefaultWordWrap)
			if interactive && !opts.Plain {
				render = tui.NewRenderer(tui.DefaultWordWrap)
			}
		}
		handler := runner.NewTextHandler(opts.Stdin, opts.Stdout,
			runner.WithTextHandlerRenderer(render),
			runner.WithInteractive(interactive),
		)
		runnerOpts = append(runnerOpts, runner.WithInputHandler(handler))
	}
	return runnerOpts
}
