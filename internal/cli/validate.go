package cli

import (
	"context"
	"errors"
	"fmt"

	loamAdapter "github.com/aretw0/spotlist/pkg/adapters/loam"
	"github.com/aretw0/spotlist/pkg/domain"
)

// Report summarises what a host built from the current configuration will use.
type Report struct {
	// Overrides lists the steps whose copy comes from the catalog directory.
	Overrides   []domain.Step
	SubmitHooks []string
	Locator     string
}

// Validate checks that every step has copy, that the catalog directory has no
// colliding or unknown documents and reports the configured hooks.
func Validate(ctx context.Context, app *App) (Report, error) {
	var (
		report Report
		errs   []error
	)

	catalog := app.Wizard.Catalog()
	for _, step := range app.Wizard.Steps() {
		sc, err := catalog.StepCopy(ctx, step)
		if err != nil {
			errs = append(errs, fmt.Errorf("step %s: %w", step, err))
			continue
		}
		if sc.Title == "" {
			errs = append(errs, fmt.Errorf("step %s: empty title", step))
		}
	}

	if lc, ok := catalog.(*loamAdapter.Catalog); ok {
		steps, err := lc.Overrides(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		report.Overrides = steps
	}

	for _, h := range app.Hooks.Submit {
		report.SubmitHooks = append(report.SubmitHooks, h.Name)
	}
	report.Locator = "environment"
	if app.Hooks.Locator != nil {
		report.Locator = app.Hooks.Locator.Command
	}

	return report, errors.Join(errs...)
}
