package runner

import (
	"context"
	"strings"

	"github.com/aretw0/spotlist/pkg/domain"
)

// SubmitGuard is consulted before the Finish transition of the last data step.
// It returns false to keep the lister on the step.
type SubmitGuard func(ctx context.Context, view domain.View) (bool, error)

// MultiGuard chains multiple guards. The first refusal wins.
func MultiGuard(guards ...SubmitGuard) SubmitGuard {
	return func(ctx context.Context, view domain.View) (bool, error) {
		for _, guard := range guards {
			allowed, err := guard(ctx, view)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
		return true, nil
	}
}

// ConfirmSubmit asks the lister through handler before the listing is submitted.
// Only "y" or "yes" approves.
func ConfirmSubmit(handler IOHandler) SubmitGuard {
	return func(ctx context.Context, view domain.View) (bool, error) {
		if err := handler.SystemOutput(ctx, "Submit this listing? [y/N]"); err != nil {
			return false, err
		}

		input, err := handler.Input(ctx)
		if err != nil {
			return false, err
		}

		input = strings.TrimSpace(strings.ToLower(input))
		return input == "y" || input == "yes", nil
	}
}

// AutoApprove allows every submission. It is the headless default.
func AutoApprove() SubmitGuard {
	return func(ctx context.Context, view domain.View) (bool, error) {
		return true, nil
	}
}
