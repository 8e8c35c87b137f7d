package ports

import (
	"context"

	"github.com/aretw0/spotlist/pkg/domain"
)

// CopyCatalog resolves the user-facing text of each step.
type CopyCatalog interface {
	StepCopy(ctx context.Context, step domain.Step) (domain.StepCopy, error)
}
