package ports

import (
	"context"

	"github.com/aretw0/spotlist/pkg/domain"
)

// SubmissionSink receives the assembled record when a session completes.
type SubmissionSink interface {
	Submit(ctx context.Context, submission domain.Submission) error
}
