package process

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// Sink hands every completed listing to the submit commands of a Runner.
// The full record is the JSON payload on stdin; the enum fields are also
// exported as variables so simple shell hooks need no JSON parser.
type Sink struct {
	runner *Runner
}

var _ ports.SubmissionSink = (*Sink)(nil)

// NewSink creates a sink over the commands of r.
func NewSink(r *Runner) *Sink {
	return &Sink{runner: r}
}

func (s *Sink) Submit(ctx context.Context, sub domain.Submission) error {
	rec := sub.Record
	args := map[string]any{
		"session_id":      sub.SessionID,
		"owner_type":      string(rec.OwnerType),
		"at_location_now": string(rec.AtLocationNow),
		"address":         rec.Location.Address,
		"slots":           string(rec.Slots),
		"space_type":      string(rec.SpaceType),
	}

	var errs []error
	for _, name := range s.runner.Names() {
		if _, err := s.runner.Run(ctx, name, sub, args); err != nil {
			errs = append(errs, fmt.Errorf("submit hook %w", err))
		}
	}
	return errors.Join(errs...)
}
