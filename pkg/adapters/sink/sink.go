// Package sink holds SubmissionSink implementations that hand completed
// records to the outside world.
package sink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// Log writes every submission as a structured log line.
// The contact number is masked.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log sink.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Submit(ctx context.Context, sub domain.Submission) error {
	rec := sub.Record
	attrs := []any{
		"session_id", sub.SessionID,
		"owner_type", string(rec.OwnerType),
		"at_location_now", string(rec.AtLocationNow),
		"address", rec.Location.Address,
		"slots", string(rec.Slots),
		"contact", domain.RedactContact(rec.Contact),
		"space_type", string(rec.SpaceType),
	}
	if rec.Location.Lat != nil && rec.Location.Lng != nil {
		attrs = append(attrs, "lat", *rec.Location.Lat, "lng", *rec.Location.Lng)
	}
	if rec.OtherOwnerType != nil {
		attrs = append(attrs, "other_owner_type", *rec.OtherOwnerType)
	}
	if rec.OtherSpaceType != nil {
		attrs = append(attrs, "other_space_type", *rec.OtherSpaceType)
	}
	l.logger.InfoContext(ctx, "listing submitted", attrs...)
	return nil
}

// Multi fans a submission out to every sink and joins their errors.
type Multi []ports.SubmissionSink

func (m Multi) Submit(ctx context.Context, sub domain.Submission) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Submit(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
