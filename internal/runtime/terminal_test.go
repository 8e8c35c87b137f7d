package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/internal/runtime"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readyToFinish returns a session on the last data step with every gate satisfied.
func readyToFinish(t *testing.T, engine *runtime.Engine) *domain.State {
	t.Helper()
	s, err := engine.Start(context.Background(), "fin")
	require.NoError(t, err)
	s = apply(t, engine, s,
		domain.SetOwnerType{Value: domain.OwnerOther},
		domain.SetOtherOwnerType{Value: "barn"},
		domain.SetAtLocationNow{Value: domain.PresenceNo},
		domain.SetSlots{Value: domain.SlotsUpTo20},
		domain.SetContact{Value: "9876543210"},
		domain.SetSpaceType{Value: domain.SpaceOther},
		domain.SetOtherSpaceType{Value: "rooftop"},
	)
	s = mustNext(t, engine, s)
	s, err = engine.ConfirmManual(context.Background(), s, domain.ManualAddress{State: "Karnataka"})
	require.NoError(t, err)
	s = mustNext(t, engine, s)
	s = mustNext(t, engine, s)
	require.Equal(t, domain.StepSpaceType, s.Step)
	return s
}

func TestTerminal_SubmitsOtherFields(t *testing.T) {
	sink := &recordingSink{}
	engine := runtime.NewEngine(runtime.WithSubmissionSink(sink))

	done := mustNext(t, engine, readyToFinish(t, engine))
	require.True(t, done.Terminated())

	require.Len(t, sink.submissions, 1)
	rec := sink.submissions[0].Record
	require.NotNil(t, rec.OtherOwnerType)
	assert.Equal(t, "barn", *rec.OtherOwnerType)
	require.NotNil(t, rec.OtherSpaceType)
	assert.Equal(t, "rooftop", *rec.OtherSpaceType)
	assert.Equal(t, "Karnataka", rec.Location.Address)
	assert.Nil(t, rec.Location.Lat, "manual entry never yields coordinates")
}

func TestTerminal_SinkErrorIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	sink := &recordingSink{err: errors.New("queue full")}
	engine := runtime.NewEngine(
		runtime.WithSubmissionSink(sink),
		runtime.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatText)),
	)

	done, moved, err := engine.Next(context.Background(), readyToFinish(t, engine))
	require.NoError(t, err)
	assert.True(t, moved)
	assert.True(t, done.Terminated())

	out := buf.String()
	assert.Contains(t, out, "submission sink failed")
	assert.Contains(t, out, "err=\"queue full\"")
	assert.NotContains(t, out, "9876543210", "contact is masked in logs")
}

func TestTerminal_NoSink(t *testing.T) {
	engine := runtime.NewEngine()

	done := mustNext(t, engine, readyToFinish(t, engine))
	assert.True(t, done.Terminated())
}

func TestTerminal_ApplyStillAllowed(t *testing.T) {
	engine := runtime.NewEngine()
	done := mustNext(t, engine, readyToFinish(t, engine))

	edited := apply(t, engine, done, domain.SetContact{Value: "1111111111"})
	assert.Equal(t, domain.StepComplete, edited.Step)
	assert.Equal(t, "1111111111", edited.Contact)
}
