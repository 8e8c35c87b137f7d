package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/spotlist/internal/runtime"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// atLocationStep returns a session on the location step with the given branch selected.
func atLocationStep(t *testing.T, engine *runtime.Engine, branch domain.Presence) *domain.State {
	t.Helper()
	s, err := engine.Start(context.Background(), "loc")
	require.NoError(t, err)
	s = apply(t, engine, s, domain.SetOwnerType{Value: domain.OwnerLand})
	s = mustNext(t, engine, s)
	return apply(t, engine, s, domain.SetAtLocationNow{Value: branch})
}

func TestFetchLocation_Success(t *testing.T) {
	var got ports.LocateOptions
	locator := ports.LocatorFunc(func(ctx context.Context, opts ports.LocateOptions) (domain.Position, error) {
		got = opts
		return domain.Position{Lat: 18.5204, Lng: 73.8567}, nil
	})
	engine := runtime.NewEngine(runtime.WithLocator(locator))
	s := atLocationStep(t, engine, domain.PresenceYes)

	next, err := engine.FetchLocation(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "Current Location (18.5204, 73.8567)", next.Location.Address)
	require.True(t, next.Location.HasCoordinates())
	assert.Equal(t, 18.5204, *next.Location.Lat)
	assert.Equal(t, 73.8567, *next.Location.Lng)
	assert.False(t, next.Locate.Pending)
	assert.Empty(t, next.Locate.Error)
	assert.Equal(t, uint64(1), next.Locate.Generation)

	assert.True(t, got.HighAccuracy)
	assert.Equal(t, runtime.DefaultLocateTimeout, got.Timeout)

	assert.True(t, domain.IsStepValid(next, domain.StepLocationEntry))
}

func TestFetchLocation_FailureKeepsLocation(t *testing.T) {
	engine := runtime.NewEngine(runtime.WithLocator(failingLocator(errDenied)))
	s := atLocationStep(t, engine, domain.PresenceYes)

	next, err := engine.FetchLocation(context.Background(), s)

	var locErr *runtime.LocateError
	require.ErrorAs(t, err, &locErr)
	assert.ErrorIs(t, err, errDenied)
	assert.Equal(t, domain.LocateFailureMessage, locErr.Message)

	require.NotNil(t, next, "a failed fetch still yields the new state")
	assert.Equal(t, "Could not fetch location. Please grant permission or try again.", next.Locate.Error)
	assert.Empty(t, next.Location.Address)
	assert.False(t, next.Location.HasCoordinates())
	assert.False(t, next.Locate.Pending)

	_, moved, _ := engine.Next(context.Background(), next)
	assert.False(t, moved, "no address, no progress")
}

func TestFetchLocation_RetryClearsError(t *testing.T) {
	calls := 0
	locator := ports.LocatorFunc(func(ctx context.Context, opts ports.LocateOptions) (domain.Position, error) {
		calls++
		if calls == 1 {
			return domain.Position{}, errDenied
		}
		return domain.Position{Lat: 1, Lng: 2}, nil
	})
	engine := runtime.NewEngine(runtime.WithLocator(locator))
	s := atLocationStep(t, engine, domain.PresenceYes)

	s, err := engine.FetchLocation(context.Background(), s)
	require.Error(t, err)
	require.NotEmpty(t, s.Locate.Error)

	s, err = engine.FetchLocation(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, s.Locate.Error)
	assert.Equal(t, "Current Location (1.0000, 2.0000)", s.Location.Address)
	assert.Equal(t, 2, calls, "no automatic retry")
}

func TestFetchLocation_Timeout(t *testing.T) {
	engine := runtime.NewEngine(
		runtime.WithLocator(blockingLocator()),
		runtime.WithLocateTimeout(20*time.Millisecond),
	)
	s := atLocationStep(t, engine, domain.PresenceYes)

	next, err := engine.FetchLocation(context.Background(), s)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, next)
	assert.Equal(t, domain.LocateFailureMessage, next.Locate.Error)
}

func TestFetchLocation_NoLocator(t *testing.T) {
	engine := runtime.NewEngine()
	s := atLocationStep(t, engine, domain.PresenceYes)

	next, err := engine.FetchLocation(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrLocateUnavailable)
	require.NotNil(t, next)
	assert.Equal(t, domain.LocateFailureMessage, next.Locate.Error)
}

func TestFetchLocation_WrongBranch(t *testing.T) {
	engine := runtime.NewEngine(runtime.WithLocator(staticLocator(domain.Position{})))

	s := atLocationStep(t, engine, domain.PresenceNo)
	_, err := engine.FetchLocation(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrWrongBranch)

	first, _ := engine.Start(context.Background(), "s")
	first = apply(t, engine, first, domain.SetAtLocationNow{Value: domain.PresenceYes})
	_, err = engine.FetchLocation(context.Background(), first)
	assert.ErrorIs(t, err, domain.ErrWrongBranch, "only available on the location step")
}

func TestResolveLocate_StaleGenerationDiscarded(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()
	s := atLocationStep(t, engine, domain.PresenceYes)

	// Two requests race; only the latest may land.
	s, first, err := engine.BeginLocate(ctx, s)
	require.NoError(t, err)
	s, second, err := engine.BeginLocate(ctx, s)
	require.NoError(t, err)
	require.Greater(t, second, first)

	_, err = engine.ResolveLocate(ctx, s, first, &domain.Position{Lat: 9, Lng: 9}, nil)
	assert.ErrorIs(t, err, domain.ErrStaleLocate)

	s, err = engine.ResolveLocate(ctx, s, second, &domain.Position{Lat: 18.5204, Lng: 73.8567}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Current Location (18.5204, 73.8567)", s.Location.Address)

	// A late duplicate of the winning generation is stale too.
	_, err = engine.ResolveLocate(ctx, s, second, &domain.Position{Lat: 1, Lng: 1}, nil)
	assert.ErrorIs(t, err, domain.ErrStaleLocate)
}

func TestResolveLocate_LeavingStepCancels(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()
	s := atLocationStep(t, engine, domain.PresenceYes)

	s, gen, err := engine.BeginLocate(ctx, s)
	require.NoError(t, err)

	back, moved, err := engine.Back(ctx, s)
	require.NoError(t, err)
	require.True(t, moved)
	assert.False(t, back.Locate.Pending)
	assert.Greater(t, back.Locate.Generation, gen)

	_, err = engine.ResolveLocate(ctx, back, gen, &domain.Position{Lat: 1, Lng: 2}, nil)
	assert.ErrorIs(t, err, domain.ErrStaleLocate)
	assert.Empty(t, back.Location.Address)
}

func TestResolveLocate_BranchSwitchCancels(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()
	s := atLocationStep(t, engine, domain.PresenceYes)

	s, gen, err := engine.BeginLocate(ctx, s)
	require.NoError(t, err)

	s = apply(t, engine, s, domain.SetAtLocationNow{Value: domain.PresenceNo})
	assert.False(t, s.Locate.Pending)

	_, err = engine.ResolveLocate(ctx, s, gen, &domain.Position{Lat: 1, Lng: 2}, nil)
	assert.ErrorIs(t, err, domain.ErrStaleLocate)
}

func TestResolveLocate_NilPositionIsFailure(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()
	s := atLocationStep(t, engine, domain.PresenceYes)
	s, gen, _ := engine.BeginLocate(ctx, s)

	next, err := engine.ResolveLocate(ctx, s, gen, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LocateFailureMessage, next.Locate.Error)
}

func TestConfirmManual(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()
	s := atLocationStep(t, engine, domain.PresenceNo)

	next, err := engine.ConfirmManual(ctx, s, domain.ManualAddress{})
	require.NoError(t, err)
	assert.Equal(t, "Manual location set", next.Location.Address)
	assert.Nil(t, next.Location.Lat)
	assert.Nil(t, next.Location.Lng)
	assert.Equal(t, domain.StepLocationEntry, next.Step, "confirming does not move the step")

	next, err = engine.ConfirmManual(ctx, s, domain.ManualAddress{
		State: "Maharashtra", District: "Pune", City: "Pune City", Landmark: "Opp. Mall",
	})
	require.NoError(t, err)
	assert.Equal(t, "Opp. Mall, Pune City, Pune, Maharashtra", next.Location.Address)
	assert.True(t, domain.IsStepValid(next, domain.StepLocationEntry))
}

func TestConfirmLocation_KeepsCoordinates(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine(runtime.WithLocator(staticLocator(domain.Position{Lat: 1, Lng: 2})))
	s := atLocationStep(t, engine, domain.PresenceYes)
	s, err := engine.FetchLocation(ctx, s)
	require.NoError(t, err)

	s = apply(t, engine, s, domain.SetAtLocationNow{Value: domain.PresenceNo})
	s, err = engine.ConfirmLocation(ctx, s, "Pune City")
	require.NoError(t, err)

	assert.Equal(t, "Pune City", s.Location.Address)
	assert.True(t, s.Location.HasCoordinates(), "only the address is replaced")
}

func TestLocateError_Unwrap(t *testing.T) {
	err := &runtime.LocateError{Generation: 2, Message: domain.LocateFailureMessage, Cause: errDenied}
	assert.True(t, errors.Is(err, errDenied))
	assert.Contains(t, err.Error(), "#2")
}
