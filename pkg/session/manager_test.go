package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.State
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(2 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.State)
	}
	s.data[sessionID] = state.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(2 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.data[sessionID]; ok {
		return state.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestManager_UpdateSerialisesWriters(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	_, _, err := manager.LoadOrStart(ctx, id)
	require.NoError(t, err)

	// Each writer appends one character to otherOwnerType.
	// Without serialisation, read-modify-write would lose updates.
	var wg sync.WaitGroup
	writers := 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := manager.Update(ctx, id, func(ctx context.Context, s *domain.State) (*domain.State, error) {
				return domain.Reduce(s, domain.SetOtherOwnerType{Value: s.OtherOwnerType + "x"}), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.OtherOwnerType, writers)
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, isNew, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, state)
			if isNew {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created, "exactly one caller creates the session")

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepOwnerType, state.Step)
	assert.Equal(t, id, state.SessionID)
}

func TestManager_WithStarter(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, session.WithStarter(func(ctx context.Context, id string) (*domain.State, error) {
		s := domain.NewState(id)
		s.OwnerType = domain.OwnerLand
		return s, nil
	}))

	state, created, err := manager.LoadOrStart(context.Background(), "custom")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.OwnerLand, state.OwnerType)
}

func TestManager_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	store := &SlowStore{}
	manager := session.NewManager(store)

	_, _, err := manager.Update(ctx, "missing", func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = manager.LoadOrStart(ctx, "s")
	require.NoError(t, err)

	boom := errors.New("rejected")
	_, _, err = manager.Update(ctx, "s", func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return domain.Reduce(s, domain.SetContact{Value: "9876543210"}), boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, state.Contact, "a failed update saves nothing")
}

func TestManager_UpdateReturnsBeforeAndAfter(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(&SlowStore{})
	_, _, err := manager.LoadOrStart(ctx, "s")
	require.NoError(t, err)

	before, after, err := manager.Update(ctx, "s", func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return domain.Reduce(s, domain.SetSlots{Value: domain.SlotsOver50}), nil
	})
	require.NoError(t, err)
	assert.Empty(t, before.Slots)
	assert.Equal(t, domain.SlotsOver50, after.Slots)

	diff := domain.Diff(before, after)
	require.NotNil(t, diff)
	assert.Equal(t, domain.SlotsOver50, diff.Fields[domain.FieldSlots])
}

func TestManager_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(&SlowStore{})
	for i := 0; i < 3; i++ {
		_, _, err := manager.LoadOrStart(ctx, fmt.Sprintf("s-%d", i))
		require.NoError(t, err)
	}

	require.NoError(t, manager.Delete(ctx, "s-1"))

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s-0", "s-2"}, ids)
}
