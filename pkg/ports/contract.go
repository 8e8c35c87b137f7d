package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		lat, lng := 18.5204, 73.8567
		state := domain.NewState(sessionID)
		state.Step = domain.StepDetails
		state.OwnerType = domain.OwnerOther
		state.OtherOwnerType = "barn"
		state.AtLocationNow = domain.PresenceYes
		state.Location = domain.Location{Address: "Current Location (18.5204, 73.8567)", Lat: &lat, Lng: &lng}
		state.Contact = "9876543210"
		state.History = append(state.History, domain.StepLocationEntry, domain.StepDetails)
		state.Locate.Generation = 3

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StepDetails, loaded.Step)
		assert.Equal(t, domain.OwnerOther, loaded.OwnerType)
		assert.Equal(t, "barn", loaded.OtherOwnerType)
		assert.Equal(t, "9876543210", loaded.Contact)
		assert.Equal(t, uint64(3), loaded.Locate.Generation)
		assert.Equal(t, state.History, loaded.History)
		require.True(t, loaded.Location.HasCoordinates())
		assert.InDelta(t, lat, *loaded.Location.Lat, 1e-9)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Contact = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "9876543210", again.Contact, "mutating a loaded state must not reach the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
