package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract verifies that a SessionStore implementation
// adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.Snapshot{
			SessionID: sessionID,
			UserID:    3,
			State:     domain.StateMoving,
			From:      "Lobby",
			To:        "Lab",
			Path:      []string{"Lobby", "Corridor", "Lab"},
			Cursor:    1,
			Side:      domain.Left,
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.State, loaded.State)
		assert.Equal(t, snap.Path, loaded.Path)
		assert.Equal(t, snap.Cursor, loaded.Cursor)
		assert.Equal(t, "Corridor", loaded.Target())
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Snapshot{SessionID: sessionID, State: domain.StateQuit, Done: true}))
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateQuit, loaded.State)
		assert.True(t, loaded.Done)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Snapshot{SessionID: sessionID, State: domain.StateSteady}))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.Snapshot{SessionID: id1, State: domain.StateSteady})
		_ = store.Save(ctx, domain.Snapshot{SessionID: id2, State: domain.StateSteady})
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

// RunUserStoreContract verifies that a UserStore implementation adheres to the
// interface contract. The store must be empty.
func RunUserStoreContract(t *testing.T, store UserStore) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		id, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, id)
	})

	t.Run("Append and Find", func(t *testing.T) {
		daniel := domain.User{ID: 0, Name: "Daniel", Modality: domain.ModalityVoice, Lang: "it", Level: 0}
		iacopo := domain.User{ID: 1, Name: "Iacopo", Modality: domain.ModalityVisual, Lang: "en", Level: 1}
		require.NoError(t, store.Append(ctx, daniel))
		require.NoError(t, store.Append(ctx, iacopo))

		got, err := store.Find(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, iacopo, got)

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.User{daniel, iacopo}, users)

		id, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, id)
	})

	t.Run("Find Non-Existent", func(t *testing.T) {
		_, err := store.Find(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
