package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

// RunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewRunState(sessionID, "find new restaurants", time.Now().UTC())
		state.Phase = domain.PhaseAwaitingApproval
		state.Intent = domain.IntentDiscover
		state.Proposal = "I found 1 new restaurant for your list"
		c := domain.Candidate{Name: "Maydan", Cuisine: "Middle Eastern"}
		c.SetScore("eater-dc", 4.0)
		state.Additions = []domain.Candidate{c}
		state.RecordError(domain.NewErrorReport(time.Now().UTC(), domain.PhaseDiscovering, "washingtonian", "search", domain.ErrCollaboratorUnavailable))

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Phase, loaded.Phase)
		assert.Equal(t, state.Utterance, loaded.Utterance)
		assert.Equal(t, state.Proposal, loaded.Proposal)
		require.Len(t, loaded.Additions, 1)
		assert.Equal(t, 4.0, loaded.Additions[0].Scores["eater-dc"])
		require.Len(t, loaded.Errors, 1)
		assert.Equal(t, domain.ClassCollaboratorUnavailable, loaded.Errors[0].Class)
	})

	t.Run("Loaded state is isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)

		loaded.Additions[0].SetScore("eater-dc", 1.0)
		loaded.Phase = domain.PhaseDone

		fresh, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 4.0, fresh.Additions[0].Scores["eater-dc"])
		assert.Equal(t, domain.PhaseAwaitingApproval, fresh.Phase)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewRunState(sessionID, "find", time.Now().UTC()))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed-"+sessionID))
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewRunState(id1, "find", time.Now().UTC())))
		require.NoError(t, store.Save(ctx, id2, domain.NewRunState(id2, "find", time.Now().UTC())))

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
