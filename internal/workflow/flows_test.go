package workflow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

func TestViewRendersListNewestFirst(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, []domain.ListEntry{
		seedEntry("Le Diplomate", seedTime),
		seedEntry("Maydan", seedTime.Add(24*time.Hour)),
	})

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "show me my current list")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDone, out.Phase)
	assert.False(t, out.AwaitingDecision)
	assert.Contains(t, out.Message, "Your restaurant list has 2 restaurants:")
	assert.Less(t, strings.Index(out.Message, "Maydan"), strings.Index(out.Message, "Le Diplomate"))

	// Viewing never touches a source.
	assert.Zero(t, h.search.callCount("eater-dc"))
}

func TestViewEmptyList(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, nil)

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "view list")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDone, out.Phase)
	assert.Equal(t, "Your restaurant list is empty.", out.Message)
}

func TestEditRemoveIsApprovalGated(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, []domain.ListEntry{
		seedEntry("Le Diplomate", seedTime),
		seedEntry("Maydan", seedTime),
	})
	h.eval.parsesEdit("remove maydan from my list", domain.EditCommand{
		Action: domain.EditRemove,
		Name:   "Maydan",
	})

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "remove maydan from my list")
	require.NoError(t, err)

	// Removal is destructive, so it suspends like an addition does.
	assert.Equal(t, domain.PhaseAwaitingApproval, out.Phase)
	assert.True(t, out.AwaitingDecision)
	assert.Equal(t, "Remove Maydan from your list?", out.Message)

	entries, err := h.list.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2, "nothing removed before approval")

	out, err = h.engine.SubmitDecision(context.Background(), "s1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseDone, out.Phase)
	assert.Equal(t, "Removed Maydan from your list.", out.Message)

	entries, err = h.list.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Le Diplomate", entries[0].Name)
}

func TestEditRemoveRejected(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, []domain.ListEntry{seedEntry("Maydan", seedTime)})
	h.eval.parsesEdit("remove maydan", domain.EditCommand{Action: domain.EditRemove, Name: "Maydan"})

	_, err := h.engine.SubmitUtterance(context.Background(), "s1", "remove maydan")
	require.NoError(t, err)

	out, err := h.engine.SubmitDecision(context.Background(), "s1", "no")
	require.NoError(t, err)
	assert.Equal(t, "Update cancelled.", out.Message)

	entries, err := h.list.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEditRemoveMatchesCaseInsensitively(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, []domain.ListEntry{seedEntry("Le Diplomate", seedTime)})
	h.eval.parsesEdit("delete LE DIPLOMATE", domain.EditCommand{Action: domain.EditRemove, Name: "LE DIPLOMATE"})

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "delete LE DIPLOMATE")
	require.NoError(t, err)
	require.Equal(t, domain.PhaseAwaitingApproval, out.Phase)

	// The prompt names the entry as the list spells it.
	assert.Equal(t, "Remove Le Diplomate from your list?", out.Message)
}

func TestEditRemoveNotFound(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, []domain.ListEntry{seedEntry("Maydan", seedTime)})
	h.eval.parsesEdit("remove rose's luxury", domain.EditCommand{Action: domain.EditRemove, Name: "Rose's Luxury"})

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "remove rose's luxury")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDone, out.Phase)
	assert.Equal(t, "I couldn't find 'Rose's Luxury' in your list.", out.Message)
}

func TestEditUpdateUnsupported(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, nil)
	h.eval.parsesEdit("change maydan's cuisine", domain.EditCommand{
		Action: domain.EditUpdate,
		Name:   "Maydan",
		Field:  "cuisine",
	})

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "change maydan's cuisine")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDone, out.Phase)
	assert.Equal(t, "Update functionality is not supported yet.", out.Message)
}

func TestEditUnparsedCommand(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, nil)
	// No scripted parse: the evaluator answers EditUnknown.

	out, err := h.engine.SubmitUtterance(context.Background(), "s1", "edit something somehow")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDone, out.Phase)
	assert.Contains(t, out.Message, "I didn't understand that command.")
}

func TestEditRemoveDetailRequest(t *testing.T) {
	h := newHarness([]domain.SourceID{"eater-dc"}, []domain.ListEntry{seedEntry("Maydan", seedTime)})
	h.eval.parsesEdit("remove maydan", domain.EditCommand{Action: domain.EditRemove, Name: "Maydan"})

	_, err := h.engine.SubmitUtterance(context.Background(), "s1", "remove maydan")
	require.NoError(t, err)

	out, err := h.engine.SubmitDecision(context.Background(), "s1", "1")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseAwaitingApproval, out.Phase)
	assert.Contains(t, out.Message, "Maydan")
	assert.Contains(t, out.Message, "Additional Details")
}
