package process_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/adapters/process"
	"github.com/tablescout/tablescout/pkg/domain"
)

// A scraper that honors SIGTERM dies as soon as the timeout fires, well
// before the force-kill grace.
func TestTimeoutTermsCooperativeScraper(t *testing.T) {
	requireShell(t)
	r := process.New(map[domain.SourceID]process.Command{
		"slow": script(`sleep 30`),
	}, process.WithTimeout(200*time.Millisecond))

	start := time.Now()
	_, err := r.Search(context.Background(), "slow", "Washington DC")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, elapsed, 2*time.Second)
}

// A scraper that ignores SIGTERM is force-killed once the grace window
// closes instead of hanging the run.
func TestTimeoutKillsStubbornScraper(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow test in short mode")
	}
	requireShell(t)

	r := process.New(map[domain.SourceID]process.Command{
		"stubborn": script(`trap '' TERM; sleep 30`),
	}, process.WithTimeout(200*time.Millisecond))

	start := time.Now()
	_, err := r.Search(context.Background(), "stubborn", "Washington DC")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	assert.Greater(t, elapsed, 2*time.Second, "grace window must pass before the kill")
	assert.Less(t, elapsed, 10*time.Second)
}

func TestParentCancellationPropagates(t *testing.T) {
	requireShell(t)
	r := process.New(map[domain.SourceID]process.Command{
		"slow": script(`sleep 30`),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := r.Search(ctx, "slow", "Washington DC")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
