package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/tablescout/tablescout/internal/adapters/redis"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

func TestRedisStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	// Initialize client
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Run contract
	store := redis.NewFromClient(client)
	ports.RunStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "run-ttl"
	state := domain.NewRunState(sessionID, "find new ramen places", time.Now())
	state.Phase = domain.PhaseAwaitingApproval

	// 1. Save
	err = store.Save(ctx, sessionID, state)
	assert.NoError(t, err)

	// 2. Verify List (immediately)
	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// 5. Verify List (lazily cleaned up)
	// The lazy prune keys off time.Now(), which miniredis cannot fast
	// forward, so wait out the TTL in real time before listing.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Custom Prefix
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-run"

	err = store.Save(ctx, sessionID, domain.NewRunState(sessionID, "show my list", time.Now()))
	assert.NoError(t, err)

	// Verify keys in Redis directly
	// Key should be "custom:app:my-run"
	exists := mr.Exists("custom:app:my-run")
	assert.True(t, exists, "Expected key with custom prefix to exist")

	// Index should be "custom:app:index"
	existsIndex := mr.Exists("custom:app:index")
	assert.True(t, existsIndex, "Expected index with custom prefix to exist")

	// Verify List works
	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_RoundTripPreservesRun(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ctx := context.Background()

	state := domain.NewRunState("run-suspend", "find thai food downtown", time.Now())
	state.Intent = domain.IntentDiscover
	state.Phase = domain.PhaseAwaitingApproval
	state.Additions = []domain.Candidate{
		{
			Name:   "Thip Khao",
			Scores: map[domain.SourceID]float64{"tavily": 4.5, "reddit": 4.0},
		},
	}
	state.Proposal = "I found 1 new restaurant(s)!"
	state.Attempts = map[string]int{"search:tavily": 1}

	assert.NoError(t, store.Save(ctx, state.SessionID, state))

	loaded, err := store.Load(ctx, state.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingApproval, loaded.Phase)
	assert.Equal(t, domain.IntentDiscover, loaded.Intent)
	assert.Equal(t, "Thip Khao", loaded.Additions[0].Name)
	assert.Equal(t, 4.5, loaded.Additions[0].Scores["tavily"])
	assert.Equal(t, 1, loaded.Attempts["search:tavily"])
}
