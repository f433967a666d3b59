package redisadapter

import (
	"context"
	"testing"
	"time"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*DraftStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDraftStore(client, ttl, nil), server
}

func TestDraftStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, found, err := store.LoadDraft(ctx, "session-1", "pillar-1")
	require.NoError(t, err)
	assert.False(t, found)

	draft := ports.Draft{
		Snapshot:  ranking.Snapshot{Ranked: []string{"B", "A"}},
		Version:   1,
		UpdatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDraft(ctx, "session-1", "pillar-1", draft, 0))

	loaded, found, err := store.LoadDraft(ctx, "session-1", "pillar-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"B", "A"}, loaded.Snapshot.Ranked)
	assert.Equal(t, int64(1), loaded.Version)
	assert.True(t, draft.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestDraftStoreRejectsStaleVersion(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.SaveDraft(ctx, "s", "p", ports.Draft{Version: 1}, 0))
	require.NoError(t, store.SaveDraft(ctx, "s", "p", ports.Draft{Version: 2}, 1))

	err := store.SaveDraft(ctx, "s", "p", ports.Draft{Version: 2}, 1)
	assert.ErrorIs(t, err, domainerrors.ErrDraftConflict)

	loaded, _, err := store.LoadDraft(ctx, "s", "p")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestDraftStoreExpiresAfterTTL(t *testing.T) {
	store, server := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SaveDraft(ctx, "s", "p", ports.Draft{Version: 1}, 0))
	server.FastForward(2 * time.Minute)

	_, found, err := store.LoadDraft(ctx, "s", "p")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDraftStoreDiscardsCorruptPayload(t *testing.T) {
	store, server := newTestStore(t, time.Hour)
	ctx := context.Background()

	server.HSet(draftKey("s", "p"), "version", "3", "payload", "{not json")
	_, found, err := store.LoadDraft(ctx, "s", "p")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, server.Exists(draftKey("s", "p")))
}

func TestDraftStoreDelete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.SaveDraft(ctx, "s", "p", ports.Draft{Version: 1}, 0))
	require.NoError(t, store.DeleteDraft(ctx, "s", "p"))
	_, found, err := store.LoadDraft(ctx, "s", "p")
	require.NoError(t, err)
	assert.False(t, found)
}
