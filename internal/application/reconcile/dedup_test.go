package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

const dedupTestTTL = 14 * 24 * time.Hour

func TestDedup_RecordAndSeen(t *testing.T) {
	d := NewDedupStore(storage.NewMockKV(), dedupTestTTL)

	seen, err := d.Seen("gandalf", "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Record("gandalf", "msg-1"))

	seen, err = d.Seen("gandalf", "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDedup_RecordDuplicateIsNoop(t *testing.T) {
	d := NewDedupStore(storage.NewMockKV(), dedupTestTTL)

	require.NoError(t, d.Record("gandalf", "msg-1"))
	require.NoError(t, d.Record("gandalf", "msg-1"))

	count, err := d.Count("gandalf")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDedup_TenantScoped(t *testing.T) {
	d := NewDedupStore(storage.NewMockKV(), dedupTestTTL)

	require.NoError(t, d.Record("gandalf", "msg-1"))

	seen, err := d.Seen("saruman", "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDedup_PruneDropsExpiredEntries(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	d := NewDedupStore(storage.NewMockKV(), dedupTestTTL).WithClock(clock)

	require.NoError(t, d.Record("gandalf", "old"))

	now = now.Add(dedupTestTTL + time.Second)
	require.NoError(t, d.Record("gandalf", "fresh"))
	require.NoError(t, d.Prune("gandalf"))

	seen, err := d.Seen("gandalf", "old")
	require.NoError(t, err)
	assert.False(t, seen, "entry past the retention window must be forgotten")

	seen, err = d.Seen("gandalf", "fresh")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDedup_PruneKeepsEntriesInsideWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	d := NewDedupStore(storage.NewMockKV(), dedupTestTTL).WithClock(clock)

	require.NoError(t, d.Record("gandalf", "msg-1"))

	// Just under the boundary, and exactly at it: both retained.
	now = now.Add(dedupTestTTL - time.Second)
	require.NoError(t, d.Prune("gandalf"))
	seen, err := d.Seen("gandalf", "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)

	now = now.Add(time.Second)
	require.NoError(t, d.Prune("gandalf"))
	seen, err = d.Seen("gandalf", "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDedup_CorruptBlobIsFormatError(t *testing.T) {
	kv := storage.NewMockKV()
	require.NoError(t, kv.Put("dedup:gandalf", "not json"))
	d := NewDedupStore(kv, dedupTestTTL)

	_, err := d.Seen("gandalf", "msg-1")
	var formatErr *storage.FormatError
	require.ErrorAs(t, err, &formatErr)
}
