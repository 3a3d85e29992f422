package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestStorage_PutAndGet(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("tenant:alpha:config", `{"a":1}`))

	value, ok, err := store.Get("tenant:alpha:config")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, value)
}

func TestStorage_GetMissingKey(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_PutOverwrites(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("k", "v1"))
	require.NoError(t, store.Put("k", "v2"))

	value, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)
}

func TestStorage_Delete(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("k", "v"))
	require.NoError(t, store.Delete("k"))

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is a no-op
	require.NoError(t, store.Delete("k"))
}

func TestStorage_RunLog(t *testing.T) {
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveRunEntry(&RunLogEntry{
		RunID:    "run-1",
		TenantID: "alpha",
		Posted:   2,
		Skipped:  1,
	}))
	require.NoError(t, store.SaveRunEntry(&RunLogEntry{
		RunID:        "run-1",
		TenantID:     "beta",
		Failed:       1,
		ErrorMessage: "ledger structure invalid",
	}))

	entries, err := store.ListRunEntries(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Most recent first
	assert.Equal(t, "beta", entries[0].TenantID)
	assert.Equal(t, "ledger structure invalid", entries[0].ErrorMessage)
	assert.Equal(t, "alpha", entries[1].TenantID)
	assert.Equal(t, 2, entries[1].Posted)
}

func TestBlob_RoundTrip(t *testing.T) {
	type payload struct {
		IDs []string `json:"ids"`
	}

	blob, err := EncodeBlob(3, payload{IDs: []string{"a", "b"}})
	require.NoError(t, err)

	var decoded payload
	require.NoError(t, DecodeBlob("test-key", blob, 3, &decoded))
	assert.Equal(t, []string{"a", "b"}, decoded.IDs)
}

func TestBlob_VersionMismatch(t *testing.T) {
	blob, err := EncodeBlob(1, map[string]int{"x": 1})
	require.NoError(t, err)

	var decoded map[string]int
	err = DecodeBlob("test-key", blob, 2, &decoded)
	require.Error(t, err)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "test-key", formatErr.Key)
	assert.Contains(t, formatErr.Reason, "schema version 1")
}

func TestBlob_Unparsable(t *testing.T) {
	var decoded map[string]int
	err := DecodeBlob("registry", "not json at all", 1, &decoded)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "registry", formatErr.Key)
}
