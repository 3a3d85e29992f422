package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

func newTestStore(t *testing.T) (*GridStore, *storage.MockKV) {
	t.Helper()
	kv := storage.NewMockKV()
	return NewGridStore(kv, "grids"), kv
}

func TestGridStore_FindTableFuzzy(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.CreateTable("Gandalf Ledger")
	require.NoError(t, err)
	_, err = store.CreateTable("Bilbo Ledger")
	require.NoError(t, err)

	table, err := store.FindTable("gandalf")
	require.NoError(t, err)
	assert.Equal(t, "Gandalf Ledger", table.Name())

	// Ambiguous hint
	_, err = store.FindTable("ledger")
	var matchErr *MatchError
	require.ErrorAs(t, err, &matchErr)
	assert.Equal(t, 2, matchErr.Count)

	// No match
	_, err = store.FindTable("sauron")
	require.ErrorAs(t, err, &matchErr)
	assert.Equal(t, 0, matchErr.Count)
}

func TestGrid_ExactMatchBeatsSubstring(t *testing.T) {
	store, _ := newTestStore(t)
	table, err := store.CreateTable("ledger")
	require.NoError(t, err)

	table.AppendRow([]string{"Current balance", "900.00"})
	table.AppendRow([]string{"Date", "Description", "Transaction", "Balance"})

	// "balance" appears in two cells, but exactly one is an exact match
	col, err := table.FindColumn("balance")
	require.NoError(t, err)
	assert.Equal(t, 3, col)

	row, err := table.FindRow("current balance")
	require.NoError(t, err)
	assert.Equal(t, 0, row)
}

func TestGrid_InsertRowAfter(t *testing.T) {
	store, _ := newTestStore(t)
	table, err := store.CreateTable("ledger")
	require.NoError(t, err)

	table.AppendRow([]string{"header"})
	table.AppendRow([]string{"old-newest"})

	require.NoError(t, table.InsertRowAfter(0))
	require.NoError(t, table.SetCell(1, 0, "new-newest"))

	cell, err := table.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "new-newest", cell)

	cell, err = table.Cell(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "old-newest", cell)
	assert.Equal(t, 3, table.RowCount())
}

func TestGrid_SetCellGrowsGrid(t *testing.T) {
	store, _ := newTestStore(t)
	table, err := store.CreateTable("t")
	require.NoError(t, err)

	require.NoError(t, table.SetCell(2, 3, "x"))
	cell, err := table.Cell(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "x", cell)

	// Out-of-range reads behave like empty cells
	cell, err = table.Cell(9, 9)
	require.NoError(t, err)
	assert.Equal(t, "", cell)
}

func TestGridStore_FlushAndReload(t *testing.T) {
	kv := storage.NewMockKV()
	store := NewGridStore(kv, "grids")

	table, err := store.CreateTable("ledger")
	require.NoError(t, err)
	table.AppendRow([]string{"Date", "Balance"})
	require.NoError(t, store.Flush())

	// A fresh store over the same KV sees the flushed state
	reloaded := NewGridStore(kv, "grids")
	table2, err := reloaded.FindTable("ledger")
	require.NoError(t, err)
	cell, err := table2.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Balance", cell)
}

func TestGridStore_FlushWithoutChangesIsNoop(t *testing.T) {
	kv := storage.NewMockKV()
	store := NewGridStore(kv, "grids")

	require.NoError(t, store.Flush())
	assert.False(t, kv.PutCalled)
}

func TestGridStore_CorruptBlob(t *testing.T) {
	kv := storage.NewMockKV()
	require.NoError(t, kv.Put("grids", "garbage"))
	store := NewGridStore(kv, "grids")

	_, err := store.FindTable("anything")
	var formatErr *storage.FormatError
	require.ErrorAs(t, err, &formatErr)
}
