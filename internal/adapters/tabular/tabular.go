// Package tabular provides key-value-ish access to grids of cells by fuzzy
// row/column name. The ledger poster is its main consumer.
package tabular

import "fmt"

// MatchError indicates a name hint matched zero or more than one candidate.
type MatchError struct {
	Hint  string
	Count int
}

func (e *MatchError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("no match for %q", e.Hint)
	}
	return fmt.Sprintf("ambiguous hint %q: %d matches", e.Hint, e.Count)
}

// Store exposes named tables and a write flush.
type Store interface {
	// FindTable locates a table by fuzzy name hint. Zero or multiple
	// matches yield a *MatchError.
	FindTable(nameHint string) (Table, error)

	// CreateTable creates an empty table with the exact given name.
	CreateTable(name string) (Table, error)

	// DeleteTable removes a table by exact name. Absent is a no-op.
	DeleteTable(name string) error

	// Flush persists pending writes to the backing store.
	Flush() error
}

// Table is one grid of cells. Row and column indexes are zero-based.
type Table interface {
	Name() string

	// FindColumn locates the column of the unique cell matching the hint.
	FindColumn(nameHint string) (int, error)

	// FindRow locates the row of the unique cell matching the hint.
	FindRow(nameHint string) (int, error)

	Cell(row, col int) (string, error)
	SetCell(row, col int, value string) error

	// InsertRowAfter inserts an empty row after the given row,
	// shifting later rows down.
	InsertRowAfter(row int) error

	// AppendRow appends a row of cells at the bottom.
	AppendRow(cells []string)

	RowCount() int
	ColCount() int
}
