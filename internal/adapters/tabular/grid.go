package tabular

import (
	"fmt"
	"strings"

	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// gridSchemaVersion tags the persisted grid blob format.
const gridSchemaVersion = 1

// GridStore is a Store kept in memory and persisted through the key-value
// contract as a single versioned blob. Writes accumulate until Flush.
type GridStore struct {
	kv     storage.KV
	key    string
	tables []*Grid
	loaded bool
	dirty  bool
}

// Compile-time check that GridStore implements Store
var _ Store = (*GridStore)(nil)

// Grid is one in-memory table.
type Grid struct {
	name  string
	cells [][]string
	store *GridStore
}

// Compile-time check that Grid implements Table
var _ Table = (*Grid)(nil)

type gridBlob struct {
	Tables []tableBlob `json:"tables"`
}

type tableBlob struct {
	Name  string     `json:"name"`
	Cells [][]string `json:"cells"`
}

// NewGridStore creates a grid store persisted under the given key.
func NewGridStore(kv storage.KV, key string) *GridStore {
	return &GridStore{kv: kv, key: key}
}

func (s *GridStore) load() error {
	if s.loaded {
		return nil
	}
	blob, ok, err := s.kv.Get(s.key)
	if err != nil {
		return fmt.Errorf("failed to load grid store: %w", err)
	}
	if ok {
		var decoded gridBlob
		if err := storage.DecodeBlob(s.key, blob, gridSchemaVersion, &decoded); err != nil {
			return err
		}
		s.tables = make([]*Grid, 0, len(decoded.Tables))
		for _, t := range decoded.Tables {
			s.tables = append(s.tables, &Grid{name: t.Name, cells: t.Cells, store: s})
		}
	}
	s.loaded = true
	return nil
}

// matches implements the fuzzy rule shared by tables and the store:
// exact case-insensitive match wins; otherwise case-insensitive substring.
func matchIndexes(hint string, candidates []string) []int {
	needle := strings.ToLower(strings.TrimSpace(hint))

	var exact []int
	for i, c := range candidates {
		if strings.ToLower(strings.TrimSpace(c)) == needle {
			exact = append(exact, i)
		}
	}
	if len(exact) == 1 {
		return exact
	}

	var partial []int
	for i, c := range candidates {
		if c != "" && strings.Contains(strings.ToLower(c), needle) {
			partial = append(partial, i)
		}
	}
	return partial
}

// FindTable locates a table by fuzzy name hint
func (s *GridStore) FindTable(nameHint string) (Table, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.name
	}
	found := matchIndexes(nameHint, names)
	if len(found) != 1 {
		return nil, &MatchError{Hint: nameHint, Count: len(found)}
	}
	return s.tables[found[0]], nil
}

// CreateTable creates an empty table with the exact given name
func (s *GridStore) CreateTable(name string) (Table, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	for _, t := range s.tables {
		if strings.EqualFold(t.name, name) {
			return nil, fmt.Errorf("table %q already exists", name)
		}
	}
	g := &Grid{name: name, store: s}
	s.tables = append(s.tables, g)
	s.dirty = true
	return g, nil
}

// DeleteTable removes a table by exact name
func (s *GridStore) DeleteTable(name string) error {
	if err := s.load(); err != nil {
		return err
	}
	for i, t := range s.tables {
		if strings.EqualFold(t.name, name) {
			s.tables = append(s.tables[:i], s.tables[i+1:]...)
			s.dirty = true
			return nil
		}
	}
	return nil
}

// Flush persists pending writes
func (s *GridStore) Flush() error {
	if !s.dirty {
		return nil
	}
	blob := gridBlob{Tables: make([]tableBlob, 0, len(s.tables))}
	for _, t := range s.tables {
		blob.Tables = append(blob.Tables, tableBlob{Name: t.name, Cells: t.cells})
	}
	encoded, err := storage.EncodeBlob(gridSchemaVersion, blob)
	if err != nil {
		return fmt.Errorf("failed to encode grid store: %w", err)
	}
	if err := s.kv.Put(s.key, encoded); err != nil {
		return fmt.Errorf("failed to flush grid store: %w", err)
	}
	s.dirty = false
	return nil
}

// Name returns the table name
func (g *Grid) Name() string { return g.name }

// FindColumn locates the column of the unique cell matching the hint
func (g *Grid) FindColumn(nameHint string) (int, error) {
	var flat []string
	var cols []int
	for _, row := range g.cells {
		for c, cell := range row {
			flat = append(flat, cell)
			cols = append(cols, c)
		}
	}
	found := matchIndexes(nameHint, flat)
	if len(found) != 1 {
		return 0, &MatchError{Hint: nameHint, Count: len(found)}
	}
	return cols[found[0]], nil
}

// FindRow locates the row of the unique cell matching the hint
func (g *Grid) FindRow(nameHint string) (int, error) {
	var flat []string
	var rows []int
	for r, row := range g.cells {
		for _, cell := range row {
			flat = append(flat, cell)
			rows = append(rows, r)
		}
	}
	found := matchIndexes(nameHint, flat)
	if len(found) != 1 {
		return 0, &MatchError{Hint: nameHint, Count: len(found)}
	}
	return rows[found[0]], nil
}

// Cell returns the value at (row, col). Out-of-range reads return ""
// like an empty spreadsheet cell.
func (g *Grid) Cell(row, col int) (string, error) {
	if row < 0 || col < 0 {
		return "", fmt.Errorf("cell (%d,%d) out of range", row, col)
	}
	if row >= len(g.cells) || col >= len(g.cells[row]) {
		return "", nil
	}
	return g.cells[row][col], nil
}

// SetCell writes the value at (row, col), growing the grid as needed
func (g *Grid) SetCell(row, col int, value string) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("cell (%d,%d) out of range", row, col)
	}
	for row >= len(g.cells) {
		g.cells = append(g.cells, nil)
	}
	for col >= len(g.cells[row]) {
		g.cells[row] = append(g.cells[row], "")
	}
	g.cells[row][col] = value
	g.store.dirty = true
	return nil
}

// InsertRowAfter inserts an empty row after the given row
func (g *Grid) InsertRowAfter(row int) error {
	if row < 0 || row >= len(g.cells) {
		return fmt.Errorf("row %d out of range", row)
	}
	g.cells = append(g.cells, nil)
	copy(g.cells[row+2:], g.cells[row+1:])
	g.cells[row+1] = nil
	g.store.dirty = true
	return nil
}

// AppendRow appends a row of cells at the bottom
func (g *Grid) AppendRow(cells []string) {
	g.cells = append(g.cells, cells)
	g.store.dirty = true
}

// RowCount returns the number of rows
func (g *Grid) RowCount() int { return len(g.cells) }

// ColCount returns the widest row's cell count
func (g *Grid) ColCount() int {
	max := 0
	for _, row := range g.cells {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}
