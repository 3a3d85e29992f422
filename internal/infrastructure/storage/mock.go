package storage

import "sync"

// MockKV is an in-memory implementation of KV for testing.
// It stores all data in a map, making tests fast and isolated.
type MockKV struct {
	mu   sync.Mutex
	data map[string]string

	// Hooks for test assertions
	PutCalled    bool
	GetCalled    bool
	DeleteCalled bool
	LastPutKey   string
	LastPutValue string

	// Error injection for testing error paths
	GetErr    error
	PutErr    error
	DeleteErr error
}

// Compile-time check that MockKV implements KV
var _ KV = (*MockKV)(nil)

// NewMockKV creates a new mock key-value store for testing
func NewMockKV() *MockKV {
	return &MockKV{
		data: make(map[string]string),
	}
}

// Get retrieves the blob stored under key
func (m *MockKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalled = true
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

// Put stores the blob under key
func (m *MockKV) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalled = true
	m.LastPutKey = key
	m.LastPutValue = value
	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[key] = value
	return nil
}

// Delete removes the key
func (m *MockKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalled = true
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

// Close is a no-op for the mock
func (m *MockKV) Close() error {
	return nil
}

// Keys returns all stored keys (test helper)
func (m *MockKV) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// MockRunLogger is an in-memory implementation of RunLogger for testing
type MockRunLogger struct {
	Entries []RunLogEntry

	SaveErr error
}

// Compile-time check that MockRunLogger implements RunLogger
var _ RunLogger = (*MockRunLogger)(nil)

// SaveRunEntry appends the entry in memory
func (m *MockRunLogger) SaveRunEntry(entry *RunLogEntry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	e := *entry
	e.ID = int64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, e)
	return nil
}

// ListRunEntries returns entries most recent first
func (m *MockRunLogger) ListRunEntries(limit int) ([]RunLogEntry, error) {
	out := make([]RunLogEntry, 0, len(m.Entries))
	for i := len(m.Entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.Entries[i])
	}
	return out, nil
}
