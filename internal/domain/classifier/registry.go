package classifier

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// Registry manages all registered payment-type matchers
type Registry struct {
	matchers map[tenant.PaymentType]Matcher
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewRegistry creates a new matcher registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		matchers: make(map[tenant.PaymentType]Matcher),
		logger:   logger,
	}
}

// DefaultRegistry returns a registry with all built-in matchers registered
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	_ = r.Register(&ZelleMatcher{})
	_ = r.Register(&VenmoMatcher{})
	_ = r.Register(&PayPalMatcher{})
	return r
}

// Register adds a matcher to the registry
func (r *Registry) Register(m Matcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pt := m.Type()
	if _, exists := r.matchers[pt]; exists {
		return fmt.Errorf("matcher %s already registered", pt)
	}

	r.matchers[pt] = m
	r.logger.Debug("registered payment matcher", slog.String("type", string(pt)))
	return nil
}

// Get returns a matcher by payment type
func (r *Registry) Get(pt tenant.PaymentType) (Matcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matchers[pt]
	return m, ok
}

// List returns all registered payment types
func (r *Registry) List() []tenant.PaymentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]tenant.PaymentType, 0, len(r.matchers))
	for pt := range r.matchers {
		types = append(types, pt)
	}
	return types
}
