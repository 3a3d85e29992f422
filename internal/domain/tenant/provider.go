package tenant

import (
	"context"
	"fmt"

	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// configSchemaVersion tags the persisted config blob format.
const configSchemaVersion = 1

// Provider returns a validated settings snapshot for a tenant.
// Implementations must not cache across tenant switches.
type Provider interface {
	GetConfig(ctx context.Context, id ID) (*Config, error)
}

// KVProvider persists tenant configs through the key-value contract.
type KVProvider struct {
	kv storage.KV
}

// Compile-time check that KVProvider implements Provider
var _ Provider = (*KVProvider)(nil)

// NewKVProvider creates a provider backed by the given store.
func NewKVProvider(kv storage.KV) *KVProvider {
	return &KVProvider{kv: kv}
}

func configKey(id ID) string {
	return fmt.Sprintf("tenant:%s:config", id)
}

// GetConfig loads and validates the tenant's config. A missing config,
// an undecodable blob, or a failed validation are all errors: the tenant
// is not ready for reconciliation.
func (p *KVProvider) GetConfig(ctx context.Context, id ID) (*Config, error) {
	key := configKey(id)
	blob, ok, err := p.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load config for tenant %s: %w", id, err)
	}
	if !ok {
		return nil, &ValidationError{Field: "config", Reason: fmt.Sprintf("no config stored for tenant %s", id)}
	}

	var cfg Config
	if err := storage.DecodeBlob(key, blob, configSchemaVersion, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PutConfig validates and persists a tenant config.
func (p *KVProvider) PutConfig(ctx context.Context, id ID, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	blob, err := storage.EncodeBlob(configSchemaVersion, cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config for tenant %s: %w", id, err)
	}
	return p.kv.Put(configKey(id), blob)
}

// DeleteConfig removes a tenant's stored config.
func (p *KVProvider) DeleteConfig(ctx context.Context, id ID) error {
	return p.kv.Delete(configKey(id))
}

// MockProvider is an in-memory Provider for testing.
type MockProvider struct {
	Configs map[ID]*Config

	// Error injection for testing error paths
	Err error

	// Call capture
	GetConfigCalls []ID
}

// Compile-time check that MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{Configs: make(map[ID]*Config)}
}

// GetConfig returns the stored config, validating like the real provider.
func (m *MockProvider) GetConfig(ctx context.Context, id ID) (*Config, error) {
	m.GetConfigCalls = append(m.GetConfigCalls, id)
	if m.Err != nil {
		return nil, m.Err
	}
	cfg, ok := m.Configs[id]
	if !ok {
		return nil, &ValidationError{Field: "config", Reason: fmt.Sprintf("no config stored for tenant %s", id)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
