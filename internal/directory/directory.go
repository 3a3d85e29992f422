// Package directory maintains the registry of active tenants and provides
// the sequential iteration primitive the reconciliation pipeline runs under.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rentledger/rentledger-backend/internal/adapters/tabular"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// registrySchemaVersion tags the persisted registry blob format.
const registrySchemaVersion = 1

// registryKey is where the tenant list lives in the key-value store.
const registryKey = "directory:tenants"

// Stop is returned by an iteration callback to halt iteration early.
// Remaining tenants are skipped; the deferred context restore still runs.
var Stop = fmt.Errorf("stop iteration")

// Hooks are one-time setup/teardown actions fired on registration changes.
// They belong to external collaborators (e.g. accrual schedule installation).
type Hooks interface {
	Setup(ctx context.Context, id tenant.ID) error
	Teardown(ctx context.Context, id tenant.ID) error
}

// NopHooks is the default no-op Hooks implementation.
type NopHooks struct{}

func (NopHooks) Setup(ctx context.Context, id tenant.ID) error    { return nil }
func (NopHooks) Teardown(ctx context.Context, id tenant.ID) error { return nil }

// TenantResult is one tenant's outcome in a batch iteration.
type TenantResult struct {
	ID  tenant.ID
	Err error
}

// Validator checks a tenant is fit for registration. The config provider
// and the ledger poster both act as validators.
type Validator interface {
	ValidateTenant(ctx context.Context, id tenant.ID) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, id tenant.ID) error

func (f ValidatorFunc) ValidateTenant(ctx context.Context, id tenant.ID) error {
	return f(ctx, id)
}

// Directory is the tenant registry. The registered set is persisted through
// the key-value contract as a versioned blob, in insertion order.
type Directory struct {
	kv          storage.KV
	flusher     tabular.Store
	hooks       Hooks
	validators  []Validator
	settleDelay time.Duration
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithHooks installs setup/teardown hooks.
func WithHooks(h Hooks) Option {
	return func(d *Directory) { d.hooks = h }
}

// WithValidators installs registration validators, checked in order.
func WithValidators(vs ...Validator) Option {
	return func(d *Directory) { d.validators = vs }
}

// WithSettleDelay sets the pause after each tenant's flush.
func WithSettleDelay(delay time.Duration) Option {
	return func(d *Directory) { d.settleDelay = delay }
}

// WithSleeper replaces the blocking sleep, for tests.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(d *Directory) { d.sleep = sleep }
}

// New creates a Directory over the given stores.
// flusher may be nil when there is no tabular backend to settle.
func New(kv storage.KV, flusher tabular.Store, logger *slog.Logger, opts ...Option) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Directory{
		kv:      kv,
		flusher: flusher,
		hooks:   NopHooks{},
		sleep:   time.Sleep,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type registryBlob struct {
	Tenants []tenant.ID `json:"tenants"`
}

func (d *Directory) loadRegistry() ([]tenant.ID, error) {
	blob, ok, err := d.kv.Get(registryKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant registry: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var decoded registryBlob
	if err := storage.DecodeBlob(registryKey, blob, registrySchemaVersion, &decoded); err != nil {
		return nil, err
	}
	return decoded.Tenants, nil
}

func (d *Directory) saveRegistry(ids []tenant.ID) error {
	blob, err := storage.EncodeBlob(registrySchemaVersion, registryBlob{Tenants: ids})
	if err != nil {
		return fmt.Errorf("failed to encode tenant registry: %w", err)
	}
	return d.kv.Put(registryKey, blob)
}

// Register adds a tenant after validation. Registering an already-present
// tenant is a silent no-op. On validation failure the tenant is not added
// and the underlying error is returned.
func (d *Directory) Register(ctx context.Context, id tenant.ID) error {
	ids, err := d.loadRegistry()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	for _, v := range d.validators {
		if err := v.ValidateTenant(ctx, id); err != nil {
			d.logger.Warn("tenant registration rejected",
				"tenant", id.String(), "error", err.Error())
			return err
		}
	}

	if err := d.saveRegistry(append(ids, id)); err != nil {
		return err
	}
	if err := d.hooks.Setup(ctx, id); err != nil {
		return fmt.Errorf("setup hook for tenant %s: %w", id, err)
	}

	d.logger.Info("registered tenant", "tenant", id.String())
	return nil
}

// Unregister removes a tenant. Absent tenants are a silent no-op.
func (d *Directory) Unregister(ctx context.Context, id tenant.ID) error {
	ids, err := d.loadRegistry()
	if err != nil {
		return err
	}
	index := -1
	for i, existing := range ids {
		if existing == id {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	if err := d.saveRegistry(append(ids[:index], ids[index+1:]...)); err != nil {
		return err
	}
	if err := d.hooks.Teardown(ctx, id); err != nil {
		return fmt.Errorf("teardown hook for tenant %s: %w", id, err)
	}

	d.logger.Info("unregistered tenant", "tenant", id.String())
	return nil
}

// List returns the registered tenants in insertion order.
func (d *Directory) List(ctx context.Context) ([]tenant.ID, error) {
	return d.loadRegistry()
}

// ForEach runs fn once per registered tenant, passing a context carrying
// that tenant as current. Iteration is strictly sequential. The previously
// current tenant (from the incoming ctx) is what nested callers observe
// again after the loop; restoration happens exactly once, at the end,
// because each iteration derives from the original ctx rather than the
// previous iteration's.
//
// A per-tenant fn error is recorded in the returned batch report and does
// not stop iteration. fn may return Stop to halt early; the remaining
// tenants are skipped. After every tenant the tabular backend is flushed
// and a fixed settle delay elapses so asynchronous propagation cannot
// bleed into the next tenant.
func (d *Directory) ForEach(ctx context.Context, fn func(ctx context.Context, id tenant.ID) error) ([]TenantResult, error) {
	ids, err := d.loadRegistry()
	if err != nil {
		return nil, err
	}

	results := make([]TenantResult, 0, len(ids))
	for _, id := range ids {
		tenantCtx := tenant.WithCurrent(ctx, id)
		err := fn(tenantCtx, id)

		d.settle(id)

		if err == Stop {
			break
		}
		results = append(results, TenantResult{ID: id, Err: err})
		if err != nil {
			d.logger.Warn("tenant iteration failed, continuing",
				"tenant", id.String(), "error", err.Error())
		}
	}
	return results, nil
}

// settle flushes pending tabular writes and waits for backend propagation.
func (d *Directory) settle(id tenant.ID) {
	if d.flusher != nil {
		if err := d.flusher.Flush(); err != nil {
			d.logger.Error("flush after tenant failed", "tenant", id.String(), "error", err.Error())
		}
	}
	if d.settleDelay > 0 {
		d.sleep(d.settleDelay)
	}
}
