package directory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger-backend/internal/adapters/tabular"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

func TestRegister_AndList(t *testing.T) {
	d := New(storage.NewMockKV(), nil, nil)
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Register(ctx, "beta"))

	ids, err := d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tenant.ID{"alpha", "beta"}, ids)
}

func TestRegister_DuplicateIsNoop(t *testing.T) {
	d := New(storage.NewMockKV(), nil, nil)
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Register(ctx, "alpha"))

	ids, err := d.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestRegister_ValidationFailsClosed(t *testing.T) {
	rejecting := ValidatorFunc(func(ctx context.Context, id tenant.ID) error {
		if id == "bad" {
			return fmt.Errorf("config invalid")
		}
		return nil
	})
	d := New(storage.NewMockKV(), nil, nil, WithValidators(rejecting))
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "good"))
	err := d.Register(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config invalid")

	// The failed registration must not affect the registered set
	ids, err := d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tenant.ID{"good"}, ids)
}

func TestUnregister(t *testing.T) {
	d := New(storage.NewMockKV(), nil, nil)
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Register(ctx, "beta"))
	require.NoError(t, d.Unregister(ctx, "alpha"))

	ids, err := d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tenant.ID{"beta"}, ids)

	// Absent id is a no-op
	require.NoError(t, d.Unregister(ctx, "ghost"))
}

type recordingHooks struct {
	setups    []tenant.ID
	teardowns []tenant.ID
}

func (h *recordingHooks) Setup(ctx context.Context, id tenant.ID) error {
	h.setups = append(h.setups, id)
	return nil
}

func (h *recordingHooks) Teardown(ctx context.Context, id tenant.ID) error {
	h.teardowns = append(h.teardowns, id)
	return nil
}

func TestHooksFire(t *testing.T) {
	hooks := &recordingHooks{}
	d := New(storage.NewMockKV(), nil, nil, WithHooks(hooks))
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Unregister(ctx, "alpha"))

	assert.Equal(t, []tenant.ID{"alpha"}, hooks.setups)
	assert.Equal(t, []tenant.ID{"alpha"}, hooks.teardowns)

	// Duplicate register and absent unregister fire nothing
	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Unregister(ctx, "ghost"))
	assert.Len(t, hooks.setups, 2)
	assert.Len(t, hooks.teardowns, 1)
}

func TestForEach_ThreadsTenantContext(t *testing.T) {
	d := New(storage.NewMockKV(), nil, nil)
	ctx := tenant.WithCurrent(context.Background(), "outer")

	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Register(ctx, "beta"))

	var seen []tenant.ID
	results, err := d.ForEach(ctx, func(tcx context.Context, id tenant.ID) error {
		current, ok := tenant.Current(tcx)
		require.True(t, ok)
		assert.Equal(t, id, current)
		seen = append(seen, current)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []tenant.ID{"alpha", "beta"}, seen)
	assert.Len(t, results, 2)

	// The caller's own context still carries its original tenant
	current, ok := tenant.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, tenant.ID("outer"), current)
}

func TestForEach_IsolatesFailures(t *testing.T) {
	d := New(storage.NewMockKV(), nil, nil)
	ctx := context.Background()

	for _, id := range []tenant.ID{"a", "b", "c"} {
		require.NoError(t, d.Register(ctx, id))
	}

	results, err := d.ForEach(ctx, func(tcx context.Context, id tenant.ID) error {
		if id == "b" {
			return fmt.Errorf("boom")
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestForEach_StopHaltsIteration(t *testing.T) {
	d := New(storage.NewMockKV(), nil, nil)
	ctx := context.Background()

	for _, id := range []tenant.ID{"a", "b", "c"} {
		require.NoError(t, d.Register(ctx, id))
	}

	var seen []tenant.ID
	results, err := d.ForEach(ctx, func(tcx context.Context, id tenant.ID) error {
		seen = append(seen, id)
		if id == "b" {
			return Stop
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []tenant.ID{"a", "b"}, seen)
	// The stopping tenant is not reported as a failure
	assert.Len(t, results, 1)
}

func TestForEach_FlushesAndSettlesPerTenant(t *testing.T) {
	kv := storage.NewMockKV()
	grids := tabular.NewGridStore(kv, "grids")

	var sleeps []time.Duration
	d := New(kv, grids, nil,
		WithSettleDelay(100*time.Millisecond),
		WithSleeper(func(dur time.Duration) { sleeps = append(sleeps, dur) }),
	)
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "alpha"))
	require.NoError(t, d.Register(ctx, "beta"))

	_, err := d.ForEach(ctx, func(tcx context.Context, id tenant.ID) error {
		_, err := grids.CreateTable(string(id))
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, sleeps)

	// Flushed state is visible to a fresh store
	reloaded := tabular.NewGridStore(kv, "grids")
	_, err = reloaded.FindTable("alpha")
	assert.NoError(t, err)
	_, err = reloaded.FindTable("beta")
	assert.NoError(t, err)
}

func TestRegistry_CorruptBlobIsFormatError(t *testing.T) {
	kv := storage.NewMockKV()
	require.NoError(t, kv.Put("directory:tenants", "junk"))
	d := New(kv, nil, nil)

	_, err := d.List(context.Background())
	var formatErr *storage.FormatError
	require.ErrorAs(t, err, &formatErr)
}
