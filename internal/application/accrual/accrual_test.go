package accrual

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger-backend/internal/adapters/tabular"
	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

func rentConfig(ledgerName string) *tenant.Config {
	return &tenant.Config{
		EnabledPaymentTypes: []tenant.PaymentType{"zelle"},
		SearchIdentifier:    "Gandalf",
		LedgerName:          ledgerName,
		Rent: &tenant.RentRule{
			DueDay:        1,
			MonthlyAmount: decimal.RequireFromString("873"),
		},
	}
}

func loanConfig(ledgerName string) *tenant.Config {
	return &tenant.Config{
		EnabledPaymentTypes: []tenant.PaymentType{"zelle"},
		SearchIdentifier:    "Bilbo",
		LedgerName:          ledgerName,
		Loan: &tenant.LoanRule{
			InterestDay: 1,
			AnnualRate:  decimal.RequireFromString("0.06"),
		},
	}
}

func setup(t *testing.T) (*Runner, *tenant.MockProvider, *ledger.Poster, *directory.Directory, *storage.MockKV) {
	t.Helper()
	kv := storage.NewMockKV()
	grids := tabular.NewGridStore(kv, "ledgers")
	poster := ledger.NewPoster(grids, nil)
	tenants := tenant.NewMockProvider()
	dueDay := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	runner := NewRunner(tenants, poster, nil, WithClock(func() time.Time { return dueDay }))
	return runner, tenants, poster, directory.New(kv, grids, nil), kv
}

func TestRunTenant_RentDueDay(t *testing.T) {
	runner, tenants, poster, _, _ := setup(t)
	cfg := rentConfig("Gandalf ledger")
	tenants.Configs["gandalf"] = cfg
	require.NoError(t, poster.EnsureLedger(cfg, decimal.RequireFromString("500"),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	out, err := runner.RunTenant(context.Background(), "gandalf")
	require.NoError(t, err)
	require.NotNil(t, out.Amount)
	assert.Equal(t, "-873.00", *out.Amount)

	balance, err := poster.Balance(cfg)
	require.NoError(t, err)
	assert.Equal(t, "1373.00", balance.StringFixed(2))
}

func TestRunTenant_NotDueDay(t *testing.T) {
	runner, tenants, poster, _, _ := setup(t)
	cfg := rentConfig("Gandalf ledger")
	cfg.Rent.DueDay = 15
	tenants.Configs["gandalf"] = cfg
	require.NoError(t, poster.EnsureLedger(cfg, decimal.RequireFromString("500"),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	out, err := runner.RunTenant(context.Background(), "gandalf")
	require.NoError(t, err)
	assert.Nil(t, out.Amount)

	balance, err := poster.Balance(cfg)
	require.NoError(t, err)
	assert.Equal(t, "500.00", balance.StringFixed(2))
}

func TestRunTenant_LoanInterest(t *testing.T) {
	runner, tenants, poster, _, _ := setup(t)
	cfg := loanConfig("Bilbo ledger")
	tenants.Configs["bilbo"] = cfg
	require.NoError(t, poster.EnsureLedger(cfg, decimal.RequireFromString("1200"),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	out, err := runner.RunTenant(context.Background(), "bilbo")
	require.NoError(t, err)
	require.NotNil(t, out.Amount)
	assert.Equal(t, "-6.00", *out.Amount)

	balance, err := poster.Balance(cfg)
	require.NoError(t, err)
	assert.Equal(t, "1206.00", balance.StringFixed(2))
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	runner, tenants, poster, dir, _ := setup(t)
	ctx := context.Background()

	cfg := rentConfig("Gandalf ledger")
	tenants.Configs["gandalf"] = cfg
	require.NoError(t, poster.EnsureLedger(cfg, decimal.RequireFromString("500"),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	// saruman has a config but no ledger table
	tenants.Configs["saruman"] = rentConfig("Saruman ledger")

	require.NoError(t, dir.Register(ctx, "saruman"))
	require.NoError(t, dir.Register(ctx, "gandalf"))

	outcomes, err := runner.RunAll(ctx, dir)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Error(t, outcomes[0].Err)
	var structErr *ledger.StructuralError
	assert.ErrorAs(t, outcomes[0].Err, &structErr)

	require.NoError(t, outcomes[1].Err)
	require.NotNil(t, outcomes[1].Amount)
	assert.Equal(t, "-873.00", *outcomes[1].Amount)
}
