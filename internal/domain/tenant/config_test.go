package tenant

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

func validRentConfig() *Config {
	return &Config{
		EnabledPaymentTypes: []PaymentType{"zelle", "venmo"},
		SearchIdentifier:    "Gandalf",
		Rent: &RentRule{
			DueDay:        1,
			MonthlyAmount: decimal.NewFromInt(873),
		},
		ContactEmails: []string{"gandalf@example.com"},
		DisplayName:   "Gandalf the Grey",
		LedgerName:    "Gandalf Ledger",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid rent config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid loan config with zero rate",
			mutate: func(c *Config) {
				c.Rent = nil
				c.Loan = &LoanRule{InterestDay: 15, AnnualRate: decimal.Zero}
			},
		},
		{
			name:    "no payment types",
			mutate:  func(c *Config) { c.EnabledPaymentTypes = nil },
			wantErr: "enabled_payment_types",
		},
		{
			name: "duplicate payment types",
			mutate: func(c *Config) {
				c.EnabledPaymentTypes = []PaymentType{"zelle", "zelle"}
			},
			wantErr: "duplicate",
		},
		{
			name:    "empty search identifier",
			mutate:  func(c *Config) { c.SearchIdentifier = "" },
			wantErr: "search_identifier",
		},
		{
			name: "both rent and loan",
			mutate: func(c *Config) {
				c.Loan = &LoanRule{InterestDay: 15, AnnualRate: decimal.NewFromFloat(0.05)}
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "neither rent nor loan",
			mutate: func(c *Config) {
				c.Rent = nil
			},
			wantErr: "rent or a loan rule is required",
		},
		{
			name: "rent amount not positive",
			mutate: func(c *Config) {
				c.Rent.MonthlyAmount = decimal.Zero
			},
			wantErr: "monthly_amount",
		},
		{
			name: "due day out of range",
			mutate: func(c *Config) {
				c.Rent.DueDay = 31
			},
			wantErr: "due_day",
		},
		{
			name: "negative interest rate",
			mutate: func(c *Config) {
				c.Rent = nil
				c.Loan = &LoanRule{InterestDay: 15, AnnualRate: decimal.NewFromFloat(-0.01)}
			},
			wantErr: "annual_rate",
		},
		{
			name:    "missing ledger name",
			mutate:  func(c *Config) { c.LedgerName = "" },
			wantErr: "ledger_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRentConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKVProvider_RoundTrip(t *testing.T) {
	kv := storage.NewMockKV()
	provider := NewKVProvider(kv)
	ctx := context.Background()

	cfg := validRentConfig()
	require.NoError(t, provider.PutConfig(ctx, "alpha", cfg))

	loaded, err := provider.GetConfig(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "Gandalf", loaded.SearchIdentifier)
	assert.True(t, loaded.IsRent())
	assert.True(t, loaded.Rent.MonthlyAmount.Equal(decimal.NewFromInt(873)))
}

func TestKVProvider_RejectsInvalidOnPut(t *testing.T) {
	provider := NewKVProvider(storage.NewMockKV())

	cfg := validRentConfig()
	cfg.SearchIdentifier = ""
	err := provider.PutConfig(context.Background(), "alpha", cfg)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestKVProvider_MissingConfig(t *testing.T) {
	provider := NewKVProvider(storage.NewMockKV())

	_, err := provider.GetConfig(context.Background(), "ghost")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestKVProvider_CorruptBlob(t *testing.T) {
	kv := storage.NewMockKV()
	require.NoError(t, kv.Put("tenant:alpha:config", "{{{"))
	provider := NewKVProvider(kv)

	_, err := provider.GetConfig(context.Background(), "alpha")
	var formatErr *storage.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestCurrentTenantContext(t *testing.T) {
	ctx := context.Background()

	_, ok := Current(ctx)
	assert.False(t, ok)

	ctx = WithCurrent(ctx, "alpha")
	id, ok := Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, ID("alpha"), id)
}
