package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100.00", "100"},
		{"$100.00", "100"},
		{"$1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234", "1234"},
		{"1.234.567", "1234567"},
		{"873", "873"},
		{"100,00", "100"},
		{" $ 2,500.00 ", "2500"},
		{"-873", "-873"},
		// Sentence punctuation after the amount must not be read as
		// thousands grouping
		{"100.00.", "100"},
		{"100.", "100"},
		{"1,234.56,", "1234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			want, _ := decimal.NewFromString(tt.want)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{"", "abc", "12x4", "$", "one hundred"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "873.00", Format(decimal.NewFromInt(873)))
	assert.Equal(t, "12.34", Format(decimal.NewFromFloat(12.336).Round(2)))
}
