package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "grouped with cents", value: "1234.56", want: "$1,234.56"},
		{name: "whole dollars gain cents", value: "575000", want: "$575,000.00"},
		{name: "zero", value: "0", want: "$0.00"},
		{name: "negative leads with minus", value: "-1234.56", want: "-$1,234.56"},
		{name: "rounds half up", value: "10.005", want: "$10.01"},
		{name: "small amount", value: "0.5", want: "$0.50"},
		{name: "seven digits", value: "1234567.89", want: "$1,234,567.89"},
		{name: "beyond float64 integer range", value: "9007199254740993.17", want: "$9,007,199,254,740,993.17"},
		{name: "seventeen digit group", value: "90071992547409929.07", want: "$90,071,992,547,409,929.07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Currency(dec(tt.value)))
		})
	}
}

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "plain", text: "1234.56", want: "1234.56"},
		{name: "dollar sign and commas", text: "$1,234,567.89", want: "1234567.89"},
		{name: "surrounding whitespace", text: "  $500  ", want: "500"},
		{name: "accounting negative", text: "($1,234.56)", want: "-1234.56"},
		{name: "minus sign", text: "-$42", want: "-42"},
		{name: "empty is zero", text: "", want: "0"},
		{name: "garbage rejected", text: "twelve dollars", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCurrency(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCurrency_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"0", "1234.56", "-987654.32", "575000"} {
		parsed, err := ParseCurrency(Currency(dec(v)))
		require.NoError(t, err)
		assert.True(t, parsed.Equal(dec(v).Round(2)), "round trip of %s gave %s", v, parsed)
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "18.7500%", Percent(dec("18.75")))
	assert.Equal(t, "40.7143%", Percent(dec("40.71428571")))
	assert.Equal(t, "0.0000%", Percent(decimal.Zero))
	assert.Equal(t, "100.0000%", Percent(dec("100")))
}

func TestParsePercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "with suffix", text: "18.75%", want: "18.75"},
		{name: "without suffix", text: "18.75", want: "18.75"},
		{name: "whitespace around suffix", text: " 40.7143 % ", want: "40.7143"},
		{name: "empty is zero", text: "", want: "0"},
		{name: "garbage rejected", text: "forty%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePercent(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  ConfidenceBucket
	}{
		{0.95, ConfidenceHigh},
		{0.85, ConfidenceHigh},
		{0.84, ConfidenceMedium},
		{0.60, ConfidenceMedium},
		{0.59, ConfidenceLow},
		{0.0, ConfidenceLow},
		{1.01, ConfidenceHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Confidence(tt.score), "score %v", tt.score)
	}
}
