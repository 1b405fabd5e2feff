package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{"whole amount", "100", 6, "100000000", false},
		{"fractional amount", "0.5", 18, "500000000000000000", false},
		{"exact precision", "1.000001", 6, "1000001", false},
		{"zero", "0", 6, "0", false},
		{"too many decimal places", "0.0000001", 6, "", true},
		{"not a number", "abc", 6, "", true},
		{"negative", "-1", 6, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name      string
		baseUnits string
		decimals  uint8
		want      string
		wantErr   bool
	}{
		{"eth amount", "50000000000000000", 18, "0.05", false},
		{"usdc amount", "100000000", 6, "100", false},
		{"zero", "0", 18, "0", false},
		{"not a number", "zzz", 18, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatUnits(tt.baseUnits, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	base, err := ParseUnits("123.456", 6)
	require.NoError(t, err)
	human, err := FormatUnits(base, 6)
	require.NoError(t, err)
	require.Equal(t, "123.456", human)
}
