package chains

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		caipID    string
		family    string
		reference string
		wantErr   bool
	}{
		{"evm chain", "eip155:8453", "eip155", "8453", false},
		{"solana cluster", SolanaMainnet, "solana", "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d", false},
		{"missing reference", "eip155:", "", "", true},
		{"missing namespace", ":8453", "", "", true},
		{"no separator", "eip155", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, reference, err := Parse(tt.caipID)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.family, family)
			require.Equal(t, tt.reference, reference)
		})
	}
}

func TestFamilyPredicates(t *testing.T) {
	require.True(t, IsEVM("eip155:1"))
	require.False(t, IsEVM(SolanaMainnet))
	require.False(t, IsEVM("junk"))

	require.True(t, IsSolana(SolanaMainnet))
	require.False(t, IsSolana("eip155:1"))
}

func TestEVMChainID(t *testing.T) {
	id, err := EVMChainID("eip155:42161")
	require.NoError(t, err)
	require.Equal(t, uint64(42161), id)

	_, err = EVMChainID(SolanaMainnet)
	require.Error(t, err)

	_, err = EVMChainID("eip155:abc")
	require.Error(t, err)
}

func TestToCAIPRoundTrip(t *testing.T) {
	caipID := ToCAIP(8453)
	require.Equal(t, "eip155:8453", caipID)

	id, err := EVMChainID(caipID)
	require.NoError(t, err)
	require.Equal(t, uint64(8453), id)
}

func TestName(t *testing.T) {
	require.Equal(t, "Base", Name("eip155:8453"))
	require.Equal(t, "eip155:99999", Name("eip155:99999"))
}
