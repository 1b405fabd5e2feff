package chains

import (
	"fmt"
	"strconv"
	"strings"
)

// Chain identifiers follow CAIP-2: "eip155:<chain id>" for EVM chains and
// "solana:<cluster genesis hash>" for Solana.
const (
	FamilyEVM    = "eip155"
	FamilySolana = "solana"

	// SolanaMainnet is the CAIP-2 id of the Solana mainnet-beta cluster.
	SolanaMainnet = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d"
)

// Parse splits a CAIP-2 identifier into its namespace and reference.
func Parse(caipID string) (family, reference string, err error) {
	parts := strings.SplitN(caipID, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid CAIP-2 chain id: %q", caipID)
	}
	return parts[0], parts[1], nil
}

// IsEVM reports whether the chain id names an eip155 chain.
func IsEVM(caipID string) bool {
	family, _, err := Parse(caipID)
	return err == nil && family == FamilyEVM
}

// IsSolana reports whether the chain id names a Solana cluster.
func IsSolana(caipID string) bool {
	family, _, err := Parse(caipID)
	return err == nil && family == FamilySolana
}

// EVMChainID extracts the numeric chain id from an eip155 CAIP-2 identifier.
func EVMChainID(caipID string) (uint64, error) {
	family, reference, err := Parse(caipID)
	if err != nil {
		return 0, err
	}
	if family != FamilyEVM {
		return 0, fmt.Errorf("not an eip155 chain id: %q", caipID)
	}
	id, err := strconv.ParseUint(reference, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid eip155 chain id %q: %w", caipID, err)
	}
	return id, nil
}

// ToCAIP builds an eip155 CAIP-2 identifier from a numeric chain id.
func ToCAIP(chainID uint64) string {
	return fmt.Sprintf("%s:%d", FamilyEVM, chainID)
}

// Names maps supported CAIP-2 chain ids to display names.
var Names = map[string]string{
	"eip155:1":     "Ethereum",
	"eip155:56":    "Binance Smart Chain",
	"eip155:137":   "Polygon",
	"eip155:8453":  "Base",
	"eip155:42161": "Arbitrum",
	"eip155:10":    "Optimism",
	SolanaMainnet:  "Solana",
}

// NativeSymbols maps supported CAIP-2 chain ids to their gas-token symbols.
var NativeSymbols = map[string]string{
	"eip155:1":     "ETH",
	"eip155:56":    "BNB",
	"eip155:137":   "MATIC",
	"eip155:8453":  "ETH",
	"eip155:42161": "ETH",
	"eip155:10":    "ETH",
	SolanaMainnet:  "SOL",
}

// Name returns the display name for a chain id, falling back to the id
// itself for chains not in the table.
func Name(caipID string) string {
	if name, ok := Names[caipID]; ok {
		return name
	}
	return caipID
}
