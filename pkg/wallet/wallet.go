package wallet

import (
	"context"
	"encoding/json"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Wallet is the signing capability the trade orchestrator depends on. The
// orchestrator only reads the connected account and asks for signatures and
// sends; it never manages keys itself, which keeps the flows testable with
// a fake.
type Wallet interface {
	// Address returns the connected account address in the chain's native
	// encoding (hex for EVM, base58 for Solana).
	Address() string

	// CAIPChainID returns the CAIP-2 id of the chain this wallet operates on.
	CAIPChainID() string

	// SignTypedData signs an EIP-712 typed-data document and returns the
	// 65-byte signature as a 0x-prefixed hex string.
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) (string, error)

	// SendTransaction submits a server-supplied txnData payload (shape is
	// chain-family specific) and returns the transaction hash or signature.
	SendTransaction(ctx context.Context, txnData json.RawMessage) (string, error)

	// WaitForReceipt blocks until the transaction is mined. Chains without
	// EVM-style receipts return a nil receipt after confirmation.
	WaitForReceipt(ctx context.Context, txHash string) (*ethtypes.Receipt, error)
}
