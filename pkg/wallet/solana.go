package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"chain-swap/config"
	"chain-swap/pkg/types"
)

// Address lookup table accounts store their extended addresses as packed
// 32-byte keys after a fixed-size state header.
const lookupTableHeaderLen = 56

const signatureStatusPollInterval = 2 * time.Second

// SolanaWallet executes trade-service transactions on Solana with a locally
// held private key. The trade service describes Solana transactions as raw
// instruction lists plus address lookup tables; the wallet reassembles,
// signs and submits them.
type SolanaWallet struct {
	caipID     string
	cfg        config.SolanaNetwork
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewSolana connects to the configured RPC endpoint.
func NewSolana(caipID string, cfg config.SolanaNetwork) (*SolanaWallet, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for Solana")
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaWallet{
		caipID:     caipID,
		cfg:        cfg,
		client:     rpc.New(cfg.RPCUrl),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// Address returns the base58 account address.
func (s *SolanaWallet) Address() string {
	return s.publicKey.String()
}

// CAIPChainID returns the wallet's chain id in CAIP-2 form.
func (s *SolanaWallet) CAIPChainID() string {
	return s.caipID
}

// SignTypedData is not available on Solana; cross-chain routes that require
// an EIP-712 signature must originate from an EVM chain.
func (s *SolanaWallet) SignTypedData(_ context.Context, _ apitypes.TypedData) (string, error) {
	return "", fmt.Errorf("typed-data signing is not supported on Solana")
}

// SendTransaction rebuilds a transaction from the txnData raw instructions
// and address lookup tables, signs it and submits it.
func (s *SolanaWallet) SendTransaction(ctx context.Context, txnData json.RawMessage) (string, error) {
	var txn types.SolanaTxnData
	if err := json.Unmarshal(txnData, &txn); err != nil {
		return "", fmt.Errorf("invalid Solana txnData: %w", err)
	}
	if len(txn.RawInstructions) == 0 {
		return "", fmt.Errorf("txnData has no instructions")
	}

	instructions := make([]solana.Instruction, 0, len(txn.RawInstructions))
	for i, raw := range txn.RawInstructions {
		instruction, err := buildInstruction(raw)
		if err != nil {
			return "", fmt.Errorf("instruction %d: %w", i, err)
		}
		instructions = append(instructions, instruction)
	}

	tables, err := s.fetchLookupTables(ctx, txn.AddressLookupTableAddresses)
	if err != nil {
		return "", err
	}

	recent, err := s.client.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(s.publicKey)}
	if len(tables) > 0 {
		opts = append(opts, solana.TransactionAddressTables(tables))
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       s.cfg.SkipPreflight,
		PreflightCommitment: s.commitment(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}

// WaitForReceipt blocks until the signature is confirmed. Solana has no
// EVM-style receipt, so the returned receipt is always nil.
func (s *SolanaWallet) WaitForReceipt(ctx context.Context, txHash string) (*ethtypes.Receipt, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	for {
		statuses, err := s.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return nil, fmt.Errorf("transaction %s failed: %v", txHash, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(signatureStatusPollInterval):
		}
	}
}

func buildInstruction(raw types.SolanaRawInstruction) (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(raw.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(raw.Keys))
	for _, key := range raw.Keys {
		pubkey, err := solana.PublicKeyFromBase58(key.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account key %q: %w", key.Pubkey, err)
		}
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  pubkey,
			IsWritable: key.IsWritable,
			IsSigner:   key.IsSigner,
		})
	}

	data := make([]byte, len(raw.Data))
	for i, b := range raw.Data {
		if b < 0 || b > 255 {
			return nil, fmt.Errorf("instruction data byte %d out of range: %d", i, b)
		}
		data[i] = byte(b)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// fetchLookupTables resolves the extended address lists of the referenced
// lookup tables so versioned transactions can be compiled against them.
func (s *SolanaWallet) fetchLookupTables(ctx context.Context, addresses []string) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(addresses))
	for _, address := range addresses {
		tableKey, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			return nil, fmt.Errorf("invalid lookup table address %q: %w", address, err)
		}

		info, err := s.client.GetAccountInfo(ctx, tableKey)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lookup table %s: %w", address, err)
		}
		if info.Value == nil {
			return nil, fmt.Errorf("lookup table %s not found", address)
		}

		data := info.Value.Data.GetBinary()
		if len(data) < lookupTableHeaderLen || (len(data)-lookupTableHeaderLen)%32 != 0 {
			return nil, fmt.Errorf("lookup table %s has malformed data", address)
		}

		var keys solana.PublicKeySlice
		for offset := lookupTableHeaderLen; offset < len(data); offset += 32 {
			keys = append(keys, solana.PublicKeyFromBytes(data[offset:offset+32]))
		}
		tables[tableKey] = keys
	}
	return tables, nil
}

func (s *SolanaWallet) commitment() rpc.CommitmentType {
	switch strings.ToLower(s.cfg.Commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
