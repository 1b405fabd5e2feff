package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"chain-swap/config"
	"chain-swap/pkg/types"
)

const erc20ABI = `[
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}
]`

const receiptPollInterval = 2 * time.Second

// EVMWallet executes trade-service transactions on one eip155 chain with a
// locally held private key.
type EVMWallet struct {
	caipID     string
	network    config.EVMNetwork
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	erc20      abi.ABI
}

// NewEVM connects to the configured RPC endpoint and derives the account
// address from the configured private key.
func NewEVM(caipID string, network config.EVMNetwork) (*EVMWallet, error) {
	if network.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for chain %s", caipID)
	}
	if network.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for chain %s", caipID)
	}

	client, err := ethclient.Dial(network.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(network.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &EVMWallet{
		caipID:     caipID,
		network:    network,
		client:     client,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		erc20:      parsedABI,
	}, nil
}

// Address returns the hex account address.
func (w *EVMWallet) Address() string {
	return w.address.Hex()
}

// CAIPChainID returns the wallet's chain id in CAIP-2 form.
func (w *EVMWallet) CAIPChainID() string {
	return w.caipID
}

// SendTransaction submits the txnData payload verbatim: to/data as supplied,
// value and gasLimit coerced to integers, gas estimated with a 20% buffer
// when the server omits a limit.
func (w *EVMWallet) SendTransaction(ctx context.Context, txnData json.RawMessage) (string, error) {
	var txn types.EVMTxnData
	if err := json.Unmarshal(txnData, &txn); err != nil {
		return "", fmt.Errorf("invalid EVM txnData: %w", err)
	}
	if !common.IsHexAddress(txn.To) {
		return "", fmt.Errorf("invalid transaction target: %q", txn.To)
	}
	toAddress := common.HexToAddress(txn.To)

	data, err := decodeHexData(txn.Data)
	if err != nil {
		return "", fmt.Errorf("invalid transaction data: %w", err)
	}

	value := big.NewInt(0)
	if txn.Value != "" {
		value, err = parseBig(txn.Value)
		if err != nil {
			return "", fmt.Errorf("invalid transaction value: %w", err)
		}
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := w.gasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit, err := w.gasLimit(ctx, txn.GasLimit, toAddress, value, data)
	if err != nil {
		return "", err
	}

	tx := ethtypes.NewTransaction(nonce, toAddress, value, gasLimit, gasPrice, data)

	chainID := big.NewInt(w.network.ChainID)
	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(chainID), w.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}

// WaitForReceipt blocks until the transaction is mined.
func (w *EVMWallet) WaitForReceipt(ctx context.Context, txHash string) (*ethtypes.Receipt, error) {
	hash := common.HexToHash(txHash)
	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if err != ethereum.NotFound {
			return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

// SignTypedData signs an EIP-712 document with the wallet key.
func (w *EVMWallet) SignTypedData(_ context.Context, typedData apitypes.TypedData) (string, error) {
	return SignTypedData(typedData, w.privateKey)
}

// SignTypedData hashes an EIP-712 typed-data document with the standard
// \x19\x01 prefix scheme and signs the digest, returning a 65-byte
// signature with the Ethereum v = 27/28 convention.
func SignTypedData(typedData apitypes.TypedData, privateKey *ecdsa.PrivateKey) (string, error) {
	domainSep, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return "", fmt.Errorf("hashing domain: %w", err)
	}

	msgHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return "", fmt.Errorf("hashing message: %w", err)
	}

	rawData := fmt.Sprintf("\x19\x01%s%s", string(domainSep), string(msgHash))
	digest := crypto.Keccak256Hash([]byte(rawData))

	sig, err := crypto.Sign(digest.Bytes(), privateKey)
	if err != nil {
		return "", fmt.Errorf("signing typed data: %w", err)
	}

	// Ethereum signature convention: v = 27 or 28
	if sig[64] < 27 {
		sig[64] += 27
	}

	return fmt.Sprintf("0x%x", sig), nil
}

// TokenMetadata reads symbol and decimals from an ERC-20 contract.
func (w *EVMWallet) TokenMetadata(ctx context.Context, tokenAddress string) (symbol string, decimals uint8, err error) {
	if !common.IsHexAddress(tokenAddress) {
		return "", 0, fmt.Errorf("invalid token contract address: %s", tokenAddress)
	}
	token := common.HexToAddress(tokenAddress)

	symbolRaw, err := w.call(ctx, token, "symbol")
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token symbol: %w", err)
	}
	symbolVals, err := w.erc20.Unpack("symbol", symbolRaw)
	if err != nil {
		return "", 0, fmt.Errorf("failed to decode token symbol: %w", err)
	}
	symbol = symbolVals[0].(string)

	decimalsRaw, err := w.call(ctx, token, "decimals")
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token decimals: %w", err)
	}
	decimalsVals, err := w.erc20.Unpack("decimals", decimalsRaw)
	if err != nil {
		return "", 0, fmt.Errorf("failed to decode token decimals: %w", err)
	}
	decimals = decimalsVals[0].(uint8)

	return symbol, decimals, nil
}

// Balance returns the account's balance in base units: the native balance
// when tokenAddress is empty, the ERC-20 balance otherwise.
func (w *EVMWallet) Balance(ctx context.Context, tokenAddress string) (*big.Int, error) {
	if tokenAddress == "" {
		balance, err := w.client.BalanceAt(ctx, w.address, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
		return balance, nil
	}

	if !common.IsHexAddress(tokenAddress) {
		return nil, fmt.Errorf("invalid token contract address: %s", tokenAddress)
	}

	result, err := w.call(ctx, common.HexToAddress(tokenAddress), "balanceOf", w.address)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	vals, err := w.erc20.Unpack("balanceOf", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token balance: %w", err)
	}
	return vals[0].(*big.Int), nil
}

// Close closes the client connection.
func (w *EVMWallet) Close() {
	if w.client != nil {
		w.client.Close()
	}
}

func (w *EVMWallet) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := w.erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	return w.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
}

func (w *EVMWallet) gasPrice(ctx context.Context) (*big.Int, error) {
	if w.network.GasPrice != nil {
		return big.NewInt(*w.network.GasPrice), nil
	}
	return w.client.SuggestGasPrice(ctx)
}

func (w *EVMWallet) gasLimit(ctx context.Context, supplied string, to common.Address, value *big.Int, data []byte) (uint64, error) {
	if supplied != "" {
		limit, err := parseBig(supplied)
		if err != nil {
			return 0, fmt.Errorf("invalid gas limit: %w", err)
		}
		return limit.Uint64(), nil
	}
	if w.network.GasLimit != nil {
		return *w.network.GasLimit, nil
	}

	msg := ethereum.CallMsg{From: w.address, To: &to, Value: value, Data: data}
	estimated, err := w.client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return estimated * 120 / 100, nil
}

// parseBig parses a decimal or 0x-prefixed integer string.
func parseBig(s string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %q", s)
	}
	return value, nil
}

func decodeHexData(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return nil, nil
	}
	return hexutil.Decode(s)
}
