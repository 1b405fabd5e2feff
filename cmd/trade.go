package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chain-swap/config"
	"chain-swap/pkg/chains"
	"chain-swap/pkg/client"
	"chain-swap/pkg/history"
	"chain-swap/pkg/orchestrator"
	"chain-swap/pkg/wallet"
)

// buildService resolves the trade-service environment and creates a client
// for it. The --env flag overrides the configured environment.
func buildService(cfg *config.Config, envFlag string, log *zap.Logger) (*client.Client, string, error) {
	envName := cfg.Environment
	if envFlag != "" {
		envName = envFlag
	}
	envCfg, err := cfg.Env(envName)
	if err != nil {
		return nil, "", err
	}
	return client.New(envCfg.BaseURL, envCfg.APIKey, log), envName, nil
}

// buildWallet creates the signing wallet for a chain from its configured
// network settings.
func buildWallet(cfg *config.Config, caipID string) (wallet.Wallet, error) {
	switch {
	case chains.IsEVM(caipID):
		network, err := cfg.EVMNetworkFor(caipID)
		if err != nil {
			return nil, err
		}
		return wallet.NewEVM(caipID, network)
	case chains.IsSolana(caipID):
		return wallet.NewSolana(caipID, cfg.Solana)
	default:
		return nil, fmt.Errorf("unsupported chain id %q", caipID)
	}
}

// resolveToken turns a token argument ("native" or a contract address) into
// a TokenRef. For ERC-20 tokens the symbol and decimals are read from the
// contract unless a decimals override is given; SPL tokens always need the
// override since the wallet cannot infer them.
func resolveToken(ctx context.Context, w wallet.Wallet, caipID, token string, decimalsOverride int) (*orchestrator.TokenRef, error) {
	if token == "" || strings.EqualFold(token, "native") {
		decimals := uint8(18)
		if chains.IsSolana(caipID) {
			decimals = 9
		}
		return &orchestrator.TokenRef{
			Symbol:   chains.NativeSymbols[caipID],
			Decimals: decimals,
			IsNative: true,
		}, nil
	}

	if decimalsOverride >= 0 {
		return &orchestrator.TokenRef{
			Address:  token,
			Symbol:   shortAddress(token),
			Decimals: uint8(decimalsOverride),
		}, nil
	}

	evm, ok := w.(*wallet.EVMWallet)
	if !ok {
		return nil, fmt.Errorf("decimals required for token %s on %s: pass the decimals flag", token, chains.Name(caipID))
	}
	symbol, decimals, err := evm.TokenMetadata(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token %s: %w", token, err)
	}
	return &orchestrator.TokenRef{
		Address:  token,
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}

func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + ".." + address[len(address)-4:]
}

// checkBalance verifies the session guards up front, including the balance
// guard when the wallet can read the source token's balance.
func checkBalance(ctx context.Context, w wallet.Wallet, session *orchestrator.Session) error {
	evm, ok := w.(*wallet.EVMWallet)
	if !ok || session.FromToken == nil {
		return session.CanRequestQuote(w != nil, nil)
	}

	tokenAddress := session.FromToken.Address
	if session.FromToken.IsNative {
		tokenAddress = ""
	}
	balance, err := evm.Balance(ctx, tokenAddress)
	if err != nil {
		// Balance is a guard input, not a requirement; fall back to the
		// balance-free guards when the read fails.
		return session.CanRequestQuote(true, nil)
	}
	return session.CanRequestQuote(true, balance)
}

// runToCompletion drives the session until it returns to idle.
func runToCompletion(ctx context.Context, orch *orchestrator.Orchestrator) error {
	if err := orch.RequestQuote(ctx); err != nil {
		return err
	}
	for orch.Session().Action != orchestrator.ActionIdle {
		if _, err := orch.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}

// recordTrade appends the finished flow to the history file. History is a
// convenience log, so failures to write it are reported but not fatal.
func recordTrade(cfg *config.Config, envName string, record history.Record) {
	store, err := history.NewStore(cfg.HistoryFile)
	if err != nil {
		fmt.Printf("Warning: could not open history file: %v\n", err)
		return
	}
	record.Environment = envName
	if err := store.Append(record); err != nil {
		fmt.Printf("Warning: could not record trade history: %v\n", err)
	}
}
