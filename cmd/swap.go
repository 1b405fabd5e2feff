package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chain-swap/config"
	"chain-swap/pkg/history"
	"chain-swap/pkg/orchestrator"
)

var (
	swapChain        string
	swapFromToken    string
	swapToToken      string
	swapFromDecimals int
	swapToDecimals   int
	swapRecipient    string
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount>",
	Short: "Swap tokens on a single chain",
	Long: `Swap tokens on one chain through the trade service's dex aggregation.

The flow requests a quote and the best route, executes a token approval when
the route requires one, then sends the dex transaction. Each request and
transaction is shown in full before it is sent.

Tokens are given as contract addresses, or "native" for the chain's gas
token. ERC-20 symbol and decimals are read from the contract.

Examples:
  # USDC to native ETH on Base
  chain-swap swap 100 --chain eip155:8453 --from-token 0x8335... --to-token native

  # Skip all confirmations
  chain-swap swap 100 --chain eip155:8453 --from-token 0x8335... --to-token native --yes`,
	Args: cobra.ExactArgs(1),
	Run:  runSwapTrade,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapChain, "chain", "", "CAIP-2 chain id (e.g. eip155:8453)")
	swapCmd.Flags().StringVar(&swapFromToken, "from-token", "", "Source token address, or 'native'")
	swapCmd.Flags().StringVar(&swapToToken, "to-token", "", "Destination token address, or 'native'")
	swapCmd.Flags().IntVar(&swapFromDecimals, "from-decimals", -1, "Source token decimals (overrides on-chain lookup)")
	swapCmd.Flags().IntVar(&swapToDecimals, "to-decimals", -1, "Destination token decimals (overrides on-chain lookup)")
	swapCmd.Flags().StringVar(&swapRecipient, "recipient", "", "Recipient address (defaults to the wallet address)")
	_ = swapCmd.MarkFlagRequired("chain")
	_ = swapCmd.MarkFlagRequired("from-token")
	_ = swapCmd.MarkFlagRequired("to-token")
}

func runSwapTrade(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	envFlag, _ := cmd.Flags().GetString("env")

	log := newLogger(verbose)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	svc, envName, err := buildService(cfg, envFlag, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	w, err := buildWallet(cfg, swapChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	fromToken, err := resolveToken(ctx, w, swapChain, swapFromToken, swapFromDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	toToken, err := resolveToken(ctx, w, swapChain, swapToToken, swapToDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	session := orchestrator.NewSession(orchestrator.ModeSameChain)
	session.SetFromChain(swapChain)
	session.SetToChain(swapChain)
	session.SetFromToken(fromToken)
	session.SetToToken(toToken)
	session.SetAmount(args[0])
	session.Recipient = swapRecipient
	session.Slippage = cfg.Slippage

	if err := checkBalance(ctx, w, session); err != nil {
		printError(err)
		os.Exit(1)
	}

	orch := orchestrator.New(svc, w, session,
		orchestrator.WithConfirmer(newCLIConfirmer(skipConfirm, verbose)),
		orchestrator.WithLogger(log))

	record := history.Record{
		Mode:      "swap",
		FromChain: swapChain,
		ToChain:   swapChain,
		FromToken: fromToken.Symbol,
		ToToken:   toToken.Symbol,
		Amount:    args[0],
	}

	if err := runToCompletion(ctx, orch); err != nil {
		record.Status = "failed"
		recordTrade(cfg, envName, record)
		printError(err)
		os.Exit(1)
	}

	record.Status = "completed"
	record.TxHashes = session.TxHashes
	recordTrade(cfg, envName, record)

	printSuccess(color.GreenString("Swap complete."))
	for _, txHash := range session.TxHashes {
		fmt.Printf("  Transaction: %s\n", color.CyanString(txHash))
	}
}
