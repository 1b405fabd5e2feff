package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chain-swap/config"
	"chain-swap/pkg/chains"
	"chain-swap/pkg/history"
	"chain-swap/pkg/orchestrator"
	"chain-swap/pkg/poller"
	"chain-swap/pkg/types"
)

var (
	bridgeFromChain    string
	bridgeToChain      string
	bridgeFromToken    string
	bridgeToToken      string
	bridgeFromDecimals int
	bridgeToDecimals   int
	bridgeRecipient    string
	bridgeNoWait       bool
	bridgeInterval     time.Duration
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <amount>",
	Short: "Trade tokens across chains",
	Long: `Trade tokens from one chain to another through the trade service.

The flow requests a quote and the best route, signs the route's permit when
required, generates call data, executes any approval, then either sends the
bridge transaction or registers a signed order intent, depending on what the
backend prescribes. The resulting order is polled until it settles.

Examples:
  # USDC on Base to USDC on Arbitrum
  chain-swap bridge 50 --from-chain eip155:8453 --to-chain eip155:42161 \
    --from-token 0x8335... --to-token 0xaf88...

  # Base USDC to Solana USDC (SPL decimals must be given)
  chain-swap bridge 50 --from-chain eip155:8453 \
    --to-chain solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d \
    --from-token 0x8335... --to-token EPjF... --to-decimals 6 --recipient <solana-addr>`,
	Args: cobra.ExactArgs(1),
	Run:  runBridgeTrade,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringVar(&bridgeFromChain, "from-chain", "", "Source CAIP-2 chain id")
	bridgeCmd.Flags().StringVar(&bridgeToChain, "to-chain", "", "Destination CAIP-2 chain id")
	bridgeCmd.Flags().StringVar(&bridgeFromToken, "from-token", "", "Source token address, or 'native'")
	bridgeCmd.Flags().StringVar(&bridgeToToken, "to-token", "", "Destination token address, or 'native'")
	bridgeCmd.Flags().IntVar(&bridgeFromDecimals, "from-decimals", -1, "Source token decimals (overrides on-chain lookup)")
	bridgeCmd.Flags().IntVar(&bridgeToDecimals, "to-decimals", -1, "Destination token decimals (overrides on-chain lookup)")
	bridgeCmd.Flags().StringVar(&bridgeRecipient, "recipient", "", "Recipient address on the destination chain (defaults to the wallet address)")
	bridgeCmd.Flags().BoolVar(&bridgeNoWait, "no-wait", false, "Do not poll order status after registration")
	bridgeCmd.Flags().DurationVar(&bridgeInterval, "interval", poller.DefaultInterval, "Order status poll interval")
	_ = bridgeCmd.MarkFlagRequired("from-chain")
	_ = bridgeCmd.MarkFlagRequired("to-chain")
	_ = bridgeCmd.MarkFlagRequired("from-token")
	_ = bridgeCmd.MarkFlagRequired("to-token")
}

func runBridgeTrade(cmd *cobra.Command, args []string) {
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

	w, err := buildWallet(cfg, bridgeFromChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if bridgeRecipient == "" && chains.IsSolana(bridgeToChain) != chains.IsSolana(bridgeFromChain) {
		printError(fmt.Errorf("--recipient is required when bridging between chain families"))
		os.Exit(1)
	}

	fromToken, err := resolveToken(ctx, w, bridgeFromChain, bridgeFromToken, bridgeFromDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	// The destination token lives on another chain, so its metadata cannot
	// be read through the source wallet unless both chains are EVM.
	toToken, err := resolveDestinationToken(ctx, cfg, bridgeToChain, bridgeToToken, bridgeToDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	session := orchestrator.NewSession(orchestrator.ModeCrossChain)
	session.SetFromChain(bridgeFromChain)
	session.SetToChain(bridgeToChain)
	session.SetFromToken(fromToken)
	session.SetToToken(toToken)
	session.SetAmount(args[0])
	session.Recipient = bridgeRecipient
	session.Slippage = cfg.Slippage

	if err := checkBalance(ctx, w, session); err != nil {
		printError(err)
		os.Exit(1)
	}

	orch := orchestrator.New(svc, w, session,
		orchestrator.WithConfirmer(newCLIConfirmer(skipConfirm, verbose)),
		orchestrator.WithLogger(log))

	record := history.Record{
		Mode:      "bridge",
		FromChain: bridgeFromChain,
		ToChain:   bridgeToChain,
		FromToken: fromToken.Symbol,
		ToToken:   toToken.Symbol,
		Amount:    args[0],
	}

	if err := runToCompletion(ctx, orch); err != nil {
		record.Status = "failed"
		record.OrderID = session.OrderID
		record.TxHashes = session.TxHashes
		recordTrade(cfg, envName, record)
		printError(err)
		os.Exit(1)
	}

	record.Status = "completed"
	record.OrderID = session.OrderID
	record.OutputAmount = session.RouteOutputAmount
	record.TxHashes = session.TxHashes
	recordTrade(cfg, envName, record)

	if session.OrderID == "" {
		printSuccess(color.GreenString("Trade complete."))
		return
	}

	fmt.Printf("\nOrder registered: %s\n", color.CyanString(session.OrderID))
	if bridgeNoWait {
		fmt.Println("\nCheck progress with:")
		color.Cyan("  chain-swap status %s --caip %s\n", session.OrderID, bridgeFromChain)
		return
	}

	waitForSettlement(ctx, svc, session.OrderID, bridgeFromChain, bridgeInterval)
}

// resolveDestinationToken resolves the to-token with a wallet on its own
// chain when one is configured, falling back to the decimals override.
func resolveDestinationToken(ctx context.Context, cfg *config.Config, caipID, token string, decimalsOverride int) (*orchestrator.TokenRef, error) {
	if destWallet, err := buildWallet(cfg, caipID); err == nil {
		return resolveToken(ctx, destWallet, caipID, token, decimalsOverride)
	}
	return resolveToken(ctx, nil, caipID, token, decimalsOverride)
}

// waitForSettlement polls the order until it reaches a terminal status.
func waitForSettlement(ctx context.Context, svc poller.OrderDetailsGetter, orderID, caipID string, interval time.Duration) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Waiting for settlement..."
	s.Start()

	p := poller.New(svc, orderID, caipID,
		poller.WithInterval(interval),
		poller.WithUpdateFunc(func(details *types.OrderDetails) {
			s.Suffix = fmt.Sprintf(" Order %s: %s", orderID, types.OrderStatusDescription(details.Status))
		}))
	p.Start(ctx)
	<-p.Done()
	s.Stop()

	printSuccess(color.GreenString("Order reached a terminal status."))
	color.Cyan("  chain-swap status %s --caip %s\n", orderID, caipID)
}
