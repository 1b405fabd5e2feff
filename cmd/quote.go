package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chain-swap/config"
	"chain-swap/pkg/chains"
	"chain-swap/pkg/orchestrator"
)

var (
	quoteFromChain    string
	quoteToChain      string
	quoteFromToken    string
	quoteToToken      string
	quoteFromDecimals int
	quoteToDecimals   int
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount>",
	Short: "Preview a trade without executing it",
	Long: `Fetch an indicative quote for a trade. Nothing is signed or sent
on-chain; the quote is informational only.

Examples:
  chain-swap quote 100 --from-chain eip155:8453 --to-chain eip155:8453 \
    --from-token 0x8335... --to-token native

  chain-swap quote 50 --from-chain eip155:8453 --to-chain eip155:42161 \
    --from-token 0x8335... --to-token 0xaf88...`,
	Args: cobra.ExactArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteFromChain, "from-chain", "", "Source CAIP-2 chain id")
	quoteCmd.Flags().StringVar(&quoteToChain, "to-chain", "", "Destination CAIP-2 chain id")
	quoteCmd.Flags().StringVar(&quoteFromToken, "from-token", "", "Source token address, or 'native'")
	quoteCmd.Flags().StringVar(&quoteToToken, "to-token", "", "Destination token address, or 'native'")
	quoteCmd.Flags().IntVar(&quoteFromDecimals, "from-decimals", -1, "Source token decimals (overrides on-chain lookup)")
	quoteCmd.Flags().IntVar(&quoteToDecimals, "to-decimals", -1, "Destination token decimals (overrides on-chain lookup)")
	_ = quoteCmd.MarkFlagRequired("from-chain")
	_ = quoteCmd.MarkFlagRequired("to-chain")
	_ = quoteCmd.MarkFlagRequired("from-token")
	_ = quoteCmd.MarkFlagRequired("to-token")
}

func runQuote(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	envFlag, _ := cmd.Flags().GetString("env")

	log := newLogger(verbose)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	svc, _, err := buildService(cfg, envFlag, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	w, err := buildWallet(cfg, quoteFromChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	fromToken, err := resolveToken(ctx, w, quoteFromChain, quoteFromToken, quoteFromDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	toToken, err := resolveDestinationToken(ctx, cfg, quoteToChain, quoteToToken, quoteToDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	mode := orchestrator.ModeCrossChain
	if quoteFromChain == quoteToChain {
		mode = orchestrator.ModeSameChain
	}

	session := orchestrator.NewSession(mode)
	session.SetFromChain(quoteFromChain)
	session.SetToChain(quoteToChain)
	session.SetFromToken(fromToken)
	session.SetToToken(toToken)
	session.SetAmount(args[0])
	session.Slippage = cfg.Slippage

	orch := orchestrator.New(svc, w, session,
		orchestrator.WithConfirmer(newCLIConfirmer(skipConfirm, verbose)),
		orchestrator.WithLogger(log))

	if err := orch.RequestQuote(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]any{
			"from_chain":    quoteFromChain,
			"to_chain":      quoteToChain,
			"from_token":    fromToken.Symbol,
			"to_token":      toToken.Symbol,
			"amount":        args[0],
			"output_amount": session.QuoteOutputAmount,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     TRADE QUOTE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  From: %s %s on %s\n", args[0], color.YellowString(fromToken.Symbol), chains.Name(quoteFromChain))
	fmt.Printf("  To:   ~%s %s on %s\n", session.QuoteOutputAmount, color.YellowString(toToken.Symbol), chains.Name(quoteToChain))
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
