package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "chain-swap",
	Short: "A CLI for same-chain and cross-chain token trades via the trade service",
	Long: `chain-swap is a command-line client for the trade-execution backend. It
requests quotes and routes, walks through the on-chain steps the backend
prescribes (approvals, permit signatures, dex swaps, bridge transactions,
intent registration) and tracks order status until settlement.

Every API request and wallet transaction is shown in full and requires
confirmation before it is sent, so the tool doubles as a reference for the
trade API flow.

Examples:
  chain-swap swap 100 --chain eip155:8453 --from-token 0x8335... --to-token native
  chain-swap bridge 50 --from-chain eip155:8453 --to-chain eip155:42161 --from-token 0x8335... --to-token 0xaf88...
  chain-swap quote 100 --from-chain eip155:8453 --to-chain eip155:42161 --from-token 0x8335... --to-token 0xaf88...
  chain-swap status 0xfba6...
  chain-swap history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringP("env", "e", "", "Trade-service environment (sandbox, staging, production)")
}

// newLogger builds the command logger: human-readable debug output with
// --verbose, silent otherwise.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
