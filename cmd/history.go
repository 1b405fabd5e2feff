package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chain-swap/config"
	"chain-swap/pkg/chains"
	"chain-swap/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past trades",
	Long: `List the trades recorded by this tool, newest first.

Examples:
  chain-swap history
  chain-swap history --json`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	store, err := history.NewStore(cfg.HistoryFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	records := store.List()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(records) == 0 {
		fmt.Println("\nNo trades recorded yet.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        TRADE HISTORY")
	fmt.Println(strings.Repeat("=", 70))

	for _, record := range records {
		fmt.Printf("\n  %s  %s  %s\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			color.YellowString("%-6s", record.Mode),
			coloredHistoryStatus(record.Status))
		fmt.Printf("    %s %s on %s -> %s on %s\n",
			record.Amount, record.FromToken, chains.Name(record.FromChain),
			record.ToToken, chains.Name(record.ToChain))
		if record.OrderID != "" {
			fmt.Printf("    Order: %s\n", color.CyanString(record.OrderID))
		}
		for _, txHash := range record.TxHashes {
			fmt.Printf("    Tx:    %s\n", color.HiBlackString(txHash))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredHistoryStatus(status string) string {
	switch status {
	case "completed":
		return color.GreenString(status)
	case "failed":
		return color.RedString(status)
	default:
		return status
	}
}
