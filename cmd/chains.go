package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chain-swap/config"
	"chain-swap/pkg/chains"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains and environments",
	Long: `List the chains this tool knows about, with their CAIP-2 identifiers,
and the configured trade-service environments.

Examples:
  chain-swap chains
  chain-swap chains --json`,
	Args: cobra.NoArgs,
	Run:  runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	caipIDs := make([]string, 0, len(chains.Names))
	for caipID := range chains.Names {
		caipIDs = append(caipIDs, caipID)
	}
	sort.Strings(caipIDs)

	if jsonOutput {
		type chainInfo struct {
			CaipID       string `json:"caipId"`
			Name         string `json:"name"`
			NativeSymbol string `json:"nativeSymbol"`
			Configured   bool   `json:"configured"`
		}
		out := make([]chainInfo, 0, len(caipIDs))
		for _, caipID := range caipIDs {
			out = append(out, chainInfo{
				CaipID:       caipID,
				Name:         chains.Name(caipID),
				NativeSymbol: chains.NativeSymbols[caipID],
				Configured:   chainConfigured(cfg, caipID),
			})
		}
		jsonData, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      SUPPORTED CHAINS")
	fmt.Println(strings.Repeat("=", 70))
	for _, caipID := range caipIDs {
		configured := color.HiBlackString("not configured")
		if chainConfigured(cfg, caipID) {
			configured = color.GreenString("configured")
		}
		fmt.Printf("\n  %-22s %-6s %s\n", chains.Name(caipID), chains.NativeSymbols[caipID], configured)
		fmt.Printf("    %s\n", color.CyanString(caipID))
	}

	fmt.Println("\n" + strings.Repeat("-", 70))
	color.Green("  ENVIRONMENTS")
	envNames := make([]string, 0, len(cfg.Environments))
	for name := range cfg.Environments {
		envNames = append(envNames, name)
	}
	sort.Strings(envNames)
	for _, name := range envNames {
		marker := " "
		if name == cfg.Environment {
			marker = color.GreenString("*")
		}
		fmt.Printf("  %s %-12s %s\n", marker, name, cfg.Environments[name].BaseURL)
	}
	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func chainConfigured(cfg *config.Config, caipID string) bool {
	if chains.IsSolana(caipID) {
		return cfg.Solana.RPCUrl != ""
	}
	network, ok := cfg.EVM[caipID]
	return ok && network.RPCUrl != ""
}
