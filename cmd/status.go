package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chain-swap/config"
	"chain-swap/pkg/client"
	"chain-swap/pkg/poller"
	"chain-swap/pkg/types"
)

var (
	statusCaipID  string
	watchStatus   bool
	watchInterval time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status <order-id>",
	Short: "Check the status of a cross-chain order",
	Long: `Check the execution status of a registered cross-chain order.

With --watch, the order is polled until it settles, is refunded or expires.

Examples:
  chain-swap status 0xfba6...1fd6 --caip eip155:8453
  chain-swap status 0xfba6...1fd6 --caip eip155:8453 --watch
  chain-swap status 0xfba6...1fd6 --caip eip155:8453 --watch --interval 5s`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusCaipID, "caip", "", "CAIP-2 id of the order's source chain")
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until a terminal status")
	statusCmd.Flags().DurationVar(&watchInterval, "interval", poller.DefaultInterval, "Polling interval (when watching)")
	_ = statusCmd.MarkFlagRequired("caip")
}

func runStatus(cmd *cobra.Command, args []string) {
	orderID := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
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

	if watchStatus {
		watchOrderStatus(ctx, svc, orderID, jsonOutput)
	} else {
		checkOrderStatus(ctx, svc, orderID, jsonOutput)
	}
}

func checkOrderStatus(ctx context.Context, svc client.TradeService, orderID string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking order status..."
		s.Start()
	}

	details, err := svc.GetOrderDetails(ctx, &types.GetOrderDetailsRequest{
		OrderID: orderID,
		CaipID:  statusCaipID,
	})
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(details, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayOrderDetails(details, orderID)
	}
}

func watchOrderStatus(ctx context.Context, svc client.TradeService, orderID string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching order %s\n", color.CyanString(orderID))
	fmt.Printf("Checking every %s. Press Ctrl+C to stop.\n", watchInterval)

	p := poller.New(svc, orderID, statusCaipID,
		poller.WithInterval(watchInterval),
		poller.WithUpdateFunc(func(details *types.OrderDetails) {
			displayOrderDetails(details, orderID)
		}))
	p.Start(ctx)
	<-p.Done()

	printSuccess(color.GreenString("Order reached a terminal status."))
}

func displayOrderDetails(details *types.OrderDetails, orderID string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        ORDER STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Order ID:      %s\n", color.CyanString(orderID))
	fmt.Printf("  Status:        %s\n", coloredOrderStatus(details.Status))
	fmt.Printf("  Meaning:       %s\n", types.OrderStatusDescription(details.Status))

	if details.Swapper != "" {
		fmt.Printf("  Swapper:       %s\n", details.Swapper)
	}
	if details.FillDeadline != "" {
		fmt.Printf("  Fill Deadline: %s\n", details.FillDeadline)
	}
	if details.RouteExpiry != "" {
		fmt.Printf("  Route Expiry:  %s\n", details.RouteExpiry)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredOrderStatus(status string) string {
	switch status {
	case types.OrderStatusSettled:
		return color.GreenString(status)
	case types.OrderStatusReceived, types.OrderStatusRegistered:
		return color.YellowString(status)
	case types.OrderStatusExpired, types.OrderStatusRefunded:
		return color.RedString(status)
	case types.OrderStatusDisputed:
		return color.MagentaString(status)
	default:
		return status
	}
}
