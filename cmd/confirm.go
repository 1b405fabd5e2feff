package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// cliConfirmer is the terminal confirmation gate: it prints the exact
// outbound payload of every pending request and waits for a y/N answer.
// With --yes, payloads are still printed but approval is automatic.
type cliConfirmer struct {
	skipPrompt   bool
	showResponse bool
	reader       *bufio.Reader
}

func newCLIConfirmer(skipPrompt, showResponse bool) *cliConfirmer {
	return &cliConfirmer{
		skipPrompt:   skipPrompt,
		showResponse: showResponse,
		reader:       bufio.NewReader(os.Stdin),
	}
}

// ConfirmRequest shows the payload about to be sent and asks for approval.
func (c *cliConfirmer) ConfirmRequest(action string, payload any) (bool, error) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("  Pending: %s", action)
	fmt.Println(strings.Repeat("=", 60))
	printPayload(payload)

	if c.skipPrompt {
		return true, nil
	}

	fmt.Print("\nProceed? (y/N): ")
	response, err := c.reader.ReadString('\n')
	if err != nil {
		return false, nil
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// ShowResponse prints a received payload when verbose output is on.
func (c *cliConfirmer) ShowResponse(action string, payload any) {
	if !c.showResponse {
		return
	}
	color.Green("\nResponse: %s", action)
	printPayload(payload)
}

func printPayload(payload any) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", payload)
		return
	}
	fmt.Println(string(data))
}
