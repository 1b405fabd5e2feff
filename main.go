package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"chain-swap/cmd"
)

func main() {
	// A .env file is optional; environment variables win when both exist.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
