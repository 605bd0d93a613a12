// Package main provides the entry point for the email agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "email_agent",
	Short: "Email receipt processing agent",
	Long:  "Email agent classifies inbox documents, extracts receipt fields into Postgres, and reconciles stored receipts against bank statements, as a CLI or via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
