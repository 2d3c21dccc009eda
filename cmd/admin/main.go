package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Parse and inspect MultiversX transactions and transfers",
	Long: `admin runs the chainparsers transaction and transfer parsers against
records read from JSON files, and decodes or encodes transaction data fields.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %+v\n", err)
		os.Exit(1)
	}
}
