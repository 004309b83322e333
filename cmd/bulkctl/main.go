// Command bulkctl checks, renders and submits listing CSVs without the
// dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bulkctl",
	Short: "Offline tools for bulk listing CSVs",
	Long:  "bulkctl validates listing CSVs the same way the upload endpoint does, prints the AddItem request a row maps to, and can submit a file from the command line.",
}

var (
	inputFile  string
	formatName string
	configFile string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputFile, "in", "i", "", "CSV file to read (required)")
	rootCmd.PersistentFlags().StringVarP(&formatName, "format", "f", "standard", "column layout: standard or automotive")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "config file, relative to the project root")
	_ = rootCmd.MarkPersistentFlagRequired("in")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
