package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"listing-manager/bulk"
	"listing-manager/config"
	"listing-manager/listing"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the AddItem request of one row",
	RunE:  runRender,
}

var (
	renderRow        int
	renderCredential string
)

func init() {
	renderCmd.Flags().IntVar(&renderRow, "row", 1, "1-based data row to render")
	renderCmd.Flags().StringVar(&renderCredential, "credential", "DRY-RUN", "credential to embed in the request")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	set, format, err := loadRows()
	if err != nil {
		return err
	}
	if renderRow < 1 || renderRow > len(set.Rows) {
		return fmt.Errorf("--row must be between 1 and %d", len(set.Rows))
	}
	l, err := bulk.Map(set.Rows[renderRow-1], format)
	if err != nil {
		return err
	}
	out, err := listing.NewSerializer(cfg).Render(l, renderCredential)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
