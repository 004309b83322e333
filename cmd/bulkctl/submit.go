package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"listing-manager/config"
	"listing-manager/listing"
	"listing-manager/logging"
	"listing-manager/marketplace"
	"listing-manager/utils"
	"listing-manager/worker"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit every row of a CSV and wait for the batch",
	Long:  "Submits rows one at a time with the configured delay, like the upload endpoint, and prints the final counts and failures. Failures are appended to the bulk error log.",
	RunE:  runSubmit,
}

var submitToken string

func init() {
	submitCmd.Flags().StringVar(&submitToken, "token", "", "marketplace token (defaults to LISTING_MANAGER_TOKEN)")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	token := submitToken
	if token == "" {
		token = os.Getenv("LISTING_MANAGER_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("a marketplace token is required (--token or LISTING_MANAGER_TOKEN)")
	}
	set, format, err := loadRows()
	if err != nil {
		return err
	}

	proc := worker.NewProcessor(context.Background(), worker.ProcessorConfig{
		Submitter: marketplace.NewClient(cfg.Marketplace),
		Renderer:  listing.NewSerializer(cfg),
		ErrorLog:  logging.NewErrorLog(utils.ResolvePath(cfg.Server.LogDir), cfg.Bulk.ErrorLogFile),
		Delay:     cfg.Bulk.ItemDelay(),
	})
	reporter := worker.NewReporter(proc)
	sub := proc.Submit(set, format, token)
	fmt.Fprintf(cmd.OutOrStdout(), "batch %s: %d rows queued\n", sub.BatchID, sub.Added)

	var st worker.Status
	for {
		time.Sleep(500 * time.Millisecond)
		st = reporter.Status()
		if st.Complete && !st.IsProcessing {
			break
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %d/%d done\n", st.SuccessCount+st.FailedCount, st.Total)
	}
	for _, f := range st.FailedItems {
		fmt.Fprintf(cmd.OutOrStdout(), "FAILED sku=%q title=%q: %s\n", f.SKU, f.Title, f.Error)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d succeeded, %d failed\n", st.SuccessCount, st.FailedCount)
	if st.FailedCount > 0 {
		return fmt.Errorf("%d listings failed", st.FailedCount)
	}
	return nil
}
