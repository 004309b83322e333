package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"listing-manager/bulk"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a CSV and map every row",
	Long:  "Runs upload validation, then maps each row and reports the rows that would fail before reaching the marketplace.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func loadRows() (*bulk.RowSet, bulk.Format, error) {
	if err := bulk.CheckExtension(inputFile); err != nil {
		return nil, "", err
	}
	format, err := bulk.ParseFormat(formatName)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input file: %w", err)
	}
	set, err := bulk.Load(data, format)
	if err != nil {
		return nil, "", err
	}
	return set, format, nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	set, format, err := loadRows()
	if err != nil {
		return err
	}
	failed := checkRows(cmd.OutOrStdout(), set, format)
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows, %d ok, %d failing\n", len(set.Rows), len(set.Rows)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d rows would fail", failed)
	}
	return nil
}

// checkRows prints one line per failing row (1-based, header excluded) and
// returns how many failed.
func checkRows(w io.Writer, set *bulk.RowSet, format bulk.Format) int {
	failed := 0
	for i, row := range set.Rows {
		l, err := bulk.Map(row, format)
		if err != nil {
			failed++
			id := bulk.Identify(row, format)
			fmt.Fprintf(w, "row %d (sku=%q): %v\n", i+1, id.SKU, err)
			continue
		}
		fmt.Fprintf(w, "row %d ok: brand=%s type=%s specifics=%d\n", i+1, l.Brand, l.Type, len(l.Specifics))
	}
	return failed
}
