// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lyxtab/internal/ledger"
	"github.com/pdiddy/lyxtab/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List conversions recorded in the ledger",
	Long: `Ledger prints every document recorded in the SQLite ledger with its
last status, extracted environment and line count.`,
	RunE: runLedger,
}

func init() {
	ledgerCmd.Flags().String("path", "", "ledger database (default: the configured ledger)")
	ledgerCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = viper.GetString("ledger")
	}
	if path == "" {
		return fmt.Errorf("no ledger configured: pass --path or set ledger in lyxtab.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("ledger %s: %w", path, err)
	}

	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	recs, err := l.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatLedger(os.Stdout, recs, jsonOutput)
}

func formatLedger(w io.Writer, recs []types.ConversionRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-30s  %-9s  %-10s  %5s  %s\n", "Document", "Status", "Env", "Lines", "Converted")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range recs {
		name := filepath.Base(r.LyXPath)
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(w, "%-30s  %-9s  %-10s  %5d  %s\n",
			name, r.Status, r.Environment, r.Lines, r.ConvertedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "\n%d documents\n", len(recs))
	return nil
}
