// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lyxtab/internal/container"
	"github.com/pdiddy/lyxtab/internal/convert"
	"github.com/pdiddy/lyxtab/internal/ledger"
	"github.com/pdiddy/lyxtab/internal/lyx"
	"github.com/pdiddy/lyxtab/internal/texenv"
	"github.com/pdiddy/lyxtab/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files.lyx...]",
	Short: "Export LyX documents and crop each to its first table",
	Long: `Convert runs "lyx --export latex" on every document, then overwrites
each produced .tex file with just its first table environment. A document
whose export fails, or whose table never closes, is reported and the batch
moves on.

Use --dir to convert every document below a directory (filtered by --glob).
With --ledger, documents unchanged since their last successful conversion
are skipped.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", string(types.BackendNative), "export backend: native or container")
	convertCmd.Flags().String("lyx-bin", "lyx", "lyx executable for the native backend")
	convertCmd.Flags().String("image", "lyx:latest", "container image for the container backend")
	convertCmd.Flags().Duration("timeout", 0, "limit for a single export (0 = none)")
	convertCmd.Flags().String("dir", "", "convert all documents below this directory")
	convertCmd.Flags().String("glob", convert.DefaultGlob, "pattern for --dir, relative to the directory")
	convertCmd.Flags().String("ledger", "", "SQLite ledger used to skip unchanged documents")
	convertCmd.Flags().Bool("force", false, "convert even when the ledger says a document is unchanged")
	convertCmd.Flags().String("report", "", "write a run report (.yaml or .json)")

	for _, name := range []string{"backend", "lyx-bin", "image", "timeout", "glob", "ledger"} {
		_ = viper.BindPFlag(name, convertCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(convertCmd)
}

// conversionConfig resolves settings from flags, config file and env.
func conversionConfig() types.ConversionConfig {
	return types.ConversionConfig{
		ExportConfig: types.ExportConfig{
			Backend: types.ExportBackend(viper.GetString("backend")),
			LyXBin:  viper.GetString("lyx-bin"),
			Image:   viper.GetString("image"),
			Timeout: viper.GetDuration("timeout"),
		},
		Environments: viper.GetString("envs"),
		Glob:         viper.GetString("glob"),
		LedgerPath:   viper.GetString("ledger"),
	}
}

// newExporter builds the exporter selected by cfg.Backend.
func newExporter(cfg types.ExportConfig) (lyx.Exporter, error) {
	switch cfg.Backend {
	case types.BackendNative, "":
		return lyx.NewNativeExporter(cfg.LyXBin), nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return lyx.NewContainerExporter(rt, cfg.Image)
	default:
		return nil, fmt.Errorf("unsupported backend %q: use native or container", cfg.Backend)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig()
	cfg.Force, _ = cmd.Flags().GetBool("force")
	dir, _ := cmd.Flags().GetString("dir")
	reportPath, _ := cmd.Flags().GetString("report")

	paths := args
	if dir != "" {
		found, err := convert.Discover(dir, cfg.Glob)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("provide one or more .lyx files, or --dir")
	}

	ex, err := texenv.NewExtractor(cfg.Environments)
	if err != nil {
		return err
	}
	exp, err := newExporter(cfg.ExportConfig)
	if err != nil {
		return err
	}

	opts := convert.Options{Force: cfg.Force, Timeout: cfg.Timeout}
	if cfg.LedgerPath != "" {
		l, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer l.Close()
		opts.Ledger = l
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result := convert.ConvertBatch(ctx, exp, ex, paths, opts, os.Stdout)

	if reportPath != "" {
		if err := convert.WriteReport(reportPath, result); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Report written to", reportPath)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return ctx.Err()
}
