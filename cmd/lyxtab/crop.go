// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lyxtab/internal/convert"
	"github.com/pdiddy/lyxtab/internal/texenv"
)

var cropCmd = &cobra.Command{
	Use:   "crop [files.tex...]",
	Short: "Crop existing .tex files to their first table",
	Long: `Crop overwrites each .tex file with its first table environment without
running LyX. A file with no table is truncated; a file whose table never
closes is left untouched and reported as failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := texenv.NewExtractor(viper.GetString("envs"))
		if err != nil {
			return err
		}
		result := convert.CropBatch(ex, args, os.Stdout)
		if result.HasFailures() {
			return fmt.Errorf("%d file(s) failed", result.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cropCmd)
}
