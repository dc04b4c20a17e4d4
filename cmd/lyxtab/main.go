// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lyxtab CLI. lyxtab exports LyX
// documents to LaTeX and crops each result down to its first table.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lyxtab/internal/texenv"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the lyxtab CLI.
var rootCmd = &cobra.Command{
	Use:   "lyxtab",
	Short: "Turn LyX documents into standalone LaTeX tables",
	Long: `lyxtab runs "lyx --export latex" on each document and overwrites the
resulting .tex file with the first tabular (or sideways) environment it
contains, ready to be \input into another document.

Settings can come from flags, a lyxtab.yaml config file, or LYXTAB_*
environment variables.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lyxtab.yaml or ~/.config/lyxtab/config.yaml)")
	rootCmd.PersistentFlags().String("envs", texenv.DefaultEnvironments, "regular expression of environment names to extract")
	_ = viper.BindPFlag("envs", rootCmd.PersistentFlags().Lookup("envs"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lyxtab")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lyxtab"))
		}
	}

	viper.SetEnvPrefix("LYXTAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
