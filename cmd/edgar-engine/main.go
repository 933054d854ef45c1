// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the edgar-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the edgar-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "edgar-engine",
	Short: "SEC EDGAR XBRL filing extraction",
	Long: `edgar-engine downloads XBRL filings from SEC EDGAR and extracts their
financial statements into ordered report tables.

Each pipeline stage is a subcommand: fetch downloads a ticker's 10-K and
10-Q submissions, extract assembles the XBRL documents into per-statement
CSV reports, and store indexes extracted rows in a queryable SQLite
database.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./edgar-engine.yaml or ~/.config/edgar-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("edgar-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "edgar-engine"))
		}
	}

	viper.SetEnvPrefix("EDGAR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configString returns the flag value when set, then the config file
// value, then the built-in default.
func configString(flagVal, key, fallback string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func configDuration(flagVal time.Duration, key string, fallback time.Duration) time.Duration {
	if flagVal != 0 {
		return flagVal
	}
	if v := viper.GetDuration(key); v != 0 {
		return v
	}
	return fallback
}

func configInt(flagVal int, key string, fallback int) int {
	if flagVal != 0 {
		return flagVal
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
