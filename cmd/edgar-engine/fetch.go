// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitsolutions/edgar-engine/internal/fetch"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultDelay      = time.Second
	defaultMinYear    = 2020
	defaultFilingsDir = "filings"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [tickers...]",
	Short: "Download XBRL filings from SEC EDGAR",
	Long: `Fetch resolves each ticker to its SEC CIK, lists recent 10-K and 10-Q
submissions, and downloads each filing's XBRL documents (instance,
presentation linkbase, label linkbase) into filings/<TICKER>/. Filings
already on disk are skipped.

EDGAR requires a declared contact identity; set --user-agent or the
fetch.user_agent config key to something like "Sample Co admin@example.com".`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive EDGAR requests (default 1s)")
	fetchCmd.Flags().Int("min-year", 0, "earliest filing year to download (default 2020)")
	fetchCmd.Flags().String("filings-dir", "", "base directory for downloaded filings")
	fetchCmd.Flags().String("user-agent", "", "User-Agent header with contact identity, required by EDGAR")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more ticker symbols")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	minYear, _ := cmd.Flags().GetInt("min-year")
	filingsDir, _ := cmd.Flags().GetString("filings-dir")
	userAgent, _ := cmd.Flags().GetString("user-agent")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   configDuration(timeout, "fetch.timeout", defaultTimeout),
			UserAgent: configString(userAgent, "fetch.user_agent", ""),
		},
		RequestDelay: configDuration(delay, "fetch.request_delay", defaultDelay),
		MinYear:      configInt(minYear, "fetch.min_year", defaultMinYear),
		FilingsDir:   configString(filingsDir, "fetch.filings_dir", defaultFilingsDir),
	}
	if cfg.UserAgent == "" {
		return fmt.Errorf("EDGAR requires a contact identity: set --user-agent or the fetch.user_agent config key")
	}

	client := &http.Client{Timeout: cfg.Timeout}

	failed := 0
	for _, ticker := range args {
		result := fetch.FetchTicker(cmd.Context(), client, strings.ToUpper(ticker), cfg, os.Stdout)
		failed += result.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d filing(s) failed to download", failed)
	}
	return nil
}
