// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fitsolutions/edgar-engine/internal/fetch"
	"github.com/fitsolutions/edgar-engine/internal/report"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract downloaded filings into CSV report tables",
	Long: `Extract assembles each filing's XBRL documents into ordered report
tables and writes one CSV per filing next to its instance document, plus
a per-ticker combined CSV and a warnings YAML per filing.

Arguments are filing directories (scanned for instance documents) or
instance document paths. With no arguments the filings directory is
processed.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("filings-dir", "", "base directory for downloaded filings")
	extractCmd.Flags().Int("workers", 0, "number of filings extracted concurrently (default 1)")
	extractCmd.Flags().Bool("skip-empty-rows", false, "omit structural rows with no value in any period")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractConfig(cmd)

	paths := args
	if len(paths) == 0 {
		entries, err := os.ReadDir(cfg.FilingsDir)
		if err != nil {
			return fmt.Errorf("reading filings directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				paths = append(paths, filepath.Join(cfg.FilingsDir, e.Name()))
			}
		}
		if len(paths) == 0 {
			return fmt.Errorf("no filings found under %s", cfg.FilingsDir)
		}
	}

	filings, err := fetch.LocalFilings(paths)
	if err != nil {
		return err
	}
	if len(filings) == 0 {
		return fmt.Errorf("no filings found")
	}

	result := report.ExtractBatch(filings, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d filing(s) failed extraction", result.Failed)
	}
	return nil
}

func extractConfig(cmd *cobra.Command) types.ExtractConfig {
	filingsDir, _ := cmd.Flags().GetString("filings-dir")
	workers, _ := cmd.Flags().GetInt("workers")
	skipEmpty, _ := cmd.Flags().GetBool("skip-empty-rows")

	return types.ExtractConfig{
		FilingsDir:    configString(filingsDir, "extract.filings_dir", defaultFilingsDir),
		SkipEmptyRows: skipEmpty,
		Workers:       configInt(workers, "extract.workers", 1),
	}
}
