// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitsolutions/edgar-engine/internal/fetch"
	"github.com/fitsolutions/edgar-engine/internal/report"
	"github.com/fitsolutions/edgar-engine/internal/store"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the report database (load, query)",
	Long: `Store manages a local SQLite database of extracted report rows. Use
subcommands to load filings into the database or query rows across
filings with full-text search over labels and concept names.`,
}

// --- load subcommand ---

var storeLoadCmd = &cobra.Command{
	Use:   "load [paths...]",
	Short: "Extract filings and index their rows in the database",
	Long: `Load extracts each filing and stores its report rows, replacing rows
from any previous load of the same filing. Arguments are filing
directories or instance document paths; with no arguments the filings
directory is processed.`,
	RunE: runStoreLoad,
}

func runStoreLoad(cmd *cobra.Command, args []string) error {
	cfg := extractConfig(cmd)

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.FilingsDir}
	}
	filings, err := fetch.LocalFilings(paths)
	if err != nil {
		return err
	}
	if len(filings) == 0 {
		return fmt.Errorf("no filings found")
	}

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Load(cmd.Context(), filings, report.Options{SkipEmptyRows: cfg.SkipEmptyRows}, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d filing(s) failed to load", result.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Query stored report rows",
	Long: `Query searches stored rows with FTS5 full-text search over labels and
concept names, optionally filtered by ticker, exact concept, or role
name. Full-text terms and filters combine with AND semantics.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := store.QueryOptions{Query: strings.Join(args, " ")}
	opts.Ticker, _ = cmd.Flags().GetString("ticker")
	opts.Concept, _ = cmd.Flags().GetString("concept")
	opts.Role, _ = cmd.Flags().GetString("role")
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")

	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --ticker, --concept, or --role")
	}

	results, err := s.Query(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-10s  %-35s  %-40s  %-21s  %s\n",
		"Ticker", "Date", "Concept", "Label", "Period", "Value")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))

	for _, r := range results {
		concept := r.Concept
		if len(concept) > 35 {
			concept = concept[:32] + "..."
		}
		label := r.Label
		if r.Member != "" {
			label += " [" + r.Member + "]"
		}
		if len(label) > 40 {
			label = label[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-6s  %-10s  %-35s  %-40s  %-21s  %s\n",
			r.Ticker, r.ReportDate, concept, label, r.Period, r.Value)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dbDir, _ := cmd.Flags().GetString("db-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.StoreConfig{
		DBDir:      configString(dbDir, "store.db_dir", "index"),
		MaxResults: configInt(maxResults, "store.max_results", 20),
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("db-dir", "", "directory containing the report database")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results")

	// Load flags.
	storeLoadCmd.Flags().String("filings-dir", "", "base directory for downloaded filings")
	storeLoadCmd.Flags().Bool("skip-empty-rows", false, "omit structural rows with no value in any period")

	// Query flags.
	storeQueryCmd.Flags().String("ticker", "", "filter by ticker symbol")
	storeQueryCmd.Flags().String("concept", "", "filter by exact concept name (e.g. us-gaap:Assets)")
	storeQueryCmd.Flags().String("role", "", "filter by statement role name")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	storeCmd.AddCommand(storeLoadCmd)
	storeCmd.AddCommand(storeQueryCmd)

	rootCmd.AddCommand(storeCmd)
}
