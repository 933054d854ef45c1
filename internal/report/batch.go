// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Failed    int
	Results   []types.FilingResult
}

// Total returns the number of filings processed.
func (r BatchResult) Total() int { return r.Extracted + r.Failed }

// HasFailures reports whether any filing failed.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// ExtractBatch assembles each filing and writes its CSV and warnings
// report next to the instance document. Filings are independent, so up
// to cfg.Workers of them run concurrently; output is reported in input
// order once all workers finish. After extraction, per-ticker combined
// CSVs are rebuilt for every directory touched.
func ExtractBatch(filings []types.Filing, cfg types.ExtractConfig, w io.Writer) BatchResult {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	opts := Options{SkipEmptyRows: cfg.SkipEmptyRows}

	results := make([]types.FilingResult, len(filings))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, filing := range filings {
		i, filing := i, filing
		g.Go(func() error {
			results[i] = ExtractFiling(filing, opts)
			return nil
		})
	}
	g.Wait()

	var batch BatchResult
	batch.Results = results
	dirs := make(map[string]string) // dir → ticker

	for _, res := range results {
		base := strings.TrimSuffix(res.Filing.InstancePath, filepath.Ext(res.Filing.InstancePath))

		if res.Failed() {
			fmt.Fprintf(w, "failed  %s: %s\n", filingName(res.Filing), res.Err)
			if err := WriteWarningsYAML(base+"_warnings.yaml", res); err != nil {
				fmt.Fprintf(w, "warning: writing warnings report: %v\n", err)
			}
			batch.Failed++
			continue
		}

		csvPath := base + ".csv"
		if err := writeCSVFile(csvPath, res); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", filingName(res.Filing), err)
			batch.Failed++
			continue
		}
		if err := WriteWarningsYAML(base+"_warnings.yaml", res); err != nil {
			fmt.Fprintf(w, "warning: writing warnings report: %v\n", err)
		}

		fmt.Fprintf(w, "wrote   %s (%d roles, %d unclassified facts, %d warnings)\n",
			csvPath, len(res.Reports), len(res.Unclassified), len(res.Warnings))
		batch.Extracted++
		dirs[filepath.Dir(res.Filing.InstancePath)] = res.Filing.Ticker
	}

	for dir, ticker := range dirs {
		if ticker == "" {
			continue
		}
		if err := CombineCSV(dir, ticker); err != nil {
			fmt.Fprintf(w, "warning: combining CSVs for %s: %v\n", ticker, err)
			continue
		}
		fmt.Fprintf(w, "combined %s\n", filepath.Join(dir, ticker+"_combined.csv"))
	}

	fmt.Fprintf(w, "\nextracted: %d, failed: %d\n", batch.Extracted, batch.Failed)
	return batch
}

func writeCSVFile(path string, result types.FilingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteCSV(f, result); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func filingName(f types.Filing) string {
	if f.AccessionNumber != "" {
		return f.AccessionNumber
	}
	return filepath.Base(f.InstancePath)
}
