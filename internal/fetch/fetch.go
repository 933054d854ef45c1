// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves XBRL submissions from SEC EDGAR: it resolves
// tickers to CIKs, lists recent 10-K/10-Q filings, and downloads each
// filing's Instance document, Presentation linkbase, and Label linkbase
// into a per-ticker directory with a metadata record.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// BatchResult holds the outcome of a batch retrieval run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Filings    []types.Filing
}

// Total returns the total number of filings processed.
func (r BatchResult) Total() int { return r.Downloaded + r.Skipped + r.Failed }

// HasFailures reports whether any filing failed.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// FetchTicker downloads every qualifying filing for one ticker,
// printing per-filing status and continuing after individual failures.
func FetchTicker(ctx context.Context, client *http.Client, ticker string, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult

	cik, err := ResolveCIK(ctx, client, ticker, cfg)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", ticker, err)
		result.Failed++
		return result
	}

	refs, err := ListFilings(ctx, client, cik, cfg)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", ticker, err)
		result.Failed++
		return result
	}
	if len(refs) == 0 {
		fmt.Fprintf(w, "no 10-K/10-Q filings since %d for %s\n", cfg.MinYear, ticker)
		return result
	}

	for i, ref := range refs {
		if i > 0 && cfg.RequestDelay > 0 {
			time.Sleep(cfg.RequestDelay)
		}
		filing, skipped, err := fetchFiling(ctx, client, strings.ToUpper(ticker), cik, ref, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s %s (%v)\n", ticker, ref.AccessionNumber, err)
			result.Failed++
			continue
		}
		if skipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Filings = append(result.Filings, filing)
	}

	fmt.Fprintf(w, "\n%s: %d downloaded, %d skipped, %d failed (total: %d)\n",
		ticker, result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// fetchFiling downloads the XBRL documents of one filing. Filings whose
// instance document is already on disk are skipped.
func fetchFiling(ctx context.Context, client *http.Client, ticker, cik string, ref FilingRef, cfg types.FetchConfig, w io.Writer) (types.Filing, bool, error) {
	names, err := filingFiles(ctx, client, cik, ref.AccessionNumber, cfg)
	if err != nil {
		return types.Filing{}, false, err
	}

	instance, presentation, label := classifyXML(names)
	if instance == "" || presentation == "" {
		return types.Filing{}, false, fmt.Errorf("no XBRL instance/presentation pair in filing %s", ref.AccessionNumber)
	}

	dir := filepath.Join(cfg.FilingsDir, ticker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Filing{}, false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	filing := types.Filing{
		Ticker:           ticker,
		CIK:              cik,
		ReportType:       ref.Form,
		PeriodEnd:        ref.ReportDate,
		AccessionNumber:  ref.AccessionNumber,
		InstancePath:     filepath.Join(dir, instance),
		PresentationPath: filepath.Join(dir, presentation),
	}
	if label != "" {
		filing.LabelPath = filepath.Join(dir, label)
	}

	if _, err := os.Stat(filing.InstancePath); err == nil {
		fmt.Fprintf(w, "skipped: %s %s (already exists)\n", ticker, ref.AccessionNumber)
		return filing, true, nil
	}

	fmt.Fprintf(w, "downloading: %s %s (%s %s)\n",
		ticker, ref.AccessionNumber, ref.Form, ref.ReportDate.Format("2006-01-02"))

	downloads := []struct{ name, dest string }{
		{instance, filing.InstancePath},
		{presentation, filing.PresentationPath},
	}
	if label != "" {
		downloads = append(downloads, struct{ name, dest string }{label, filing.LabelPath})
	}
	for _, d := range downloads {
		if cfg.RequestDelay > 0 {
			time.Sleep(cfg.RequestDelay)
		}
		if err := downloadFile(ctx, client, fileURL(cik, ref.AccessionNumber, d.name), d.dest, cfg); err != nil {
			return types.Filing{}, false, fmt.Errorf("downloading %s: %w", d.name, err)
		}
	}

	if err := writeMetadata(filing); err != nil {
		return types.Filing{}, false, fmt.Errorf("writing metadata for %s: %w", ref.AccessionNumber, err)
	}

	return filing, false, nil
}

// downloadFile fetches url to destPath using a temporary file so a
// partial download never masquerades as a complete document.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	resp, err := getWithRetry(ctx, client, url, cfg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
