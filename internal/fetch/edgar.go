// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fitsolutions/edgar-engine/internal/httputil"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// EDGAR endpoints. Declared as vars so tests can substitute an httptest
// server.
var (
	tickerIndexURL  = "https://www.sec.gov/files/company_tickers.json"
	submissionsBase = "https://data.sec.gov/submissions"
	archivesBase    = "https://www.sec.gov/Archives/edgar/data"
)

// FilingRef identifies one filing listed in a company's submission index.
type FilingRef struct {
	AccessionNumber string
	Form            types.ReportType
	ReportDate      time.Time
}

// ResolveCIK looks up a ticker in the SEC company index and returns the
// zero-padded ten-digit CIK.
func ResolveCIK(ctx context.Context, client *http.Client, ticker string, cfg types.FetchConfig) (string, error) {
	var index map[string]struct {
		CIK    json.Number `json:"cik_str"`
		Ticker string      `json:"ticker"`
	}
	if err := getJSON(ctx, client, tickerIndexURL, cfg, &index); err != nil {
		return "", fmt.Errorf("fetching company index: %w", err)
	}

	upper := strings.ToUpper(ticker)
	for _, entry := range index {
		if strings.ToUpper(entry.Ticker) == upper {
			return fmt.Sprintf("%010s", entry.CIK.String()), nil
		}
	}
	return "", fmt.Errorf("ticker %q not found in SEC company index", ticker)
}

// ListFilings returns the company's recent 10-K and 10-Q filings from
// cfg.MinYear onward, most recent first (the order EDGAR reports them).
func ListFilings(ctx context.Context, client *http.Client, cik string, cfg types.FetchConfig) ([]FilingRef, error) {
	var submissions struct {
		Filings struct {
			Recent struct {
				AccessionNumber []string `json:"accessionNumber"`
				Form            []string `json:"form"`
				ReportDate      []string `json:"reportDate"`
			} `json:"recent"`
		} `json:"filings"`
	}
	url := fmt.Sprintf("%s/CIK%s.json", submissionsBase, cik)
	if err := getJSON(ctx, client, url, cfg, &submissions); err != nil {
		return nil, fmt.Errorf("fetching submissions for CIK %s: %w", cik, err)
	}

	recent := submissions.Filings.Recent
	var refs []FilingRef
	for i, form := range recent.Form {
		if form != string(types.Form10K) && form != string(types.Form10Q) {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.ReportDate) {
			break
		}
		reportDate, err := time.Parse("2006-01-02", recent.ReportDate[i])
		if err != nil {
			continue
		}
		if cfg.MinYear > 0 && reportDate.Year() < cfg.MinYear {
			continue
		}
		refs = append(refs, FilingRef{
			AccessionNumber: recent.AccessionNumber[i],
			Form:            types.ReportType(form),
			ReportDate:      reportDate,
		})
	}
	return refs, nil
}

// filingFiles lists the document names in a filing's EDGAR directory.
func filingFiles(ctx context.Context, client *http.Client, cik, accession string, cfg types.FetchConfig) ([]string, error) {
	var index struct {
		Directory struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"item"`
		} `json:"directory"`
	}
	url := fmt.Sprintf("%s/%s/%s/index.json", archivesBase, strings.TrimLeft(cik, "0"), strings.ReplaceAll(accession, "-", ""))
	if err := getJSON(ctx, client, url, cfg, &index); err != nil {
		return nil, fmt.Errorf("fetching filing index %s: %w", accession, err)
	}

	names := make([]string, 0, len(index.Directory.Items))
	for _, item := range index.Directory.Items {
		names = append(names, item.Name)
	}
	return names, nil
}

// fileURL returns the download URL of one document within a filing.
func fileURL(cik, accession, name string) string {
	return fmt.Sprintf("%s/%s/%s/%s", archivesBase, strings.TrimLeft(cik, "0"), strings.ReplaceAll(accession, "-", ""), name)
}

// classifyXML picks the Instance, Presentation, and Label document names
// out of a filing's file list. The instance is the XBRL .xml that is not
// a linkbase or schema companion ("_htm.xml" in modern inline filings).
func classifyXML(names []string) (instance, presentation, label string) {
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".xml") {
			continue
		}
		switch {
		case strings.HasSuffix(lower, "_pre.xml"):
			presentation = name
		case strings.HasSuffix(lower, "_lab.xml"):
			label = name
		case strings.HasSuffix(lower, "_cal.xml"), strings.HasSuffix(lower, "_def.xml"):
			// calculation and definition linkbases are not consumed
		case strings.HasSuffix(lower, "_htm.xml"):
			instance = name
		default:
			if instance == "" && !strings.HasPrefix(lower, "r") {
				instance = name
			}
		}
	}
	return instance, presentation, label
}

// getJSON fetches a URL with retry on throttling responses and decodes
// the body as JSON.
func getJSON(ctx context.Context, client *http.Client, url string, cfg types.FetchConfig, v any) error {
	resp, err := getWithRetry(ctx, client, url, cfg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

func getWithRetry(ctx context.Context, client *http.Client, url string, cfg types.FetchConfig) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return resp, nil
}
