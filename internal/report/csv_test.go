// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

func sampleFilingResult() types.FilingResult {
	end, _ := time.Parse("2006-01-02", "2024-12-31")
	prior, _ := time.Parse("2006-01-02", "2023-12-31")
	return types.FilingResult{
		Filing:     types.Filing{Ticker: "AAPL"},
		ReportDate: end,
		Reports: []types.RoleReport{{
			Role: "http://example.com/role/BalanceSheet",
			Name: "BalanceSheet",
			Rows: []types.ReportRow{
				{
					Concept: "us-gaap:Assets", Label: "Total Assets", Depth: 0,
					Role: "http://example.com/role/BalanceSheet", Decimals: "-3",
					Values: []types.PeriodValue{
						{Period: types.Period{End: end}, Value: "359000000"},
						{Period: types.Period{End: prior}, Value: "352000000"},
					},
				},
				{
					Concept: "us-gaap:AssetsCurrent", Label: "AssetsCurrent", Depth: 1,
					Role:   "http://example.com/role/BalanceSheet",
					Values: []types.PeriodValue{{Period: types.Period{End: end}}},
				},
			},
		}},
		Unclassified: []types.ReportRow{{
			Concept: "dei:DocumentPeriodEndDate", Label: "DocumentPeriodEndDate",
			Values: []types.PeriodValue{{Period: types.Period{End: end}, Value: "2024-12-31"}},
		}},
		Warnings: []types.Warning{{Kind: types.WarnLabelFallback, Message: "no label for us-gaap:AssetsCurrent: using concept name"}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, sampleFilingResult()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	// Header + 2 Assets periods + 1 placeholder + 1 unclassified.
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5:\n%s", len(records), buf.String())
	}

	header := strings.Join(records[0], ",")
	want := "Ticker,Report_Date,Role,Depth,Concept,Label,Dimension,Member,Period,Value,Value_Rounding"
	if header != want {
		t.Errorf("header = %s", header)
	}

	first := records[1]
	if first[0] != "AAPL" || first[1] != "20241231" || first[2] != "BalanceSheet" {
		t.Errorf("first record = %v", first)
	}
	if first[4] != "us-gaap:Assets" || first[8] != "2024-12-31" || first[9] != "359000000" || first[10] != "-3" {
		t.Errorf("first record = %v", first)
	}

	// Placeholder rows keep their line with an empty value.
	placeholder := records[3]
	if placeholder[4] != "us-gaap:AssetsCurrent" || placeholder[9] != "" {
		t.Errorf("placeholder record = %v", placeholder)
	}

	// Unclassified facts land under a literal role name.
	if records[4][2] != "unclassified" {
		t.Errorf("unclassified role = %q", records[4][2])
	}
}

func TestCombineCSV(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.csv", "b.csv"} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := WriteCSV(f, sampleFilingResult()); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	// A stale combined file from an earlier run must not be re-ingested.
	stale := filepath.Join(dir, "AAPL_combined.csv")
	if err := os.WriteFile(stale, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CombineCSV(dir, "AAPL"); err != nil {
		t.Fatalf("CombineCSV: %v", err)
	}

	data, err := os.ReadFile(stale)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// One header plus 4 data lines from each source file.
	if len(records) != 9 {
		t.Errorf("combined records = %d, want 9", len(records))
	}
	headers := 0
	for _, rec := range records {
		if rec[0] == "Ticker" {
			headers++
		}
	}
	if headers != 1 {
		t.Errorf("combined file has %d header lines, want 1", headers)
	}
}

func TestCombineCSVEmptyDir(t *testing.T) {
	if err := CombineCSV(t.TempDir(), "AAPL"); err == nil {
		t.Error("expected error for a directory with no CSVs")
	}
}

func TestWriteWarningsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnings.yaml")
	result := sampleFilingResult()

	if err := WriteWarningsYAML(path, result); err != nil {
		t.Fatalf("WriteWarningsYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded warningsFile
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshaling warnings file: %v", err)
	}
	if decoded.Filing.Ticker != "AAPL" {
		t.Errorf("Ticker = %q", decoded.Filing.Ticker)
	}
	if len(decoded.Warnings) != 1 || decoded.Warnings[0].Kind != types.WarnLabelFallback {
		t.Errorf("warnings = %+v", decoded.Warnings)
	}
}
