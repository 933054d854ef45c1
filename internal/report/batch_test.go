// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

func writeTestFiling(t *testing.T, dir, stem string) types.Filing {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	instance := filepath.Join(dir, stem+".xml")
	pre := filepath.Join(dir, stem+"_pre.xml")
	lab := filepath.Join(dir, stem+"_lab.xml")
	for path, content := range map[string]string{
		instance: fixtureInstance,
		pre:      fixturePresentation,
		lab:      fixtureLabel,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return types.Filing{
		Ticker:           "AAPL",
		InstancePath:     instance,
		PresentationPath: pre,
		LabelPath:        lab,
	}
}

func TestExtractBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AAPL")
	filings := []types.Filing{
		writeTestFiling(t, dir, "aapl-20241231"),
		writeTestFiling(t, dir, "aapl-20240930"),
	}

	var buf strings.Builder
	result := ExtractBatch(filings, types.ExtractConfig{Workers: 2}, &buf)

	if result.Extracted != 2 || result.Failed != 0 {
		t.Fatalf("Extracted = %d, Failed = %d; output:\n%s", result.Extracted, result.Failed, buf.String())
	}
	if result.Total() != 2 || result.HasFailures() {
		t.Errorf("Total = %d, HasFailures = %v", result.Total(), result.HasFailures())
	}

	for _, stem := range []string{"aapl-20241231", "aapl-20240930"} {
		if _, err := os.Stat(filepath.Join(dir, stem+".csv")); err != nil {
			t.Errorf("missing CSV for %s: %v", stem, err)
		}
		if _, err := os.Stat(filepath.Join(dir, stem+"_warnings.yaml")); err != nil {
			t.Errorf("missing warnings report for %s: %v", stem, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "AAPL_combined.csv")); err != nil {
		t.Errorf("missing combined CSV: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "wrote   ") != 2 {
		t.Errorf("output should report each written CSV:\n%s", out)
	}
	if !strings.Contains(out, "extracted: 2, failed: 0") {
		t.Errorf("missing summary line:\n%s", out)
	}
}

func TestExtractBatchReportsResultsInInputOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AAPL")
	filings := []types.Filing{
		writeTestFiling(t, dir, "first"),
		writeTestFiling(t, dir, "second"),
		writeTestFiling(t, dir, "third"),
	}

	var buf strings.Builder
	result := ExtractBatch(filings, types.ExtractConfig{Workers: 3}, &buf)
	if result.Failed != 0 {
		t.Fatalf("output:\n%s", buf.String())
	}

	out := buf.String()
	if !(strings.Index(out, "first.csv") < strings.Index(out, "second.csv") &&
		strings.Index(out, "second.csv") < strings.Index(out, "third.csv")) {
		t.Errorf("progress lines out of input order:\n%s", out)
	}
}

func TestExtractBatchContinuesPastFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AAPL")
	good := writeTestFiling(t, dir, "good")
	bad := types.Filing{
		Ticker:           "AAPL",
		InstancePath:     filepath.Join(dir, "missing.xml"),
		PresentationPath: filepath.Join(dir, "missing_pre.xml"),
	}

	var buf strings.Builder
	result := ExtractBatch([]types.Filing{bad, good}, types.ExtractConfig{}, &buf)

	if result.Extracted != 1 || result.Failed != 1 {
		t.Fatalf("Extracted = %d, Failed = %d", result.Extracted, result.Failed)
	}
	out := buf.String()
	if !strings.Contains(out, "failed  ") {
		t.Errorf("missing failure line:\n%s", out)
	}
	// The failed filing still gets a warnings report with its reason.
	if _, err := os.Stat(filepath.Join(dir, "missing_warnings.yaml")); err != nil {
		t.Errorf("missing warnings report for failed filing: %v", err)
	}
	if !strings.Contains(out, "extracted: 1, failed: 1") {
		t.Errorf("missing summary line:\n%s", out)
	}
}
