// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// csvHeader is the column layout handed to downstream consumers: one
// line per (row, period) pair, stable across filings.
var csvHeader = []string{
	"Ticker", "Report_Date", "Role", "Depth", "Concept", "Label",
	"Dimension", "Member", "Period", "Value", "Value_Rounding",
}

// WriteCSV serializes a filing result as CSV. Rows appear in assembly
// order; placeholder rows keep their line with an empty value so the
// statement structure survives serialization. Unclassified facts are
// written under the literal role "unclassified".
func WriteCSV(w io.Writer, result types.FilingResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	reportDate := result.ReportDate.Format("20060102")

	writeRow := func(roleName string, row types.ReportRow) error {
		if len(row.Values) == 0 {
			return cw.Write(record(result.Filing.Ticker, reportDate, roleName, row, types.PeriodValue{}))
		}
		for _, pv := range row.Values {
			if err := cw.Write(record(result.Filing.Ticker, reportDate, roleName, row, pv)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, rr := range result.Reports {
		for _, row := range rr.Rows {
			if err := writeRow(rr.Name, row); err != nil {
				return err
			}
		}
	}
	for _, row := range result.Unclassified {
		if err := writeRow("unclassified", row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func record(ticker, reportDate, roleName string, row types.ReportRow, pv types.PeriodValue) []string {
	period := ""
	if !pv.Period.End.IsZero() {
		period = pv.Period.Key()
	}
	return []string{
		ticker,
		reportDate,
		roleName,
		strconv.Itoa(row.Depth),
		row.Concept,
		row.Label,
		row.Dimension,
		row.Member,
		period,
		pv.Value,
		row.Decimals,
	}
}

// CombineCSV concatenates every per-filing CSV in dir into
// <TICKER>_combined.csv, keeping a single header line. An existing
// combined file is overwritten, not appended to.
func CombineCSV(dir, ticker string) error {
	combinedName := ticker + "_combined.csv"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var sources []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") || strings.EqualFold(name, combinedName) {
			continue
		}
		sources = append(sources, filepath.Join(dir, name))
	}
	if len(sources) == 0 {
		return fmt.Errorf("no CSV files to combine in %s", dir)
	}

	out, err := os.Create(filepath.Join(dir, combinedName))
	if err != nil {
		return err
	}
	defer out.Close()

	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, src := range sources {
		if err := appendCSV(cw, src); err != nil {
			return fmt.Errorf("combining %s: %w", src, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func appendCSV(cw *csv.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if first {
			first = false
			continue
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
}

// warningsFile is the YAML shape of the per-filing warnings report.
type warningsFile struct {
	Filing   types.Filing    `yaml:"filing"`
	Error    string          `yaml:"error,omitempty"`
	Warnings []types.Warning `yaml:"warnings"`
}

// WriteWarningsYAML records a filing's warnings (and failure reason, if
// any) next to its CSV so dropped facts and skipped roles are never
// merely logged and lost.
func WriteWarningsYAML(path string, result types.FilingResult) error {
	data, err := yaml.Marshal(warningsFile{
		Filing:   result.Filing,
		Error:    result.Err,
		Warnings: result.Warnings,
	})
	if err != nil {
		return fmt.Errorf("marshaling warnings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
