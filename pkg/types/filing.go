// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the edgar-engine pipeline.
package types

import "time"

// ReportType identifies the SEC form of a filing.
type ReportType string

const (
	Form10K ReportType = "10-K"
	Form10Q ReportType = "10-Q"
)

// Filing identifies one SEC filing and the local XML documents that
// make up its XBRL submission. The Label path is optional; not every
// filer attaches a label linkbase.
type Filing struct {
	// Ticker is the stock symbol the filing was retrieved under.
	Ticker string `json:"ticker" yaml:"ticker"`

	// CIK is the SEC Central Index Key of the filer.
	CIK string `json:"cik" yaml:"cik"`

	// ReportType is the form type (10-K or 10-Q).
	ReportType ReportType `json:"report_type" yaml:"report_type"`

	// PeriodEnd is the reporting period end date from the filing index.
	PeriodEnd time.Time `json:"period_end" yaml:"period_end"`

	// AccessionNumber is the EDGAR accession number (e.g. "0000320193-24-000123").
	AccessionNumber string `json:"accession_number" yaml:"accession_number"`

	// InstancePath, PresentationPath, and LabelPath locate the downloaded
	// XBRL documents on local storage.
	InstancePath     string `json:"instance_path" yaml:"instance_path"`
	PresentationPath string `json:"presentation_path" yaml:"presentation_path"`
	LabelPath        string `json:"label_path,omitempty" yaml:"label_path,omitempty"`
}

// Period is a reporting period: an instant or a start/end date range.
// An instant period has a zero Start and the instant date in End.
type Period struct {
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End   time.Time `json:"end" yaml:"end"`
}

// IsInstant reports whether the period is a point-in-time date.
func (p Period) IsInstant() bool { return p.Start.IsZero() }

// Key returns a stable string form used for period matching and column
// headers ("2024-12-31" or "2024-01-01/2024-12-31").
func (p Period) Key() string {
	if p.IsInstant() {
		return p.End.Format("2006-01-02")
	}
	return p.Start.Format("2006-01-02") + "/" + p.End.Format("2006-01-02")
}

// Before reports whether p sorts before q in most-recent-first column
// order: later end dates first, ties broken by later start dates.
func (p Period) Before(q Period) bool {
	if !p.End.Equal(q.End) {
		return p.End.After(q.End)
	}
	return p.Start.After(q.Start)
}

// PeriodValue is one value column of a report row. Value is empty when
// the concept reported nothing for the period.
type PeriodValue struct {
	Period Period `json:"period" yaml:"period"`
	Value  string `json:"value" yaml:"value"`
}

// ReportRow is one line of an assembled statement: a concept visited in
// presentation order with its resolved label, indentation depth, and one
// value per period column.
type ReportRow struct {
	// Concept is the namespace-qualified tag (e.g. "us-gaap:Assets").
	Concept string `json:"concept" yaml:"concept"`

	// Label is the display string chosen by the label resolver.
	Label string `json:"label" yaml:"label"`

	// Depth is the node's depth in the presentation forest, used for
	// indentation only.
	Depth int `json:"depth" yaml:"depth"`

	// Role is the presentation role URI the row belongs to.
	Role string `json:"role" yaml:"role"`

	// Dimension and Member are set on dimensional breakdown rows
	// (e.g. a segment member reported under its parent line item).
	Dimension string `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Member    string `json:"member,omitempty" yaml:"member,omitempty"`

	// Decimals is the rounding indicator carried from the fact
	// ("-3" means rounded to thousands; "INF" or empty means exact).
	// Values are never re-scaled by it.
	Decimals string `json:"decimals,omitempty" yaml:"decimals,omitempty"`

	// Values holds one entry per period column, most recent first.
	Values []PeriodValue `json:"values" yaml:"values"`
}

// WarningKind classifies recoverable per-filing problems.
type WarningKind string

const (
	WarnDanglingContextRef WarningKind = "dangling_context_ref"
	WarnSkippedRole        WarningKind = "skipped_role"
	WarnLabelFallback      WarningKind = "label_fallback"
	WarnDuplicateFact      WarningKind = "duplicate_fact"
	WarnSuppressedValue    WarningKind = "suppressed_value"
)

// Warning records a recoverable problem encountered while processing a
// filing: a dropped fact, a suppressed role, a label fallback. Warnings
// attach to the filing's result rather than being logged and lost.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

// RoleReport holds the assembled rows of a single presentation role.
type RoleReport struct {
	// Role is the role URI; Name is its trailing path segment
	// (e.g. "BalanceSheet"), used for display.
	Role string `json:"role" yaml:"role"`
	Name string `json:"name" yaml:"name"`

	Rows []ReportRow `json:"rows" yaml:"rows"`
}

// FilingResult is the per-filing outcome handed to the caller:
// success-with-warnings or failure-with-reason, never a fault that
// aborts a multi-filing batch.
type FilingResult struct {
	Filing Filing `json:"filing" yaml:"filing"`

	// ReportDate is the filing's DocumentPeriodEndDate, or the filing
	// identity's period end when the fact is absent.
	ReportDate time.Time `json:"report_date" yaml:"report_date"`

	// Reports holds one entry per successfully assembled role.
	Reports []RoleReport `json:"reports" yaml:"reports"`

	// Unclassified holds rows for facts whose concept appears in no
	// role's forest. Financial data is surfaced here rather than dropped.
	Unclassified []ReportRow `json:"unclassified,omitempty" yaml:"unclassified,omitempty"`

	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Err is the document-scoped failure reason, empty on success.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the filing was aborted by a document-scoped error.
func (r FilingResult) Failed() bool { return r.Err != "" }
