// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles parsed XBRL documents into ordered report
// rows: facts joined to their contexts, walked in the presentation
// forest's depth-first sibling order, labeled, and columned by reporting
// period.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fitsolutions/edgar-engine/internal/xbrl"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// Options control assembly behavior.
type Options struct {
	// SkipEmptyRows suppresses structural placeholder rows with no
	// value in any period column.
	SkipEmptyRows bool
}

// Extraction is the assembled output of one filing's document set.
type Extraction struct {
	ReportDate   time.Time
	Reports      []types.RoleReport
	Unclassified []types.ReportRow
	Warnings     []types.Warning
}

// assembly carries all per-filing state through one assembly run. State
// lives here, never in package variables, so independent filings can be
// assembled concurrently.
type assembly struct {
	contexts  map[string]xbrl.Context
	byConcept map[string][]xbrl.Fact
	labels    *xbrl.LabelSet
	opts      Options

	warnings   []types.Warning
	fellBack   map[string]bool
	suppressed map[string]bool
}

// Assemble runs the full pipeline on one filing's raw documents: context
// index and fact extraction from the Instance, forest construction from
// the Presentation linkbase, label resolution from the optional Label
// linkbase, and per-role row assembly. Document-scoped errors
// (malformed XML, ambiguous context ids) abort the filing; role- and
// fact-scoped problems degrade to warnings on the Extraction.
func Assemble(instance, presentation, label []byte, opts Options) (*Extraction, error) {
	contexts, err := xbrl.ParseContexts(instance)
	if err != nil {
		return nil, err
	}

	facts, warnings, err := xbrl.ParseFacts(instance, contexts)
	if err != nil {
		return nil, err
	}

	forests, roleErrs, err := xbrl.ParsePresentation(presentation)
	if err != nil {
		return nil, err
	}
	for _, rerr := range roleErrs {
		warnings = append(warnings, types.Warning{
			Kind:    types.WarnSkippedRole,
			Message: rerr.Error(),
		})
	}

	var labels *xbrl.LabelSet
	if len(label) > 0 {
		labels, err = xbrl.ParseLabels(label)
		if err != nil {
			return nil, err
		}
	}

	a := &assembly{
		contexts:   contexts,
		labels:     labels,
		opts:       opts,
		warnings:   warnings,
		fellBack:   make(map[string]bool),
		suppressed: make(map[string]bool),
	}
	a.byConcept = a.dedupeFacts(facts)

	ext := &Extraction{ReportDate: reportDate(facts)}

	roles := make([]string, 0, len(forests))
	for role := range forests {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		ext.Reports = append(ext.Reports, types.RoleReport{
			Role: role,
			Name: roleName(role),
			Rows: a.assembleRole(forests[role]),
		})
	}

	ext.Unclassified = a.unclassifiedRows(forests)
	ext.Warnings = a.warnings
	return ext, nil
}

// ExtractFiling reads a filing's documents from local storage and
// assembles them. Failures become a failure-with-reason result rather
// than an error, so one bad filing never aborts a batch.
func ExtractFiling(filing types.Filing, opts Options) types.FilingResult {
	result := types.FilingResult{Filing: filing, ReportDate: filing.PeriodEnd}

	instance, err := os.ReadFile(filing.InstancePath)
	if err != nil {
		result.Err = fmt.Sprintf("reading instance document: %v", err)
		return result
	}
	presentation, err := os.ReadFile(filing.PresentationPath)
	if err != nil {
		result.Err = fmt.Sprintf("reading presentation linkbase: %v", err)
		return result
	}
	var label []byte
	if filing.LabelPath != "" {
		if label, err = os.ReadFile(filing.LabelPath); err != nil {
			result.Err = fmt.Sprintf("reading label linkbase: %v", err)
			return result
		}
	}

	ext, err := Assemble(instance, presentation, label, opts)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	if !ext.ReportDate.IsZero() {
		result.ReportDate = ext.ReportDate
	}
	result.Reports = ext.Reports
	result.Unclassified = ext.Unclassified
	result.Warnings = ext.Warnings
	return result
}

// dedupeFacts groups facts by concept and picks one winner per
// concept+context pair: the fact with the higher stated precision, then
// the first seen. Filers occasionally report the same value twice with
// distinct id attributes.
func (a *assembly) dedupeFacts(facts []xbrl.Fact) map[string][]xbrl.Fact {
	type key struct{ concept, contextRef string }
	winners := make(map[key]int)
	byConcept := make(map[string][]xbrl.Fact)

	for _, f := range facts {
		k := key{f.Concept, f.ContextRef}
		idx, seen := winners[k]
		if !seen {
			winners[k] = len(byConcept[f.Concept])
			byConcept[f.Concept] = append(byConcept[f.Concept], f)
			continue
		}
		prev := byConcept[f.Concept][idx]
		if f.PrecisionRank() > prev.PrecisionRank() {
			byConcept[f.Concept][idx] = f
			a.warn(types.WarnDuplicateFact,
				"duplicate fact %s in context %s: kept higher-precision value", f.Concept, f.ContextRef)
		} else {
			a.warn(types.WarnDuplicateFact,
				"duplicate fact %s in context %s: kept first-seen value", f.Concept, f.ContextRef)
		}
	}
	return byConcept
}

// assembleRole emits the role's rows in depth-first sibling order.
// Depth is display indentation only; ordering comes from the arcs.
func (a *assembly) assembleRole(forest *xbrl.Forest) []types.ReportRow {
	periods := a.rolePeriods(forest)

	var rows []types.ReportRow
	var visit func(concept string, depth int, preferredLabel string)
	visit = func(concept string, depth int, preferredLabel string) {
		label := a.conceptLabel(concept, preferredLabel)

		values := make([]types.PeriodValue, len(periods))
		decimals := ""
		populated := false
		for i, p := range periods {
			values[i].Period = p
			if f, ok := a.factFor(concept, p); ok {
				values[i].Value = a.formatValue(f)
				if decimals == "" {
					decimals = f.Decimals
				}
				populated = true
			}
		}

		if populated || !a.opts.SkipEmptyRows {
			rows = append(rows, types.ReportRow{
				Concept:  concept,
				Label:    label,
				Depth:    depth,
				Role:     forest.Role,
				Decimals: decimals,
				Values:   values,
			})
		}

		rows = append(rows, a.dimensionalRows(concept, depth+1, forest.Role, periods)...)

		for _, child := range forest.Children(concept) {
			visit(child.Concept, depth+1, child.PreferredLabel)
		}
	}

	for _, root := range forest.Roots() {
		visit(root, 0, "")
	}
	return rows
}

// rolePeriods collects the distinct reporting periods among the role's
// facts, sorted most recent first. These define the value columns.
func (a *assembly) rolePeriods(forest *xbrl.Forest) []types.Period {
	seen := make(map[string]bool)
	var periods []types.Period
	for concept, facts := range a.byConcept {
		if !forest.Contains(concept) {
			continue
		}
		for _, f := range facts {
			ctx := a.contexts[f.ContextRef]
			if key := ctx.Period.Key(); !seen[key] {
				seen[key] = true
				periods = append(periods, ctx.Period)
			}
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}

// factFor returns the default-member (non-dimensional) fact for a
// concept in a period, if any.
func (a *assembly) factFor(concept string, period types.Period) (xbrl.Fact, bool) {
	for _, f := range a.byConcept[concept] {
		ctx := a.contexts[f.ContextRef]
		if ctx.HasDimensions() {
			continue
		}
		if ctx.Period.Key() == period.Key() {
			return f, true
		}
	}
	return xbrl.Fact{}, false
}

// dimensionalRows emits one sibling row per distinct dimension-member
// combination reported for the concept, ordered by member label. These
// are never merged into the default-member row.
func (a *assembly) dimensionalRows(concept string, depth int, role string, periods []types.Period) []types.ReportRow {
	type group struct {
		dims    []xbrl.DimensionMember
		byKey   map[string]xbrl.Fact
		member  string
		axisStr string
	}
	groups := make(map[string]*group)

	for _, f := range a.byConcept[concept] {
		ctx := a.contexts[f.ContextRef]
		if !ctx.HasDimensions() {
			continue
		}
		sig := dimensionSignature(ctx.Dimensions)
		g, ok := groups[sig]
		if !ok {
			g = &group{
				dims:    ctx.Dimensions,
				byKey:   make(map[string]xbrl.Fact),
				member:  a.memberLabel(ctx.Dimensions),
				axisStr: axisNames(ctx.Dimensions),
			}
			groups[sig] = g
		}
		if _, dup := g.byKey[ctx.Period.Key()]; !dup {
			g.byKey[ctx.Period.Key()] = f
		}
	}
	if len(groups) == 0 {
		return nil
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].member != ordered[j].member {
			return ordered[i].member < ordered[j].member
		}
		return ordered[i].axisStr < ordered[j].axisStr
	})

	var rows []types.ReportRow
	for _, g := range ordered {
		values := make([]types.PeriodValue, len(periods))
		decimals := ""
		populated := false
		for i, p := range periods {
			values[i].Period = p
			if f, ok := g.byKey[p.Key()]; ok {
				values[i].Value = a.formatValue(f)
				if decimals == "" {
					decimals = f.Decimals
				}
				populated = true
			}
		}
		if !populated && a.opts.SkipEmptyRows {
			continue
		}
		rows = append(rows, types.ReportRow{
			Concept:   concept,
			Label:     a.conceptLabel(concept, ""),
			Depth:     depth,
			Role:      role,
			Dimension: g.axisStr,
			Member:    g.member,
			Decimals:  decimals,
			Values:    values,
		})
	}
	return rows
}

// unclassifiedRows surfaces facts whose concept appears in no role's
// forest. Omitting financial data is a worse failure than mis-ordering
// it, so the residual is reported instead of dropped: one row per
// distinct (concept, period, dimension combination), drawn from the
// same deduplicated winners the role rows use.
func (a *assembly) unclassifiedRows(forests map[string]*xbrl.Forest) []types.ReportRow {
	classified := func(concept string) bool {
		for _, f := range forests {
			if f.Contains(concept) {
				return true
			}
		}
		return false
	}

	concepts := make([]string, 0, len(a.byConcept))
	for concept := range a.byConcept {
		if !classified(concept) {
			concepts = append(concepts, concept)
		}
	}
	sort.Strings(concepts)

	type key struct{ period, dims string }
	var rows []types.ReportRow

	for _, concept := range concepts {
		seen := make(map[key]bool)
		for _, f := range a.byConcept[concept] {
			ctx := a.contexts[f.ContextRef]
			k := key{ctx.Period.Key(), dimensionSignature(ctx.Dimensions)}
			if seen[k] {
				continue
			}
			seen[k] = true

			row := types.ReportRow{
				Concept:  concept,
				Label:    a.conceptLabel(concept, ""),
				Role:     "",
				Decimals: f.Decimals,
				Values:   []types.PeriodValue{{Period: ctx.Period, Value: a.formatValue(f)}},
			}
			if ctx.HasDimensions() {
				row.Dimension = axisNames(ctx.Dimensions)
				row.Member = a.memberLabel(ctx.Dimensions)
			}
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Concept != rows[j].Concept {
			return rows[i].Concept < rows[j].Concept
		}
		pi, pj := rows[i].Values[0].Period, rows[j].Values[0].Period
		if pi.Key() != pj.Key() {
			return pi.Before(pj)
		}
		return rows[i].Member < rows[j].Member
	})
	return rows
}

// conceptLabel resolves the display string for a concept, honoring the
// arc's preferred label role. When a label linkbase was supplied but the
// concept is absent, the fallback to the raw name is surfaced once per
// concept as a warning.
func (a *assembly) conceptLabel(concept, preferredRole string) string {
	if text, ok := a.labels.Resolve(concept, preferredRole); ok {
		return text
	}
	if a.labels.Len() > 0 && !a.fellBack[concept] {
		a.fellBack[concept] = true
		a.warn(types.WarnLabelFallback, "no label for %s: using concept name", concept)
	}
	return localName(concept)
}

// memberLabel renders the member side of a dimensional context,
// resolving member concepts to labels where available.
func (a *assembly) memberLabel(dims []xbrl.DimensionMember) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		if text, ok := a.labels.Resolve(d.Member, ""); ok {
			parts = append(parts, text)
		} else {
			parts = append(parts, localName(d.Member))
		}
	}
	return strings.Join(parts, " / ")
}

func (a *assembly) warn(kind types.WarningKind, format string, args ...any) {
	a.warnings = append(a.warnings, types.Warning{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// reportDate finds the filing's DocumentPeriodEndDate fact.
func reportDate(facts []xbrl.Fact) time.Time {
	for _, f := range facts {
		if f.LocalName() == "DocumentPeriodEndDate" {
			if t, err := time.Parse("2006-01-02", strings.TrimSpace(f.Value)); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func axisNames(dims []xbrl.DimensionMember) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, d.Dimension)
	}
	return strings.Join(parts, " / ")
}

func dimensionSignature(dims []xbrl.DimensionMember) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, d.Dimension+"="+d.Member)
	}
	return strings.Join(parts, "|")
}

func localName(concept string) string {
	if i := strings.IndexByte(concept, ':'); i >= 0 {
		return concept[i+1:]
	}
	return concept
}

// roleName returns the trailing path segment of a role URI, the
// human-facing statement name (".../role/BalanceSheet" → "BalanceSheet").
func roleName(role string) string {
	if i := strings.LastIndexByte(role, '/'); i >= 0 && i+1 < len(role) {
		return role[i+1:]
	}
	return role
}
