// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"math"
	"testing"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

const factInstanceXML = `<?xml version="1.0" encoding="utf-8"?>
<xbrl xmlns="http://www.xbrl.org/2003/instance"
      xmlns:link="http://www.xbrl.org/2003/linkbase"
      xmlns:us-gaap="http://fasb.org/us-gaap/2024"
      xmlns:dei="http://xbrl.sec.gov/dei/2024">
  <context id="c1">
    <entity><identifier scheme="s">e</identifier></entity>
    <period><instant>2024-12-31</instant></period>
  </context>
  <unit id="usd"><measure>iso4217:USD</measure></unit>
  <link:schemaRef href="aapl-20241231.xsd"/>
  <dei:DocumentPeriodEndDate contextRef="c1">2024-12-31</dei:DocumentPeriodEndDate>
  <us-gaap:Assets contextRef="c1" unitRef="usd" decimals="-3" id="f-1">359000000</us-gaap:Assets>
  <us-gaap:AccountingPoliciesTextBlock contextRef="c1">
    Inventories are stated at the <b>lower</b> of cost or market.
  </us-gaap:AccountingPoliciesTextBlock>
  <us-gaap:Cash contextRef="missing" unitRef="usd">42</us-gaap:Cash>
</xbrl>`

func TestParseFacts(t *testing.T) {
	index := mustParseContexts(t, factInstanceXML)
	facts, warnings, err := ParseFacts([]byte(factInstanceXML), index)
	if err != nil {
		t.Fatalf("ParseFacts: %v", err)
	}

	if len(facts) != 3 {
		t.Fatalf("got %d facts, want 3: %+v", len(facts), facts)
	}

	assets := facts[1]
	if assets.Concept != "us-gaap:Assets" {
		t.Errorf("Concept = %q, want us-gaap:Assets", assets.Concept)
	}
	if assets.Value != "359000000" {
		t.Errorf("Value = %q; decimals must never re-scale the value", assets.Value)
	}
	if assets.Decimals != "-3" {
		t.Errorf("Decimals = %q", assets.Decimals)
	}
	if assets.UnitRef != "usd" || assets.ID != "f-1" || assets.ContextRef != "c1" {
		t.Errorf("attrs = %+v", assets)
	}

	// Text blocks keep nested markup text, trimmed.
	policy := facts[2]
	if policy.Concept != "us-gaap:AccountingPoliciesTextBlock" {
		t.Errorf("Concept = %q", policy.Concept)
	}
	if policy.Value != "Inventories are stated at the lower of cost or market." {
		t.Errorf("text block value = %q", policy.Value)
	}

	// The dangling us-gaap:Cash fact is dropped with a warning.
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %+v", len(warnings), warnings)
	}
	if warnings[0].Kind != types.WarnDanglingContextRef {
		t.Errorf("warning kind = %q, want %q", warnings[0].Kind, types.WarnDanglingContextRef)
	}
}

func TestParseFactsSkipsBookkeepingElements(t *testing.T) {
	index := mustParseContexts(t, factInstanceXML)
	facts, _, err := ParseFacts([]byte(factInstanceXML), index)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range facts {
		switch f.Concept {
		case "context", "unit", "link:schemaRef", "identifier":
			t.Errorf("bookkeeping element %q parsed as a fact", f.Concept)
		}
	}
}

func TestParseFactsPrecisionFallback(t *testing.T) {
	const doc = `<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:g="http://example.com/gaap">
  <context id="c1">
    <entity><identifier scheme="s">e</identifier></entity>
    <period><instant>2024-12-31</instant></period>
  </context>
  <g:Assets contextRef="c1" precision="4">1000</g:Assets>
</xbrl>`
	index := mustParseContexts(t, doc)
	facts, _, err := ParseFacts([]byte(doc), index)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 || facts[0].Decimals != "4" {
		t.Errorf("facts = %+v, want precision attribute carried as decimals", facts)
	}
}

func TestFactLocalName(t *testing.T) {
	if got := (Fact{Concept: "us-gaap:Assets"}).LocalName(); got != "Assets" {
		t.Errorf("LocalName = %q", got)
	}
	if got := (Fact{Concept: "Assets"}).LocalName(); got != "Assets" {
		t.Errorf("LocalName without prefix = %q", got)
	}
}

func TestFactPrecisionRank(t *testing.T) {
	tests := []struct {
		decimals string
		want     int
	}{
		{"", math.MaxInt},
		{"INF", math.MaxInt},
		{"inf", math.MaxInt},
		{"-3", -3},
		{"2", 2},
		{"garbage", math.MinInt},
	}
	for _, tt := range tests {
		if got := (Fact{Decimals: tt.decimals}).PrecisionRank(); got != tt.want {
			t.Errorf("PrecisionRank(%q) = %d, want %d", tt.decimals, got, tt.want)
		}
	}
}
