// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xbrl parses the three XML documents of an XBRL submission:
// the Instance document (contexts and facts), the Presentation linkbase
// (per-role parent-child arc forests), and the optional Label linkbase
// (concept display strings). All parsers are pure: they consume a byte
// slice and return immutable values, so independent filings can be
// processed in parallel without coordination.
package xbrl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// XBRL namespace URIs referenced during parsing.
const (
	nsInstance = "http://www.xbrl.org/2003/instance"
	nsLinkbase = "http://www.xbrl.org/2003/linkbase"
	nsXLink    = "http://www.w3.org/1999/xlink"
)

// DimensionMember is one dimensional qualifier of a context: an axis
// (dimension) and the explicit member reported on it.
type DimensionMember struct {
	Dimension string
	Member    string
}

// Context is a named (period, entity, dimensions) tuple that facts
// reference to establish reporting-period meaning.
type Context struct {
	ID     string
	Entity string
	Period types.Period

	// Dimensions holds segment then scenario qualifiers in document
	// order. Empty for the default (non-dimensional) member.
	Dimensions []DimensionMember
}

// HasDimensions reports whether the context carries segment or scenario
// qualifiers.
func (c Context) HasDimensions() bool { return len(c.Dimensions) > 0 }

// equal reports whether two contexts with the same id carry identical
// content, in which case the redefinition is tolerated.
func (c Context) equal(o Context) bool {
	if c.ID != o.ID || c.Entity != o.Entity || c.Period != o.Period {
		return false
	}
	if len(c.Dimensions) != len(o.Dimensions) {
		return false
	}
	for i := range c.Dimensions {
		if c.Dimensions[i] != o.Dimensions[i] {
			return false
		}
	}
	return true
}

// contextXML mirrors the <context> element shape. Local names are matched
// regardless of namespace prefix.
type contextXML struct {
	ID     string `xml:"id,attr"`
	Entity struct {
		Identifier struct {
			Scheme string `xml:"scheme,attr"`
			Value  string `xml:",chardata"`
		} `xml:"identifier"`
		Segment memberContainerXML `xml:"segment"`
	} `xml:"entity"`
	Scenario memberContainerXML `xml:"scenario"`
	Period   struct {
		Instant   string `xml:"instant"`
		StartDate string `xml:"startDate"`
		EndDate   string `xml:"endDate"`
	} `xml:"period"`
}

type memberContainerXML struct {
	Members []struct {
		Dimension string `xml:"dimension,attr"`
		Value     string `xml:",chardata"`
	} `xml:"explicitMember"`
}

// ParseContexts builds the context index of an Instance document: a
// lookup from context id to Context. It fails with MalformedDocumentError
// on unparsable XML and DuplicateContextError when the same id is declared
// twice with differing content.
func ParseContexts(data []byte) (map[string]Context, error) {
	index := make(map[string]Context)

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedDocumentError{Doc: "instance", Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "context" {
			continue
		}

		var raw contextXML
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return nil, &MalformedDocumentError{Doc: "instance", Err: err}
		}
		if raw.ID == "" {
			continue
		}

		ctx, err := buildContext(raw)
		if err != nil {
			return nil, &MalformedDocumentError{Doc: "instance", Err: err}
		}

		if prev, exists := index[ctx.ID]; exists {
			if !prev.equal(ctx) {
				return nil, &DuplicateContextError{ID: ctx.ID}
			}
			continue
		}
		index[ctx.ID] = ctx
	}

	return index, nil
}

func buildContext(raw contextXML) (Context, error) {
	ctx := Context{
		ID:     raw.ID,
		Entity: strings.TrimSpace(raw.Entity.Identifier.Value),
	}

	switch {
	case raw.Period.Instant != "":
		instant, err := parseXBRLDate(raw.Period.Instant)
		if err != nil {
			return Context{}, fmt.Errorf("context %s: %w", raw.ID, err)
		}
		ctx.Period = types.Period{End: instant}
	case raw.Period.StartDate != "" && raw.Period.EndDate != "":
		start, err := parseXBRLDate(raw.Period.StartDate)
		if err != nil {
			return Context{}, fmt.Errorf("context %s: %w", raw.ID, err)
		}
		end, err := parseXBRLDate(raw.Period.EndDate)
		if err != nil {
			return Context{}, fmt.Errorf("context %s: %w", raw.ID, err)
		}
		ctx.Period = types.Period{Start: start, End: end}
	}

	for _, container := range []memberContainerXML{raw.Entity.Segment, raw.Scenario} {
		for _, m := range container.Members {
			if m.Dimension == "" {
				continue
			}
			ctx.Dimensions = append(ctx.Dimensions, DimensionMember{
				Dimension: m.Dimension,
				Member:    strings.TrimSpace(m.Value),
			})
		}
	}

	return ctx, nil
}

// parseXBRLDate parses an XBRL date, tolerating a trailing time component
// ("2024-12-31T00:00:00") which some filers include.
func parseXBRLDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
