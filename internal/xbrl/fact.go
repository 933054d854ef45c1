// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// controlNamespaces lists namespaces whose elements never carry reported
// values: instance bookkeeping (contexts, units), linkbase references,
// dimensional containers, and embedded markup. Elements in these
// namespaces are skipped without erroring.
var controlNamespaces = map[string]bool{
	nsInstance:                                  true,
	nsLinkbase:                                  true,
	nsXLink:                                     true,
	"http://xbrl.org/2006/xbrldi":               true,
	"http://www.w3.org/1999/xhtml":              true,
	"http://www.w3.org/2001/XMLSchema-instance": true,
}

// Fact is one reported value from the Instance document. Facts are
// immutable once parsed.
type Fact struct {
	// Concept is the namespace-qualified tag in prefix:local form
	// (e.g. "us-gaap:Assets"), or the bare local name when the
	// document declares no prefix for the namespace.
	Concept string

	// ContextRef names the context establishing the fact's period.
	ContextRef string

	// UnitRef names the unit for numeric facts; empty otherwise.
	UnitRef string

	// Decimals is the rounding indicator as written: a signed integer,
	// "INF", or empty. The value is never re-scaled by it.
	Decimals string

	// ID is the element's explicit id attribute, when present. Facts
	// sharing a concept+context pair are only distinguishable by it.
	ID string

	// Value is the raw textual value, whitespace-trimmed.
	Value string
}

// LocalName returns the concept's local name without its prefix.
func (f Fact) LocalName() string {
	if i := strings.IndexByte(f.Concept, ':'); i >= 0 {
		return f.Concept[i+1:]
	}
	return f.Concept
}

// PrecisionRank orders facts by stated precision for duplicate
// tie-breaking. "INF" and absent decimals mean exact and rank highest;
// otherwise a larger decimals value means more precise.
func (f Fact) PrecisionRank() int {
	if f.Decimals == "" || strings.EqualFold(f.Decimals, "INF") {
		return math.MaxInt
	}
	n, err := strconv.Atoi(f.Decimals)
	if err != nil {
		return math.MinInt
	}
	return n
}

// ParseFacts walks the Instance document's non-context elements and
// returns one Fact per reported value, in document order. A fact whose
// contextRef is absent from the index is dropped with a
// dangling_context_ref warning rather than aborting the extraction;
// real-world filings contain stray facts.
func ParseFacts(data []byte, index map[string]Context) ([]Fact, []types.Warning, error) {
	var (
		facts    []Fact
		warnings []types.Warning
		prefixes map[string]string
	)

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &MalformedDocumentError{Doc: "instance", Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		// The root element carries the namespace prefix declarations
		// needed to render qualified concept names.
		if prefixes == nil {
			prefixes = prefixMap(start)
			continue
		}

		if controlNamespaces[start.Name.Space] {
			if err := dec.Skip(); err != nil {
				return nil, nil, &MalformedDocumentError{Doc: "instance", Err: err}
			}
			continue
		}

		contextRef := attrValue(start, "contextRef")
		if contextRef == "" {
			// Tuple or stray markup; descend into it.
			continue
		}

		value, err := collectText(dec)
		if err != nil {
			return nil, nil, &MalformedDocumentError{Doc: "instance", Err: err}
		}

		f := Fact{
			Concept:    qualifiedName(prefixes, start.Name),
			ContextRef: contextRef,
			UnitRef:    attrValue(start, "unitRef"),
			Decimals:   attrValue(start, "decimals"),
			ID:         attrValue(start, "id"),
			Value:      strings.TrimSpace(value),
		}
		if f.Decimals == "" {
			f.Decimals = attrValue(start, "precision")
		}

		if _, exists := index[contextRef]; !exists {
			warnings = append(warnings, types.Warning{
				Kind:    types.WarnDanglingContextRef,
				Message: fmt.Sprintf("fact %s references missing context %q; dropped", f.Concept, contextRef),
			})
			continue
		}

		facts = append(facts, f)
	}

	return facts, warnings, nil
}

// prefixMap extracts xmlns declarations from the root element, mapping
// namespace URI to declared prefix.
func prefixMap(root xml.StartElement) map[string]string {
	m := make(map[string]string)
	for _, a := range root.Attr {
		if a.Name.Space == "xmlns" {
			m[a.Value] = a.Name.Local
		}
	}
	return m
}

// qualifiedName renders an XML name as prefix:local using the document's
// own prefix declarations, falling back to the local name.
func qualifiedName(prefixes map[string]string, name xml.Name) string {
	if p, ok := prefixes[name.Space]; ok && p != "" {
		return p + ":" + name.Local
	}
	return name.Local
}

// attrValue returns the named attribute, matched by local name.
func attrValue(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// collectText consumes tokens up to the element's matching end tag and
// returns the concatenated character data. Text-block facts may contain
// nested markup whose text is included.
func collectText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(t)
		}
	}
	return b.String(), nil
}
