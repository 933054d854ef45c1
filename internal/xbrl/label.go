// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
)

// Standard label roles in preference order.
const (
	RoleLabel        = "http://www.xbrl.org/2003/role/label"
	RoleTerseLabel   = "http://www.xbrl.org/2003/role/terseLabel"
	RoleVerboseLabel = "http://www.xbrl.org/2003/role/verboseLabel"
)

// rolePreference is the fallback order when no preferred label role is
// requested or the requested role is absent.
var rolePreference = []string{RoleLabel, RoleTerseLabel, RoleVerboseLabel}

// LabelSet maps concept names to their available labels by label role.
// A nil LabelSet is valid and resolves nothing; missing labels are never
// an error, callers fall back to the raw concept name.
type LabelSet struct {
	byConcept map[string]map[string]string
}

// Len returns the number of concepts with at least one label.
func (ls *LabelSet) Len() int {
	if ls == nil {
		return 0
	}
	return len(ls.byConcept)
}

// Resolve returns the best available label for a concept. The
// preferredRole (from a presentation arc) wins when present, then the
// standard role preference order, then any remaining role in sorted
// order. ok is false when the concept has no label at all.
func (ls *LabelSet) Resolve(concept, preferredRole string) (string, bool) {
	if ls == nil {
		return "", false
	}
	labels := ls.byConcept[concept]
	if len(labels) == 0 {
		return "", false
	}

	if preferredRole != "" {
		if text, ok := labels[preferredRole]; ok {
			return text, true
		}
	}
	for _, role := range rolePreference {
		if text, ok := labels[role]; ok {
			return text, true
		}
	}

	roles := make([]string, 0, len(labels))
	for role := range labels {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return labels[roles[0]], true
}

// labelLinkXML mirrors one <labelLink> element.
type labelLinkXML struct {
	Locs []struct {
		Label string `xml:"label,attr"`
		Href  string `xml:"href,attr"`
	} `xml:"loc"`
	Labels []struct {
		Label string `xml:"label,attr"`
		Role  string `xml:"role,attr"`
		Text  string `xml:",chardata"`
	} `xml:"label"`
	Arcs []struct {
		From string `xml:"from,attr"`
		To   string `xml:"to,attr"`
	} `xml:"labelArc"`
}

// ParseLabels builds a LabelSet from the Label linkbase. It fails only
// on unparsable XML; an empty or partial linkbase simply resolves fewer
// concepts.
func ParseLabels(data []byte) (*LabelSet, error) {
	ls := &LabelSet{byConcept: make(map[string]map[string]string)}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedDocumentError{Doc: "label", Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "labelLink" {
			continue
		}

		var link labelLinkXML
		if err := dec.DecodeElement(&link, &start); err != nil {
			return nil, &MalformedDocumentError{Doc: "label", Err: err}
		}

		locs := make(map[string]string, len(link.Locs))
		for _, loc := range link.Locs {
			if c := conceptFromHref(loc.Href); c != "" {
				locs[loc.Label] = c
			}
		}

		// Several resources may share one xlink:label, one per label
		// role; an arc binds the concept to all of them.
		type resource struct{ role, text string }
		texts := make(map[string][]resource, len(link.Labels))
		for _, lab := range link.Labels {
			role := lab.Role
			if role == "" {
				role = RoleLabel
			}
			texts[lab.Label] = append(texts[lab.Label], resource{role, lab.Text})
		}

		for _, arc := range link.Arcs {
			concept, ok := locs[arc.From]
			if !ok {
				continue
			}
			for _, lab := range texts[arc.To] {
				if lab.text == "" {
					continue
				}
				if ls.byConcept[concept] == nil {
					ls.byConcept[concept] = make(map[string]string)
				}
				ls.byConcept[concept][lab.role] = lab.text
			}
		}
	}

	return ls, nil
}
