// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ChildArc is one resolved presentation arc under a parent: the child
// concept, its sibling order, and the optional preferred label role the
// arc requests for the child in this position.
type ChildArc struct {
	Concept        string
	Order          float64
	PreferredLabel string

	// seq is the arc's document declaration position, used to break
	// order ties deterministically.
	seq int
}

// Forest is the parent-child presentation hierarchy of a single role.
// Within a role the relation is a tree; the same concept may appear in
// other roles, which is why traversal is always role-scoped.
type Forest struct {
	Role string

	children map[string][]ChildArc
	roots    []string
	concepts map[string]bool
}

// Children returns the ordered child arcs of a parent concept.
func (f *Forest) Children(parent string) []ChildArc { return f.children[parent] }

// Roots returns the concepts that never appear as a child within the
// role, in document appearance order.
func (f *Forest) Roots() []string { return f.roots }

// Contains reports whether the concept appears anywhere in the role's
// hierarchy.
func (f *Forest) Contains(concept string) bool { return f.concepts[concept] }

// Len returns the number of arcs in the forest.
func (f *Forest) Len() int {
	n := 0
	for _, arcs := range f.children {
		n += len(arcs)
	}
	return n
}

// arcEvent is one presentation arc in document declaration order.
// Prohibition and override semantics are order-sensitive, so events are
// folded sequentially rather than grouped.
type arcEvent struct {
	parent, child  string
	order          float64
	preferredLabel string
	prohibited     bool
	seq            int
}

// presLinkXML mirrors one <presentationLink> element: its locators and
// arcs in document order.
type presLinkXML struct {
	Role string `xml:"role,attr"`
	Locs []struct {
		Label string `xml:"label,attr"`
		Href  string `xml:"href,attr"`
	} `xml:"loc"`
	Arcs []struct {
		From           string `xml:"from,attr"`
		To             string `xml:"to,attr"`
		Order          string `xml:"order,attr"`
		PreferredLabel string `xml:"preferredLabel,attr"`
		Use            string `xml:"use,attr"`
	} `xml:"presentationArc"`
}

// ParsePresentation builds one Forest per presentation role from the
// Presentation linkbase. Roles whose relation contains a cycle are
// rejected with a CyclicPresentationError and returned in roleErrs; the
// remaining roles are unaffected. A document-level parse failure returns
// a MalformedDocumentError.
func ParsePresentation(data []byte) (forests map[string]*Forest, roleErrs []error, err error) {
	events := make(map[string][]arcEvent)
	roleOrder := []string{}
	seq := 0

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, derr := dec.Token()
		if derr == io.EOF {
			break
		}
		if derr != nil {
			return nil, nil, &MalformedDocumentError{Doc: "presentation", Err: derr}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "presentationLink" {
			continue
		}

		var link presLinkXML
		if derr := dec.DecodeElement(&link, &start); derr != nil {
			return nil, nil, &MalformedDocumentError{Doc: "presentation", Err: derr}
		}
		if link.Role == "" {
			continue
		}

		locs := make(map[string]string, len(link.Locs))
		for _, loc := range link.Locs {
			if c := conceptFromHref(loc.Href); c != "" {
				locs[loc.Label] = c
			}
		}

		if _, seen := events[link.Role]; !seen {
			roleOrder = append(roleOrder, link.Role)
		}
		for _, arc := range link.Arcs {
			parent, pok := locs[arc.From]
			child, cok := locs[arc.To]
			if !pok || !cok {
				continue
			}
			order, _ := strconv.ParseFloat(arc.Order, 64)
			events[link.Role] = append(events[link.Role], arcEvent{
				parent:         parent,
				child:          child,
				order:          order,
				preferredLabel: arc.PreferredLabel,
				prohibited:     arc.Use == "prohibited",
				seq:            seq,
			})
			seq++
		}
	}

	forests = make(map[string]*Forest, len(roleOrder))
	for _, role := range roleOrder {
		forest, ferr := buildForest(role, events[role])
		if ferr != nil {
			roleErrs = append(roleErrs, ferr)
			continue
		}
		if forest.Len() > 0 {
			forests[role] = forest
		}
	}

	return forests, roleErrs, nil
}

// buildForest folds a role's arc events in declaration order, applying
// prohibition and override semantics, then sorts siblings and verifies
// the relation is a forest.
func buildForest(role string, events []arcEvent) (*Forest, error) {
	var arcs []arcEvent
	for _, ev := range events {
		if ev.prohibited {
			kept := arcs[:0]
			for _, a := range arcs {
				if a.parent != ev.parent || a.child != ev.child {
					kept = append(kept, a)
				}
			}
			arcs = kept
			continue
		}
		arcs = append(arcs, ev)
	}

	f := &Forest{
		Role:     role,
		children: make(map[string][]ChildArc),
		concepts: make(map[string]bool),
	}

	isChild := make(map[string]bool)
	parentSeq := make(map[string]int)
	for _, a := range arcs {
		f.children[a.parent] = append(f.children[a.parent], ChildArc{
			Concept:        a.child,
			Order:          a.order,
			PreferredLabel: a.preferredLabel,
			seq:            a.seq,
		})
		f.concepts[a.parent] = true
		f.concepts[a.child] = true
		isChild[a.child] = true
		if _, seen := parentSeq[a.parent]; !seen {
			parentSeq[a.parent] = a.seq
		}
	}

	for parent, kids := range f.children {
		sort.SliceStable(kids, func(i, j int) bool {
			if kids[i].Order != kids[j].Order {
				return kids[i].Order < kids[j].Order
			}
			return kids[i].seq < kids[j].seq
		})
		f.children[parent] = kids
	}

	for parent := range f.children {
		if !isChild[parent] {
			f.roots = append(f.roots, parent)
		}
	}
	sort.Slice(f.roots, func(i, j int) bool {
		return parentSeq[f.roots[i]] < parentSeq[f.roots[j]]
	})

	if cycleAt := findCycle(f); cycleAt != "" {
		return nil, &CyclicPresentationError{Role: role, Concept: cycleAt}
	}

	return f, nil
}

// findCycle runs a colored depth-first search over every parent and
// returns a concept on a cycle, or "" when the relation is a forest.
// Checking all parents (not just roots) catches cycles with no root at
// all, such as A→B→A.
func findCycle(f *Forest) string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(f.concepts))

	var visit func(concept string) string
	visit = func(concept string) string {
		color[concept] = grey
		for _, child := range f.children[concept] {
			switch color[child.Concept] {
			case grey:
				return child.Concept
			case white:
				if hit := visit(child.Concept); hit != "" {
					return hit
				}
			}
		}
		color[concept] = black
		return ""
	}

	parents := make([]string, 0, len(f.children))
	for p := range f.children {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	for _, p := range parents {
		if color[p] == white {
			if hit := visit(p); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// conceptFromHref extracts the concept name from a locator href. The
// fragment is the schema element id in prefix_Local convention
// ("aapl-20240928.xsd#us-gaap_Assets" → "us-gaap:Assets").
func conceptFromHref(href string) string {
	i := strings.IndexByte(href, '#')
	if i < 0 || i+1 >= len(href) {
		return ""
	}
	frag := href[i+1:]
	if j := strings.IndexByte(frag, '_'); j > 0 {
		return frag[:j] + ":" + frag[j+1:]
	}
	return frag
}
