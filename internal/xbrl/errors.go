// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import "fmt"

// MalformedDocumentError reports an XML document that could not be parsed.
// It is fatal for the document it names.
type MalformedDocumentError struct {
	Doc string // "instance", "presentation", or "label"
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", e.Doc, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// DuplicateContextError reports two context elements declaring the same id
// with differing content. Identical redefinitions are tolerated; an
// ambiguous one aborts the document.
type DuplicateContextError struct {
	ID string
}

func (e *DuplicateContextError) Error() string {
	return fmt.Sprintf("duplicate context id %q with differing content", e.ID)
}

// CyclicPresentationError reports a presentation role whose parent-child
// relation is not a forest. It is fatal for that role only.
type CyclicPresentationError struct {
	Role    string
	Concept string // a concept on the cycle
}

func (e *CyclicPresentationError) Error() string {
	return fmt.Sprintf("cyclic presentation in role %q at concept %q", e.Role, e.Concept)
}
