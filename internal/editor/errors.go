package editor

import (
	"fmt"
	"strings"

	"anchor-editor-server/internal/hashline"
)

// MalformedEditError reports a syntactically invalid edit request: bad anchor
// shape, a missing or mistyped field, an unknown op. The message fragments
// are part of the contract; upstream layers pattern-match on them to tell
// "malformed tool call, retry" apart from real failures, and the calling
// model self-corrects from the specifics.
type MalformedEditError struct {
	// Index is the position of the offending edit in the batch, or -1 when
	// the batch itself is malformed.
	Index  int
	Reason string
}

func (e *MalformedEditError) Error() string {
	if e.Index < 0 {
		return "malformed edit request: " + e.Reason
	}
	return fmt.Sprintf("malformed edit at index %d: %s", e.Index, e.Reason)
}

// Mismatch pairs one stale anchor with the line the document currently holds
// at that line number.
type Mismatch struct {
	// Requested is the stale anchor exactly as the caller supplied it.
	Requested string
	// Current is the line now at that number, from which the corrected
	// anchor is derived.
	Current hashline.TaggedLine
}

// MismatchError is returned when one or more anchors no longer match the
// document. It carries every stale anchor in the batch, not just the first,
// so a caller can repair the whole batch in one round trip.
type MismatchError struct {
	Mismatches []Mismatch
}

// Remap maps each stale anchor string to the anchor that is currently
// correct for the same line number.
func (e *MismatchError) Remap() map[string]string {
	m := make(map[string]string, len(e.Mismatches))
	for _, mm := range e.Mismatches {
		m[mm.Requested] = hashline.AnchorFor(mm.Current.Num, mm.Current.Content).String()
	}
	return m
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stale anchors: %d line(s) changed since they were read; retry with the anchors shown after >>>", len(e.Mismatches))
	for _, mm := range e.Mismatches {
		b.WriteByte('\n')
		b.WriteString("requested " + mm.Requested)
		b.WriteByte('\n')
		b.WriteString(">>> " + mm.Current.Tag())
	}
	return b.String()
}

// OverlapError is returned when two edits in one batch target intersecting
// line spans. The batch is rejected atomically: applying part of it would
// make the result depend on edit order in a way the caller cannot predict.
type OverlapError struct {
	FirstStart, FirstEnd   int
	SecondStart, SecondEnd int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: lines %d-%d and %d-%d intersect; edits in one batch must target disjoint spans",
		e.FirstStart, e.FirstEnd, e.SecondStart, e.SecondEnd)
}
