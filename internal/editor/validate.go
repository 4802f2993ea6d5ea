package editor

import (
	"fmt"
	"sort"

	"anchor-editor-server/internal/hashline"
)

// resolve parses every anchor in the batch and range-checks it against the
// current document. Syntactic problems fail immediately with a specific
// message; staleness is deliberately not checked here so that checkAnchors
// can report every stale anchor at once.
func resolve(doc document, edits []Edit) ([]resolvedEdit, error) {
	resolved := make([]resolvedEdit, 0, len(edits))
	for i, e := range edits {
		switch e.Op {
		case OpReplace, OpAppend, OpPrepend:
		default:
			return nil, &MalformedEditError{Index: i, Reason: fmt.Sprintf("unknown op %q: must be \"replace\", \"append\" or \"prepend\"", e.Op)}
		}
		if e.End != "" && e.Op != OpReplace {
			return nil, &MalformedEditError{Index: i, Reason: "end is only valid with op \"replace\""}
		}

		r := resolvedEdit{op: e.Op, lines: e.Lines, posAnchor: e.Pos, endAnchor: e.End}
		if e.Pos == "" {
			if e.Op == OpReplace {
				return nil, &MalformedEditError{Index: i, Reason: "replace requires a pos anchor"}
			}
			// Sentinel append-at-EOF / prepend-at-BOF.
			resolved = append(resolved, r)
			continue
		}

		pos, err := parseAnchorInRange(e.Pos, doc)
		if err != nil {
			return nil, &MalformedEditError{Index: i, Reason: err.Error()}
		}
		r.pos = pos.Num
		r.end = pos.Num

		if e.End != "" {
			end, err := parseAnchorInRange(e.End, doc)
			if err != nil {
				return nil, &MalformedEditError{Index: i, Reason: err.Error()}
			}
			if end.Num < pos.Num {
				return nil, &MalformedEditError{Index: i, Reason: fmt.Sprintf("end line %d is before pos line %d", end.Num, pos.Num)}
			}
			r.end = end.Num
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

func parseAnchorInRange(s string, doc document) (hashline.Anchor, error) {
	a, err := hashline.ParseAnchor(s)
	if err != nil {
		return hashline.Anchor{}, err
	}
	if a.Num > len(doc.lines) {
		return hashline.Anchor{}, fmt.Errorf("anchor %q: line %d out of range (document has %d lines)", s, a.Num, len(doc.lines))
	}
	return a, nil
}

// checkAnchors verifies every referenced anchor against the document's
// current fingerprints. All mismatches are collected before failing so the
// caller receives the complete remap in one round trip.
func checkAnchors(doc document, edits []resolvedEdit) error {
	var mismatches []Mismatch
	seen := make(map[string]bool)
	record := func(anchor string, line int) {
		if anchor == "" || seen[anchor] {
			return
		}
		content := doc.lines[line-1]
		if hashline.Fingerprint(line, content) == anchorFingerprint(anchor) {
			return
		}
		seen[anchor] = true
		mismatches = append(mismatches, Mismatch{
			Requested: anchor,
			Current:   hashline.TaggedLine{Num: line, Content: content},
		})
	}
	for _, r := range edits {
		if r.pos == 0 {
			continue
		}
		record(r.posAnchor, r.pos)
		if r.endAnchor != "" {
			record(r.endAnchor, r.end)
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Current.Num < mismatches[j].Current.Num })
	return &MismatchError{Mismatches: mismatches}
}

// anchorFingerprint extracts the fingerprint token from an anchor string that
// already passed ParseAnchor.
func anchorFingerprint(anchor string) string {
	return anchor[len(anchor)-hashline.FingerprintLen:]
}

// checkOverlap rejects batches in which two replace spans intersect.
// Insertions never consume original lines, so appends and prepends cannot
// conflict with anything, including each other.
func checkOverlap(edits []resolvedEdit) error {
	type span struct{ start, end int }
	var spans []span
	for _, r := range edits {
		if r.op == OpReplace {
			spans = append(spans, span{r.pos, r.end})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start <= spans[i-1].end {
			return &OverlapError{
				FirstStart:  spans[i-1].start,
				FirstEnd:    spans[i-1].end,
				SecondStart: spans[i].start,
				SecondEnd:   spans[i].end,
			}
		}
	}
	return nil
}
