package editor

// Apply validates the batch against content and applies it, returning the
// new document text. On stale anchors it returns a *MismatchError carrying
// the full remap; on intersecting spans an *OverlapError; on malformed input
// a *MalformedEditError. No partial application ever occurs.
func Apply(content string, edits []Edit) (string, error) {
	rep, err := ApplyWithReport(content, edits)
	if err != nil {
		return "", err
	}
	return rep.Content, nil
}

// ApplyWithReport is Apply plus counts of deduplicated and no-op edits.
//
// The pipeline is a straight pass with one early abort: parse anchors,
// collect all stale anchors (abort), drop exact duplicates, reject
// intersecting replace spans (abort), normalize replacements, then rewrite
// the document in a single deterministic walk. The rewrite cannot fail once
// validation has passed.
func ApplyWithReport(content string, edits []Edit) (*Report, error) {
	doc := splitDocument(content)
	resolved, err := resolve(doc, edits)
	if err != nil {
		return nil, err
	}
	if err := checkAnchors(doc, resolved); err != nil {
		return nil, err
	}
	resolved, deduplicated := dedupe(resolved)
	if err := checkOverlap(resolved); err != nil {
		return nil, err
	}
	noops := normalizeReplacements(doc, resolved)
	return &Report{
		Content:           renderEdits(doc, resolved),
		DeduplicatedEdits: deduplicated,
		NoopEdits:         noops,
	}, nil
}

// renderEdits walks the original lines once, interleaving prepends, the line
// itself (kept, replaced or consumed by a range), and appends. Same-anchor
// groups of one kind are emitted in reverse declaration order: the caller
// can rely on that rule rather than on incidental batch order. Sentinel
// prepends land before line 1, sentinel appends after the last line.
func renderEdits(doc document, edits []resolvedEdit) string {
	prepends := make(map[int][][]string)
	appends := make(map[int][][]string)
	replaces := make(map[int]resolvedEdit)
	var bof, eof [][]string

	for _, r := range edits {
		switch r.op {
		case OpPrepend:
			if r.pos == 0 {
				bof = append(bof, r.lines)
			} else {
				prepends[r.pos] = append(prepends[r.pos], r.lines)
			}
		case OpAppend:
			if r.pos == 0 {
				eof = append(eof, r.lines)
			} else {
				appends[r.pos] = append(appends[r.pos], r.lines)
			}
		case OpReplace:
			// A no-op replacement leaves the original span untouched.
			if !r.noop {
				replaces[r.pos] = r
			}
		}
	}

	out := make([]string, 0, len(doc.lines))
	emit := func(groups [][]string) {
		for i := len(groups) - 1; i >= 0; i-- {
			out = append(out, groups[i]...)
		}
	}

	emit(bof)
	skipUntil := 0
	for n := 1; n <= len(doc.lines); n++ {
		emit(prepends[n])
		if r, ok := replaces[n]; ok {
			out = append(out, r.lines...)
			skipUntil = r.end
		} else if n > skipUntil {
			out = append(out, doc.lines[n-1])
		}
		emit(appends[n])
	}
	emit(eof)

	return doc.render(out)
}
