package editor

import "strings"

// dedupe drops edits that are semantically identical to an edit already
// queued at the same anchor: same op, same pos/end, same new lines. The
// first instance keeps its place in application order. This protects
// against a model re-issuing the same tool call across retries.
func dedupe(edits []resolvedEdit) ([]resolvedEdit, int) {
	seen := make(map[string]bool, len(edits))
	kept := edits[:0]
	dropped := 0
	for _, r := range edits {
		key := string(r.op) + "\x00" + r.posAnchor + "\x00" + r.endAnchor + "\x00" + strings.Join(r.lines, "\x00")
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, r)
	}
	return kept, dropped
}

// normalizeReplacements runs merge recovery on collapsed range replacements
// and tags replacements whose new content equals the current span as no-ops.
// Returns the no-op count.
func normalizeReplacements(doc document, edits []resolvedEdit) int {
	noops := 0
	for i := range edits {
		r := &edits[i]
		if r.op != OpReplace {
			continue
		}
		span := doc.lines[r.pos-1 : r.end]
		if len(span) >= 2 && len(r.lines) == 1 {
			if expanded, ok := expandMergedLine(span, r.lines[0]); ok {
				r.lines = expanded
			}
		}
		if equalLines(r.lines, span) {
			r.noop = true
			noops++
		}
	}
	return noops
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// expandMergedLine tests whether a single replacement line is an accidental
// concatenation of the original span (a known model failure mode: several
// lines collapsed into one) and, if so, splits it back into one line per
// original. Best effort with a defined fallback chain: exact substring →
// stripped continuation token → fuzzy match → "; " split → give up. Giving
// up is always safe; the supplied line then stands as a genuine collapse.
func expandMergedLine(original []string, merged string) ([]string, bool) {
	if starts, ok := alignLines(original, merged); ok {
		pieces := splitAt(merged, starts)
		if allNonBlank(pieces) {
			return pieces, true
		}
	}
	return splitSemicolons(original, merged)
}

// alignLines locates each original line (trimmed) inside the merged string,
// in order and without overlap, and returns the match start offsets.
func alignLines(original []string, merged string) ([]int, bool) {
	starts := make([]int, 0, len(original))
	cursor := 0
	for _, line := range original {
		cand := strings.TrimSpace(line)
		idx := strings.Index(merged[cursor:], cand)
		consumed := len(cand)
		if idx < 0 {
			// Statements joined with an operator lose the trailing token:
			// "foo &&" + "bar" may appear as "foo && bar" with the anchor
			// line ending in "&&" already consumed by the join.
			if stripped := stripContinuation(cand); stripped != cand {
				if j := strings.Index(merged[cursor:], stripped); j >= 0 {
					idx, consumed = j, len(stripped)
				}
			}
		}
		if idx < 0 {
			idx, consumed = fuzzyIndex(merged[cursor:], cand)
		}
		if idx < 0 {
			return nil, false
		}
		starts = append(starts, cursor+idx)
		cursor += idx + consumed
	}
	return starts, true
}

// continuationTokens are operators a joined statement may have shed; longer
// tokens first so "&&" is not matched as a bare "&".
var continuationTokens = []string{"&&", "||", "??", "?", ":", "=", ",", "+", "-", "*", "/", ".", "("}

func stripContinuation(s string) string {
	t := strings.TrimRight(s, " \t")
	for _, tok := range continuationTokens {
		if strings.HasSuffix(t, tok) {
			return strings.TrimRight(t[:len(t)-len(tok)], " \t")
		}
	}
	return s
}

// fuzzyIndex searches for cand inside segment with the characters '|', '&'
// and '?' stripped from both, then maps the match position and length back
// into the unstripped segment. Returns (-1, 0) when there is no match.
func fuzzyIndex(segment, cand string) (start, consumed int) {
	stripFuzzy := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '|' || r == '&' || r == '?' {
				return -1
			}
			return r
		}, s)
	}
	strippedCand := stripFuzzy(cand)
	if strippedCand == "" {
		return -1, 0
	}
	var stripped strings.Builder
	backMap := make([]int, 0, len(segment))
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if c == '|' || c == '&' || c == '?' {
			continue
		}
		stripped.WriteByte(c)
		backMap = append(backMap, i)
	}
	si := strings.Index(stripped.String(), strippedCand)
	if si < 0 {
		return -1, 0
	}
	start = backMap[si]
	afterStripped := si + len(strippedCand)
	after := len(segment)
	if afterStripped < len(backMap) {
		after = backMap[afterStripped]
	}
	return start, after - start
}

// splitAt cuts s at the given match starts. The first piece keeps any prefix
// before the first match so no text is lost.
func splitAt(s string, starts []int) []string {
	pieces := make([]string, 0, len(starts))
	for i := range starts {
		lo := 0
		if i > 0 {
			lo = starts[i]
		}
		hi := len(s)
		if i+1 < len(starts) {
			hi = starts[i+1]
		}
		pieces = append(pieces, s[lo:hi])
	}
	return pieces
}

func allNonBlank(pieces []string) bool {
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

// splitSemicolons recovers statements joined as "a; b; c": split on "; "
// boundaries and restore the trailing semicolon on all but the last piece.
// Only accepted when the split yields exactly one piece per original line.
func splitSemicolons(original []string, merged string) ([]string, bool) {
	pieces := strings.Split(merged, "; ")
	if len(pieces) != len(original) {
		return nil, false
	}
	for i := 0; i < len(pieces)-1; i++ {
		if !strings.HasSuffix(pieces[i], ";") {
			pieces[i] += ";"
		}
	}
	if !allNonBlank(pieces) {
		return nil, false
	}
	return pieces, true
}
