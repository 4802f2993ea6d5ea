package editor

import (
	"testing"
)

func TestExpandMergedLine_ExactConcatenation(t *testing.T) {
	original := []string{"foo(", "bar)"}
	got, ok := expandMergedLine(original, "foo(bar)")
	if !ok {
		t.Fatal("expected recovery, got give-up")
	}
	if len(got) != 2 || got[0] != "foo(" || got[1] != "bar)" {
		t.Errorf("got %q, want [\"foo(\" \"bar)\"]", got)
	}
}

func TestExpandMergedLine_IndentedOriginals(t *testing.T) {
	original := []string{"if x {", "    return y", "}"}
	got, ok := expandMergedLine(original, "if x { return y }")
	if !ok {
		t.Fatal("expected recovery, got give-up")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 pieces, got %d: %q", len(got), got)
	}
}

func TestExpandMergedLine_StrippedContinuationToken(t *testing.T) {
	// The join dropped the trailing operator from the first line.
	original := []string{"a +", "b"}
	got, ok := expandMergedLine(original, "a b")
	if !ok {
		t.Fatal("expected recovery, got give-up")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %q", len(got), got)
	}
	if got[0]+got[1] != "a b" {
		t.Errorf("pieces %q do not reassemble to the merged line", got)
	}
}

func TestExpandMergedLine_FuzzyMatch(t *testing.T) {
	// "||" degraded to "|" in the merged text; the fuzzy pass ignores
	// '|', '&' and '?' on both sides.
	original := []string{"a || b", "c"}
	got, ok := expandMergedLine(original, "a | b c")
	if !ok {
		t.Fatal("expected recovery, got give-up")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %q", len(got), got)
	}
	if got[1] != "c" {
		t.Errorf("second piece = %q, want \"c\"", got[1])
	}
}

func TestExpandMergedLine_SemicolonJoin(t *testing.T) {
	// Alignment fails (spacing differs) but the "; " split matches one piece
	// per original statement.
	original := []string{"x = 1;", "y = 2;"}
	got, ok := expandMergedLine(original, "x=1; y=2;")
	if !ok {
		t.Fatal("expected recovery, got give-up")
	}
	if len(got) != 2 || got[0] != "x=1;" || got[1] != "y=2;" {
		t.Errorf("got %q, want [\"x=1;\" \"y=2;\"]", got)
	}
}

func TestExpandMergedLine_GivesUpSafely(t *testing.T) {
	if _, ok := expandMergedLine([]string{"alpha", "beta"}, "gamma"); ok {
		t.Error("unrelated replacement must not be expanded")
	}
	if _, ok := expandMergedLine([]string{"a;", "b;", "c;"}, "a; b"); ok {
		t.Error("piece count mismatch must not be expanded")
	}
}

func TestApply_MergedRangeRecoveredAsNoop(t *testing.T) {
	// A range replacement that collapses the span into its own concatenation
	// is the merge failure mode; recovery restores the original lines and the
	// edit becomes a no-op instead of destroying the line structure.
	content := "foo(\nbar)\n"
	rep, err := ApplyWithReport(content, []Edit{
		{Op: OpReplace, Pos: anchor(1, "foo("), End: anchor(2, "bar)"), Lines: []string{"foo(bar)"}},
	})
	if err != nil {
		t.Fatalf("ApplyWithReport failed: %v", err)
	}
	if rep.Content != content {
		t.Errorf("content = %q, want unchanged %q", rep.Content, content)
	}
	if rep.NoopEdits != 1 {
		t.Errorf("NoopEdits = %d, want 1", rep.NoopEdits)
	}
}

func TestApply_GenuineCollapseApplies(t *testing.T) {
	// When the single replacement line is NOT a concatenation of the span,
	// the caller really wants the collapse.
	content := "one\ntwo\nthree\n"
	got, err := Apply(content, []Edit{
		{Op: OpReplace, Pos: anchor(1, "one"), End: anchor(3, "three"), Lines: []string{"rewritten"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if want := "rewritten\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDedupe_KeepsFirstInstance(t *testing.T) {
	edits := []resolvedEdit{
		{op: OpReplace, pos: 1, end: 1, posAnchor: "1#AA", lines: []string{"x"}},
		{op: OpReplace, pos: 2, end: 2, posAnchor: "2#BB", lines: []string{"y"}},
		{op: OpReplace, pos: 1, end: 1, posAnchor: "1#AA", lines: []string{"x"}},
	}
	kept, dropped := dedupe(edits)
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(kept) != 2 || kept[0].posAnchor != "1#AA" || kept[1].posAnchor != "2#BB" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestDedupe_DifferentLinesNotDeduplicated(t *testing.T) {
	edits := []resolvedEdit{
		{op: OpAppend, pos: 1, end: 1, posAnchor: "1#AA", lines: []string{"x"}},
		{op: OpAppend, pos: 1, end: 1, posAnchor: "1#AA", lines: []string{"y"}},
	}
	_, dropped := dedupe(edits)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
}

func TestStripContinuation(t *testing.T) {
	cases := []struct{ in, want string }{
		{"foo &&", "foo"},
		{"foo ||", "foo"},
		{"x =", "x"},
		{"a,", "a"},
		{"call(", "call"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := stripContinuation(tc.in); got != tc.want {
			t.Errorf("stripContinuation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
