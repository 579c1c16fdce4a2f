package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a: 1, fo", 12, "fo", 10, 12},
		{"after_colon", "add(a:fo", 8, "fo", 6, 8},
		{"after_comparison", "a >= fo", 7, "fo", 5, 7},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "var my_var", 10, "my_var", 4, 10},
		{"digits", "x1 + y22", 8, "y22", 5, 8},
		{"hyphen_splits", "log-pretty", 10, "pretty", 4, 10},
		{"unicode_letters", "größe", len("größe"), "größe", 0, len("größe")},
		{"cursor_past_end", "foo", 99, "foo", 0, 3},
		{"empty_input", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestModel_Candidates(t *testing.T) {
	m := newTestModel(t, "def area(width, height) { return width * height; } var wide = 1;")

	got := m.candidateNames(functionCall{})
	for _, want := range []string{"area", "wide", "def", "var", "getenv", "prefix"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates missing %q: %v", want, got)
		}
	}

	if slices.Contains(got, "width") {
		t.Errorf("parameter offered outside a call: %v", got)
	}

	if !slices.IsSorted(got) {
		t.Errorf("candidates not sorted: %v", got)
	}

	inCall := m.candidateNames(functionCall{name: "area", inCall: true})
	for _, want := range []string{"width", "height"} {
		if !slices.Contains(inCall, want) {
			t.Errorf("in-call candidates missing %q: %v", want, inCall)
		}
	}

	cmdCall := m.candidateNames(functionCall{name: "getenv", inCall: true})
	if !slices.Contains(cmdCall, "default") {
		t.Errorf("command argument not offered without optional mark: %v", cmdCall)
	}
}

func TestModel_ComputeMatches(t *testing.T) {
	m := newTestModel(t, "var wide = 1;")

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  string
	}{
		{"session_name", modeEval, "1 + wid", "wide"},
		{"command", modeEval, "gete", "getenv"},
		{"ctrl_command", modeCtrl, "res", "reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.CursorEnd()

			matches, _, _, _ := m.computeMatches()
			if len(matches) == 0 || matches[0].Str != tt.want {
				t.Errorf("computeMatches(%q) = %v, want best %q", tt.input, matches, tt.want)
			}
		})
	}

	m.mode = modeEval
	m.input.SetValue("1 + ")
	m.input.CursorEnd()

	if matches, _, _, _ := m.computeMatches(); len(matches) != 0 {
		t.Errorf("expected no matches for an empty word, got %v", matches)
	}
}

func TestRenderCandidateBar_Ellipsizes(t *testing.T) {
	matches := fuzzy.Find("a", []string{"alpha", "alabama", "aardvark", "abacus"})
	never := func(string) bool { return false }

	if got := renderCandidateBar(matches, -1, false, 0, never); got != "" {
		t.Errorf("expected empty bar for zero width, got %q", got)
	}

	wide := renderCandidateBar(matches, -1, false, 200, never)
	narrow := renderCandidateBar(matches, -1, false, 16, never)

	if len(narrow) >= len(wide) {
		t.Errorf("narrow bar not shorter than wide bar:\n%q\n%q", narrow, wide)
	}
}
