package repl

import (
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"no_call", "a + b", 5, functionCall{}},
		{"open_paren", "area(", 5, functionCall{name: "area", inCall: true}},
		{
			"partial_arg_name", "area(wi", 7,
			functionCall{name: "area", argName: "wi", inCall: true},
		},
		{
			"arg_value", "area(width: 3", 13,
			functionCall{name: "area", argName: "width", inCall: true},
		},
		{
			"second_arg", "area(width: 3, he", 17,
			functionCall{name: "area", argIndex: 1, argName: "he", inCall: true},
		},
		{"closed_call", "area(width: 3)", 14, functionCall{}},
		{
			"nested_inner", "outer(a: inner(b", 16,
			functionCall{name: "inner", argName: "b", inCall: true},
		},
		{
			"nested_closed", "outer(a: inner(b: 1), c", 23,
			functionCall{name: "outer", argIndex: 1, argName: "c", inCall: true},
		},
		{
			"paren_in_string", `f(s: "(", t`, 11,
			functionCall{name: "f", argIndex: 1, argName: "t", inCall: true},
		},
		{
			"comma_in_string", `f(s: "a,b", t`, 13,
			functionCall{name: "f", argIndex: 1, argName: "t", inCall: true},
		},
		{"grouping_paren", "(1 + 2", 6, functionCall{}},
		{
			"cursor_before_paren", "area(width", 3,
			functionCall{},
		},
		{
			"escaped_quote", `f(s: "\"(", t`, 13,
			functionCall{name: "f", argIndex: 1, argName: "t", inCall: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestModel_Signatures(t *testing.T) {
	m := newTestModel(t, "def area(width) { return width; } def area(width, height) { return width * height; }")

	hints := m.signatures("area")
	if len(hints) != 2 {
		t.Fatalf("expected 2 overloads, got %+v", hints)
	}

	hints = m.signatures("getenv")
	if len(hints) != 1 {
		t.Fatalf("expected 1 command hint, got %+v", hints)
	}

	if got := strings.Join(hints[0].params, ","); got != "name,default"+optionalMark {
		t.Errorf("unexpected command params %q", got)
	}

	if hints := m.signatures("missing"); len(hints) != 0 {
		t.Errorf("expected no hints, got %+v", hints)
	}

	if !m.callable("area") || !m.callable("join") || m.callable("missing") {
		t.Error("callable reports wrong result")
	}
}

func TestRenderSignatureHint(t *testing.T) {
	hints := []hint{
		{name: "area", params: []string{"width"}},
		{name: "area", params: []string{"width", "height"}},
	}

	got := renderSignatureHint(hints, "he")

	plain := stripANSI(got)
	if want := "area(width)  |  area(width, height)"; plain != want {
		t.Errorf("renderSignatureHint text = %q, want %q", plain, want)
	}

	if got := renderSignatureHint(nil, ""); got != "" {
		t.Errorf("expected empty hint, got %q", got)
	}
}

// stripANSI returns s without terminal escape sequences.
func stripANSI(s string) string {
	var b strings.Builder

	inEscape := false

	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}

	return b.String()
}
