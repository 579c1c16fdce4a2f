package lang

import (
	"slices"
	"strings"
	"testing"
)

func messages(v []Diagnostic) []string {
	out := make([]string, len(v))
	for i, d := range v {
		out[i] = d.Message
	}

	return out
}

func TestAnalyse_DefaultChecks(t *testing.T) {
	tests := []struct {
		name   string
		source string
		check  string
		want   []string // messages of the single expected violation
	}{
		{
			name:   "break outside loop",
			source: "def main(){ break; }",
			check:  "loop",
			want:   []string{"break outside loop", `in function "main"`},
		},
		{
			name:   "continue in nested function",
			source: "def main(){ while (true) { def f(){ continue; } } }",
			check:  "loop",
			want: []string{
				"continue outside loop",
				`in function "f"`,
				"in while loop",
				`in function "main"`,
			},
		},
		{
			name:   "duplicate variable",
			source: "def main(){ var a; var a; }",
			check:  "duplicate",
			want: []string{
				`duplicate definition of variable "a"`,
				`previous definition of variable "a"`,
				`in function "main"`,
			},
		},
		{
			name:   "variable and function share a name",
			source: "var f; def f(){} def main(){}",
			check:  "duplicate",
			want:   []string{`duplicate definition of "f"`, `previous definition of "f"`},
		},
		{
			name:   "missing main",
			source: "def f(){}",
			check:  "entry",
			want:   []string{`no function "main" defined`},
		},
		{
			name:   "nested main",
			source: "def main(){ def main(){} }",
			check:  "entry",
			want: []string{
				`function "main" must be defined in the root scope`,
				`in function "main"`,
			},
		},
		{
			name:   "undefined variable",
			source: "def main(){ return y; }",
			check:  "undefined",
			want:   []string{`undefined variable "y"`, `in function "main"`},
		},
		{
			name:   "variable out of scope",
			source: "def main(){ { var x; } return x; }",
			check:  "undefined",
			want:   []string{`undefined variable "x"`, `in function "main"`},
		},
		{
			name:   "unreachable",
			source: "def main(){ return 1; var x; }",
			check:  "unreachable",
			want: []string{
				"unreachable statement",
				"after return",
				`in function "main"`,
			},
		},
		{
			name:   "return at top level",
			source: "def main(){} return 1;",
			check:  "root-return",
			want:   []string{"return outside function"},
		},
		{
			name:   "repeated parameter",
			source: "def f(a, a){} def main(){}",
			check:  "parameters",
			want:   []string{`duplicate name "a"`, `first use of "a"`},
		},
		{
			name:   "repeated argument",
			source: "def main(){ f(a: 1, a: 2); } def f(a){}",
			check:  "parameters",
			want:   []string{`duplicate name "a"`, `first use of "a"`, `in function "main"`},
		},
		{
			name:   "assignment to literal",
			source: "def main(){ 1 = 2; }",
			check:  "assignment",
			want:   []string{"cannot assign to Int", `in function "main"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.source)

			violations := Analyse(root, "test.mac")
			if len(violations) != 1 {
				t.Fatalf("expected 1 violation, got %d: %v", len(violations), violations)
			}

			v := violations[0]
			if v[0].Check != tt.check {
				t.Errorf("reported by %q, want %q", v[0].Check, tt.check)
			}

			if got := messages(v); !slices.Equal(got, tt.want) {
				t.Errorf("got messages %q, want %q", got, tt.want)
			}

			for _, d := range v {
				if d.File != "test.mac" || d.Line < 1 || d.Column < 1 {
					t.Errorf("diagnostic %+v has no position", d)
				}
			}
		})
	}
}

func TestAnalyse_Clean(t *testing.T) {
	root := mustParse(t, `
var g = 1;

def add(a, b) { return a + b; }
def add(a) { return a; }

def main(n) {
  var total = 0;
  while (total < n) {
    if (total == 3) { break; }
    total = add(a: total, b: g);
  }
  do { total = total - 1; } while (total > 10);
  fresh = total * 2;
  return fresh;
}`)

	if v := Analyse(root, ""); len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}
}

func TestAnalyse_RedefinedMain(t *testing.T) {
	root := mustParse(t, "def main(){}\ndef main(){}")

	v := Analyse(root, "x", &EntryCheck{})
	if len(v) != 1 {
		t.Fatalf("expected 1 violation, got %v", v)
	}

	if v[0][0].Line != 2 || v[0][1].Line != 1 {
		t.Errorf("expected redefinition on line 2 noted against line 1, got %v", v[0])
	}

	if got := messages(v[0]); !slices.Equal(got,
		[]string{`function "main" redefined`, "first defined here"}) {
		t.Errorf("unexpected messages %q", got)
	}
}

type recorder struct {
	seen []string
}

func (*recorder) Name() string { return "recorder" }

func (*recorder) Signals() []Signal {
	return []Signal{
		{Start, KindScope}, {End, KindScope},
		{Start, KindReturn}, {End, KindReturn},
		{Start, KindInt},
	}
}

func (r *recorder) Handle(a *Analysis, sig Signal, _ Node) {
	r.seen = append(r.seen, sig.Phase.String()+" "+sig.Kind.String()+
		" "+strings.Repeat(".", len(a.Ancestors())))
}

func TestAnalyse_SignalOrder(t *testing.T) {
	r := &recorder{}

	if v := Analyse(mustParse(t, "def main(){ return 1; }"), "", r); len(v) != 0 {
		t.Fatalf("unexpected violations %v", v)
	}

	want := []string{
		"Start Scope ",
		"Start Scope ...",
		"Start Return ....",
		"Start Int .....",
		"End Return ....",
		"End Scope ...",
		"End Scope ",
	}

	if !slices.Equal(r.seen, want) {
		t.Errorf("got signals\n%q\nwant\n%q", r.seen, want)
	}
}

func TestRender(t *testing.T) {
	root := mustParse(t, "def main(){ break; }")

	var b strings.Builder
	if err := Render(&b, Analyse(root, "t.mac")); err != nil {
		t.Fatal(err)
	}

	want := "t.mac:1:13: error: break outside loop [loop]\n" +
		"  1 | def main(){ break; }\n" +
		"    | " + strings.Repeat(" ", 12) + "^\n" +
		"t.mac:1:5: note: in function \"main\"\n"

	if b.String() != want {
		t.Errorf("got\n%s\nwant\n%s", b.String(), want)
	}
}
