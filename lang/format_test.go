package lang

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

const messy = `var  x=1;def main(a){if(a){return x+1;}else if(!a){x=2;}else{print "q\n";}
while(x<3){x=x+1;} do{x=x-1;}while(x>0);
for(var i=0;i<3;i=i+1){x=x*2.0;}
return x;}`

const canonical = `var x = 1;
def main(a) {
  if (a) {
    return x + 1;
  } else if (!a) {
    x = 2;
  } else {
    print "q\n";
  }
  while (x < 3) {
    x = x + 1;
  }
  do {
    x = x - 1;
  } while (x > 0);
  for (var i = 0; i < 3; i = i + 1) {
    x = x * 2.0;
  }
  return x;
}
`

func TestFormat_Canonical(t *testing.T) {
	root := mustParse(t, messy)

	var b strings.Builder
	if err := Format(context.Background(), &b, root, 2); err != nil {
		t.Fatal(err)
	}

	if b.String() != canonical {
		t.Errorf("got\n%s\nwant\n%s", b.String(), canonical)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	sources := []string{
		messy,
		"def main() { return -(1 + 2) * -3 % 2 / 1.5; }",
		`def f(a, b) { return a && !b || a == b; } def main() { return f(b: false, a: true); }`,
		"def main() { var s = \"tab\\there\"; s = s + \"\\\"\"; return s; }",
		"def main() { { var inner = 1; } if (true) {} return; }",
	}

	for _, src := range sources {
		first := FormatString(mustParse(t, src), 2)
		second := FormatString(mustParse(t, first), 2)

		if first != second {
			t.Errorf("formatting is not stable:\n%s\n---\n%s", first, second)
		}

		// Both forms run to the same result.
		want, wantErr := interpret(t, src)
		got, gotErr := interpret(t, first)

		if got != want || (wantErr == nil) != (gotErr == nil) {
			t.Errorf("formatted program returned %v, %v; original %v, %v",
				got, gotErr, want, wantErr)
		}
	}
}

func TestFormatString_SingleLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"def main(){return 1;}", "def main() { return 1; }"},
		{"var a = 2.0; a = a * 3;", "var a = 2.0; a = a * 3;"},
		{"var a; a = 1;", "var a; a = 1;"},
		{"def main(){} // comment", "def main() {}"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatString(mustParse(t, tt.input), 0); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTree(t *testing.T) {
	var b strings.Builder
	if err := FormatTree(&b, mustParse(t, "def main(){return 1;}")); err != nil {
		t.Fatal(err)
	}

	want := `Scope 1:1
  Define 1:1
    EntryFunction 1:5 main()
      Scope 1:11
        Return 1:12
          Int 1:19 1
`

	if b.String() != want {
		t.Errorf("got\n%s\nwant\n%s", b.String(), want)
	}
}

func TestFormatJSON(t *testing.T) {
	expr, err := ParseExpression(context.Background(), "1 + x")
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := FormatJSON(context.Background(), &b, expr, 0); err != nil {
		t.Fatal(err)
	}

	want := `{"column":3,"kind":"BinaryOperator",` +
		`"lhs":{"column":1,"kind":"Int","line":1,"value":1},` +
		`"line":1,"op":"ADD",` +
		`"rhs":{"column":5,"kind":"Variable","line":1,"name":"x"}}` + "\n"

	if b.String() != want {
		t.Errorf("got %s\nwant %s", b.String(), want)
	}

	b.Reset()

	if err := FormatJSON(context.Background(), &b, mustParse(t, messy), 2); err != nil {
		t.Fatal(err)
	}

	var tree map[string]any
	if err := json.Unmarshal([]byte(b.String()), &tree); err != nil {
		t.Fatal(err)
	}

	if tree["kind"] != "Scope" || len(tree["statements"].([]any)) != 3 {
		t.Errorf("unexpected tree %v", tree)
	}
}

func TestFormatYAML(t *testing.T) {
	root := mustParse(t, "def main(n) { return n; }")

	for _, indent := range []int{0, 2, 4} {
		var b strings.Builder
		if err := FormatYAML(context.Background(), &b, root, indent); err != nil {
			t.Fatal(err)
		}

		var tree map[string]any
		if err := yaml.Unmarshal([]byte(b.String()), &tree); err != nil {
			t.Fatalf("indent %d: %v\n%s", indent, err, b.String())
		}

		stmts, ok := tree["statements"].([]any)
		if !ok || len(stmts) != 1 {
			t.Fatalf("indent %d: unexpected tree %v", indent, tree)
		}

		target := stmts[0].(map[string]any)["target"].(map[string]any)
		if target["kind"] != "EntryFunction" || target["name"] != EntryName {
			t.Errorf("indent %d: unexpected target %v", indent, target)
		}
	}
}
