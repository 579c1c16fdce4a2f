package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/macro/command"
)

func interpret(t *testing.T, source string, opts ...Option) (Value, error) {
	t.Helper()

	return NewInterpreter(opts...).
		Interpret(context.Background(), source, nil, "", "test.mac")
}

func TestInterpret_Results(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{"int", "def main(){return 1;}", int64(1)},
		{"double", "def main(){return 1.1;}", 1.1},
		{"bool", "def main(){return true;}", true},
		{"string", `def main(){return "herbert";}`, "herbert"},
		{"empty", "def main(){return;}", nil},
		{"double modulo", "def main(){ return 5 % 2.0; }", 1.0},
		{"no return", "def main(){ var x = 1; }", nil},
		{
			name:   "global variable",
			source: "var x = 5; def main(){ return x; }",
			want:   int64(5),
		},
		{
			name:   "function before definition",
			source: "def main(){ return twice(n: 4); } def twice(n){ return n * 2; }",
			want:   int64(8),
		},
		{
			name:   "named arguments in any order",
			source: "def sub(a, b){ return a - b; } def main(){ return sub(b: 1, a: 3); }",
			want:   int64(2),
		},
		{
			name: "overload by parameter set",
			source: `
def f(a) { return "one"; }
def f(a, b) { return "two"; }
def main() { return f(a: 1) + f(b: 2, a: 1); }`,
			want: "onetwo",
		},
		{
			name:   "while",
			source: "def main(){ var i = 0; while (i < 3) { i = i + 1; } return i; }",
			want:   int64(3),
		},
		{
			name: "break",
			source: `def main() {
  var i = 0;
  while (true) {
    i = i + 1;
    if (i == 2) { break; }
  }
  return i;
}`,
			want: int64(2),
		},
		{
			name: "continue",
			source: `def main() {
  var i = 0;
  var odd = 0;
  while (i < 5) {
    i = i + 1;
    if (i % 2 == 0) { continue; }
    odd = odd + 1;
  }
  return odd;
}`,
			want: int64(3),
		},
		{
			name: "loop body bindings persist across iterations",
			source: `def main() {
  var i = 0;
  var r = 0;
  while (i < 2) {
    if (i == 1) { r = x; }
    x = 5;
    i = i + 1;
  }
  return r;
}`,
			want: int64(5),
		},
		{
			name: "loop body var resets each iteration",
			source: `def main() {
  var i = 0;
  var seen = 0;
  while (i < 3) {
    var v = 0;
    v = v + 1;
    seen = seen + v;
    i = i + 1;
  }
  return seen;
}`,
			want: int64(3),
		},
		{
			name: "loop body function redefined each iteration",
			source: `def main() {
  var i = 0;
  var sum = 0;
  while (i < 3) {
    def get() { return i; }
    sum = sum + get();
    i = i + 1;
  }
  return sum;
}`,
			want: int64(3),
		},
		{
			name: "condition sees body bindings",
			source: `def main() {
  var i = 0;
  do { done = i >= 2; i = i + 1; } while (!done);
  return i;
}`,
			want: int64(3),
		},
		{
			name: "function closes over declaration frame",
			source: `def main() {
  var x = 1;
  def get() { return x; }
  { var x = 2; return get(); }
}`,
			want: int64(1),
		},
		{
			name:   "do while runs once",
			source: "def main(){ var i = 10; do { i = i + 1; } while (i < 5); return i; }",
			want:   int64(11),
		},
		{
			name: "return from loop",
			source: `def main() {
  var i = 0;
  while (true) {
    while (true) {
      i = i + 1;
      if (i > 4) { return i * 10; }
    }
  }
}`,
			want: int64(50),
		},
		{
			name: "recursion",
			source: `
def fact(n) {
  if (n <= 1) { return 1; }
  return n * fact(n: n - 1);
}
def main() { return fact(n: 10); }`,
			want: int64(3628800),
		},
		{
			name: "else if",
			source: `
def sign(x) {
  if (x < 0) { return -1; } else if (x == 0) { return 0; } else { return 1; }
}
def main() { return sign(x: -5) + sign(x: 0) * 10 + sign(x: 7) * 100; }`,
			want: int64(99),
		},
		{
			name:   "block scope shadows",
			source: "def main(){ var x = 1; { var x = 2; } return x; }",
			want:   int64(1),
		},
		{
			name:   "assignment declares",
			source: "def main(){ y = 3; return y + 1; }",
			want:   int64(4),
		},
		{
			name:   "assignment is an expression",
			source: "def main(){ var a; var b; a = (b = 2) + 1; return a * b; }",
			want:   int64(6),
		},
		{
			name:   "logical operators evaluate both sides",
			source: "def main(){ var n = 0; var r = false && (n = 1); return n; }",
			want:   int64(1),
		},
		{
			name:   "string concatenation",
			source: `def main(){ return "v" + 1 + "." + 2.5 + true; }`,
			want:   "v1.2.5true",
		},
		{
			name:   "for loop is not executed",
			source: "def main(){ var n = 0; for (var i = 0; i < 3; i = i + 1) { n = n + 1; } return n; }",
			want:   int64(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := interpret(t, tt.source)
			if err != nil {
				t.Fatalf("interpret error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestInterpret_Print(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "concatenation binds tighter than print",
			source: `def main() { print "Herbert" + 1 + 0.42 + true; }`,
			want:   "Herbert10.42true",
		},
		{
			name: "separate statements",
			source: `
def main() {
  print "Herbert";
  print 1;
  print 0.42;
  print true;
}`,
			want: "Herbert10.42true",
		},
		{
			name:   "arithmetic before print",
			source: `def main() { print 1 + 2 * 3; }`,
			want:   "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if _, err := interpret(t, tt.source, WithOutput(&buf)); err != nil {
				t.Fatal(err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("got output %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInterpret_EntryArguments(t *testing.T) {
	source := `def main(name, count) { return name + ":" + (count + 1); }`
	in := NewInterpreter()

	args := command.NewArguments().
		Add("name", "", "x", false).
		Add("count", "", 41, false)

	got, err := in.Interpret(context.Background(), source, args, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if got != "x:42" {
		t.Errorf("got %#v", got)
	}

	_, err = in.Interpret(context.Background(), source,
		command.NewArguments().Add("name", "", "x", false), "", "")
	if !errors.Is(err, ErrArgumentCount) {
		t.Errorf("expected ErrArgumentCount, got %v", err)
	}

	_, err = in.Interpret(context.Background(), source,
		command.NewArguments().
			Add("name", "", "x", false).
			Add("other", "", 1, false), "", "")
	if !errors.Is(err, ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestInterpret_AliasArguments(t *testing.T) {
	// A variable argument is shared with the callee until the callee assigns
	// to the parameter, which then becomes a local copy.
	got, err := interpret(t, `
var shared = 1;
def peek(v) { shared = 5; return v; }
def inc(v) { v = v + 1; return v; }
def main() {
  var a = 1;
  var seen = peek(v: shared);
  var b = inc(v: a);
  return seen * 100 + a * 10 + b;
}`)
	if err != nil {
		t.Fatal(err)
	}

	if got != int64(512) {
		t.Errorf("got %#v, want 512", got)
	}
}

func TestInterpret_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"no main", "def f(){}", ErrNoEntry},
		{"undefined variable", "def main(){ return x; }", ErrNotFound},
		{"undefined function", "def main(){ return nope(); }", ErrMissingProvider},
		{
			name:   "wrong arguments",
			source: "def f(a){} def main(){ return f(b: 1); }",
			want:   ErrMissingArgument,
		},
		{
			name:   "argument count",
			source: "def f(a){} def main(){ return f(a: 1, b: 2); }",
			want:   ErrArgumentCount,
		},
		{"missing operator", `def main(){ return "a" - 1; }`, ErrMissingOperator},
		{"function as variable", `def main(){ if (main) {} }`, ErrNotFound},
		{"bad condition", `def f(){} def main(){ while (f()) {} }`, ErrBadBoolConversion},
		{"division by zero", "def main(){ return 1 / 0; }", ErrDivisionByZero},
		{"break outside loop", "def main(){ break; }", ErrBreakOutsideLoop},
		{"return outside function", "return 1; def main(){}", ErrReturnOutsideFunction},
		{"redeclared variable", "def main(){ var a; var a; }", ErrNameExists},
		{"duplicate function", "def f(a){} def f(a){} def main(){}", ErrNameExists},
		{
			name:   "call depth",
			source: "def f(){ return f(); } def main(){ return f(); }",
			want:   ErrMaxDepthExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interpret(t, tt.source, WithMaxCallDepth(64))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			var se *SourceError
			if !errors.As(err, &se) {
				t.Fatalf("expected a positioned error, got %T", err)
			}

			if se.File != "test.mac" {
				t.Errorf("unexpected file %q", se.File)
			}
		})
	}
}

func TestInterpret_ErrorPosition(t *testing.T) {
	_, err := interpret(t, "def main() {\n  var x = 1;\n  return x + \"a\" - 2;\n}")

	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SourceError, got %v", err)
	}

	if se.Token.Line != 3 || se.Token.Lexeme != "-" {
		t.Errorf("error at %s, want the subtraction on line 3", se.Token)
	}
}

func TestInterpret_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewInterpreter().Interpret(ctx,
		"def main(){ while (true) {} }", nil, "", "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestInterpret_Commands(t *testing.T) {
	reg := command.NewRegistry()
	if err := command.RegisterBuiltins(reg); err != nil {
		t.Fatal(err)
	}

	err := reg.Register("editor", "shout", command.Func{
		Args: command.NewArguments().
			Add("text", "", nil, false).
			Add("times", "", int64(1), true),
		Run: func(_ context.Context, args *command.Arguments) (any, error) {
			text, _ := command.Get[string](args, "text")
			times, _ := command.Get[int64](args, "times")

			return strings.Repeat(strings.ToUpper(text), int(times)), nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	in := NewInterpreter(WithCommands(reg))

	tests := []struct {
		name   string
		source string
		scope  string
		want   Value
	}{
		{
			name:   "scoped command",
			source: `def main(){ return shout(text: "hi", times: 2); }`,
			scope:  "editor",
			want:   "HIHI",
		},
		{
			name:   "optional argument",
			source: `def main(){ return shout(text: "hi"); }`,
			scope:  "editor",
			want:   "HI",
		},
		{
			name:   "global builtin",
			source: `def main(){ return typeof(value: 1.5); }`,
			scope:  "editor",
			want:   "double",
		},
		{
			name:   "expr builtin",
			source: `def main(){ return expr(code: "1 + 2") * 2; }`,
			want:   int64(6),
		},
		{
			name:   "user function shadows command",
			source: `def typeof(value){ return "mine"; } def main(){ return typeof(value: 1); }`,
			want:   "mine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.Interpret(context.Background(), tt.source, nil, tt.scope, "")
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	errs := []struct {
		name   string
		source string
		want   error
	}{
		{"unknown command", `def main(){ return nope(); }`, ErrNotFound},
		{"scope hides command", `def main(){ return shout(text: "x"); }`, ErrNotFound},
		{"unknown argument", `def main(){ return typeof(value: 1, x: 2); }`, ErrUnknownArgument},
		{"missing argument", `def main(){ return typeof(); }`, ErrMissingArgument},
		{"command failure", `def main(){ return expr(code: "1 +"); }`, ErrCommand},
	}

	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Interpret(context.Background(), tt.source, nil, "", "")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
