package command

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
)

func echo() Command {
	return Func{
		Args: NewArguments().Add("value", "", nil, false),
		Run: func(_ context.Context, args *Arguments) (any, error) {
			v, _ := args.Value("value")

			return v, nil
		},
	}
}

func TestRegistry_ScopeFallback(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(GlobalScope, "echo", echo()); err != nil {
		t.Fatal(err)
	}

	if err := r.Register("editor", "save", echo()); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Command("editor", "echo"); err != nil {
		t.Errorf("expected global fallback, got %v", err)
	}

	if _, err := r.Command("", "save"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected scoped command to be hidden, got %v", err)
	}

	if got := r.Names("editor"); !slices.Equal(got, []string{"echo", "save"}) {
		t.Errorf("unexpected names %v", got)
	}

	if got := r.Scopes(); !slices.Equal(got, []string{"editor"}) {
		t.Errorf("unexpected scopes %v", got)
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("", "echo", echo())

	if err := r.Register("", "echo", echo()); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Go(func() {
			_ = r.Register("s", strings.Repeat("x", i+1), echo())
			_, _ = r.Command("s", "x")
			_ = r.Names("s")
		})
	}

	wg.Wait()

	if got := len(r.Names("s")); got != 8 {
		t.Errorf("expected 8 commands, got %d", got)
	}
}

func TestBuiltins(t *testing.T) {
	t.Setenv("MACRO_TEST_VAR", "hello")

	tests := []struct {
		name    string
		command string
		args    map[string]any
		want    any
		wantErr error
	}{
		{"expr arithmetic", "expr", map[string]any{"code": "1 + 2"}, 3, nil},
		{"expr env", "expr", map[string]any{"code": `env["MACRO_TEST_VAR"]`}, "hello", nil},
		{"expr bad syntax", "expr", map[string]any{"code": "1 +"}, nil, ErrExecute},
		{"getenv set", "getenv", map[string]any{"name": "MACRO_TEST_VAR"}, "hello", nil},
		{"getenv default", "getenv", map[string]any{"name": "MACRO_UNSET_VAR", "default": "d"}, "d", nil},
		{"getenv wrong type", "getenv", map[string]any{"name": int64(1)}, nil, ErrArgumentType},
		{"join", "join", map[string]any{"a": "a", "b": "b"}, "a" + string(os.PathSeparator) + "b", nil},
		{"typeof int", "typeof", map[string]any{"value": int64(1)}, "int", nil},
		{"typeof double", "typeof", map[string]any{"value": 1.5}, "double", nil},
		{"str double", "str", map[string]any{"value": 0.42}, "0.42", nil},
	}

	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Command("any", tt.command)
			if err != nil {
				t.Fatal(err)
			}

			args := c.Arguments().Clone()
			for k, v := range tt.args {
				if err := args.Set(k, v); err != nil {
					t.Fatal(err)
				}
			}

			if err := args.Validate(); err != nil {
				t.Fatal(err)
			}

			got, err := c.Execute(t.Context(), args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestBuiltins_Prefix(t *testing.T) {
	c := Builtins()["prefix"]
	args := c.Arguments().Clone()
	_ = args.Set("list", "/usr/bin:/bin")
	_ = args.Set("item", "/opt/bin")
	_ = args.Set("delim", ":")

	got, err := c.Execute(t.Context(), args)
	if err != nil {
		t.Fatal(err)
	}

	s, ok := got.(string)
	if !ok || !strings.Contains(s, "/opt/bin") || !strings.Contains(s, "/usr/bin") {
		t.Errorf("unexpected prefix result %v", got)
	}
}
