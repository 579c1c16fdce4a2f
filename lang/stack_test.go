package lang

import (
	"errors"
	"slices"
	"testing"
)

func fnRef(frame *Stack, name string, params ...string) *FunctionRef {
	vars := make([]*Variable, len(params))
	for i, p := range params {
		vars[i] = &Variable{Name: p}
	}

	return &FunctionRef{
		Def:   &Function{Name: name, Params: vars, Body: &Scope{}},
		Frame: frame,
	}
}

func lookup(t *testing.T, s *Stack, name string) Value {
	t.Helper()

	var v Value

	if err := s.LookupVariable(name, func(slot *Slot) error {
		v = slot.Value

		return nil
	}); err != nil {
		t.Fatalf("lookup %q: %v", name, err)
	}

	return v
}

func TestStack_Variables(t *testing.T) {
	global := NewStack(nil)

	slot, err := global.DeclareVariable("x")
	if err != nil {
		t.Fatal(err)
	}

	slot.Value = int64(1)

	if _, err := global.DeclareVariable("x"); !errors.Is(err, ErrNameExists) {
		t.Errorf("expected ErrNameExists, got %v", err)
	}

	inner := NewStack(global)

	if got := lookup(t, inner, "x"); got != int64(1) {
		t.Errorf("got %v from enclosing frame", got)
	}

	shadow, _ := inner.DeclareVariable("x")
	shadow.Value = "inner"

	if got := lookup(t, inner, "x"); got != "inner" {
		t.Errorf("expected shadowing, got %v", got)
	}

	if got := lookup(t, global, "x"); got != int64(1) {
		t.Errorf("shadowing modified the outer variable: %v", got)
	}

	if !inner.Has("x") || !inner.Owns("x") || inner.Owns("y") || inner.Has("y") {
		t.Error("unexpected ownership")
	}

	err = inner.LookupVariable("y", func(*Slot) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStack_RedeclareVariable(t *testing.T) {
	s := NewStack(nil)

	first, err := s.RedeclareVariable("x")
	if err != nil {
		t.Fatal(err)
	}

	first.Value = int64(1)

	second, err := s.RedeclareVariable("x")
	if err != nil {
		t.Fatal(err)
	}

	if second == first || second.Value != nil {
		t.Errorf("expected a fresh empty slot, got %#v", second.Value)
	}

	if first.Value != int64(1) {
		t.Errorf("earlier slot changed to %v", first.Value)
	}

	if got := lookup(t, s, "x"); got != nil {
		t.Errorf("got %v, want the empty value", got)
	}

	if err := s.DeclareFunction("f", fnRef(s, "f")); err != nil {
		t.Fatal(err)
	}

	if _, err := s.RedeclareVariable("f"); !errors.Is(err, ErrNameExists) {
		t.Errorf("expected ErrNameExists, got %v", err)
	}
}

func TestStack_Alias(t *testing.T) {
	caller := NewStack(nil)
	slot, _ := caller.DeclareVariable("a")
	slot.Value = int64(1)

	callee := NewStack(nil)
	if err := callee.DeclareAlias("p", slot); err != nil {
		t.Fatal(err)
	}

	// Writes through the alias reach the caller's variable.
	_ = callee.LookupVariable("p", func(s *Slot) error {
		s.Value = int64(2)

		return nil
	})

	if got := lookup(t, caller, "a"); got != int64(2) {
		t.Errorf("alias write not visible: %v", got)
	}

	frame, alias, ok := callee.Binding("p")
	if !ok || !alias || frame != callee {
		t.Fatalf("unexpected binding %v %v %v", frame, alias, ok)
	}

	if err := callee.DeclareAlias("p", slot); !errors.Is(err, ErrNameExists) {
		t.Errorf("expected ErrNameExists, got %v", err)
	}

	// Detach: the alias is replaced by an owned variable.
	callee.RemoveAlias("p")

	own, err := callee.DeclareVariable("p")
	if err != nil {
		t.Fatal(err)
	}

	own.Value = int64(3)

	if got := lookup(t, caller, "a"); got != int64(2) {
		t.Errorf("detached write reached the caller: %v", got)
	}

	if _, alias, _ := callee.Binding("p"); alias {
		t.Error("expected an owned binding after detaching")
	}

	if got := callee.Names(); !slices.Equal(got, []string{"p"}) {
		t.Errorf("unexpected names %v", got)
	}
}

func TestStack_Functions(t *testing.T) {
	global := NewStack(nil)

	one := fnRef(global, "f", "a")
	two := fnRef(global, "f", "a", "b")

	if err := global.DeclareFunction("f", one); err != nil {
		t.Fatal(err)
	}

	if err := global.DeclareFunction("f", two); err != nil {
		t.Fatalf("overload rejected: %v", err)
	}

	err := global.DeclareFunction("f", fnRef(global, "f", "a"))
	if !errors.Is(err, ErrNameExists) {
		t.Errorf("expected ErrNameExists for same parameter set, got %v", err)
	}

	if _, err := global.DeclareVariable("f"); !errors.Is(err, ErrNameExists) {
		t.Errorf("expected variable to clash with function, got %v", err)
	}

	inner := NewStack(global)

	tests := []struct {
		name string
		args []string
		want *FunctionRef
		err  error
	}{
		{"single", []string{"a"}, one, nil},
		{"pair in any order", []string{"b", "a"}, two, nil},
		{"count", []string{"a", "b", "c"}, nil, ErrArgumentCount},
		{"missing", []string{"b"}, nil, ErrMissingArgument},
		{"unknown", []string{"a", "c"}, nil, ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inner.ResolveFunction("f", tt.args)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("expected %v, got %v", tt.err, err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("got %v, %v", got, err)
			}
		})
	}

	if _, err := inner.ResolveFunction("g", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Redefinition replaces the definition with the same parameter set only.
	repl := fnRef(global, "f", "a")
	if err := global.RedefineFunction("f", repl); err != nil {
		t.Fatal(err)
	}

	_ = global.LookupFunction("f", func(refs []*FunctionRef) error {
		if len(refs) != 2 || !slices.Contains(refs, repl) || slices.Contains(refs, one) {
			t.Errorf("unexpected definitions after redefinition: %v", refs)
		}

		return nil
	})
}

func TestStack_FunctionHidesOuterVariable(t *testing.T) {
	global := NewStack(nil)
	slot, _ := global.DeclareVariable("v")
	slot.Value = true

	inner := NewStack(global)
	_ = inner.DeclareFunction("v", fnRef(inner, "v"))

	err := inner.LookupVariable("v", func(*Slot) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the function to hide the variable, got %v", err)
	}
}
