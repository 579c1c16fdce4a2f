package command

import (
	"errors"
	"slices"
	"testing"
)

func TestArguments_AddAndGet(t *testing.T) {
	args := NewArguments().
		Add("name", "a name", nil, false).
		Add("count", "a count", int64(3), true)

	if !args.Has("name") || !args.Has("count") || args.Has("other") {
		t.Fatal("Has reported wrong declarations")
	}

	if got := args.Names(); !slices.Equal(got, []string{"name", "count"}) {
		t.Errorf("expected declaration order, got %v", got)
	}

	if n, ok := Get[int64](args, "count"); !ok || n != 3 {
		t.Errorf("expected default 3, got %v (%v)", n, ok)
	}

	if _, ok := Get[string](args, "count"); ok {
		t.Error("expected type mismatch to report false")
	}

	if err := args.Set("name", "herbert"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if s, ok := Get[string](args, "name"); !ok || s != "herbert" {
		t.Errorf("expected herbert, got %q", s)
	}
}

func TestArguments_Set_Unknown(t *testing.T) {
	err := NewArguments().Set("missing", 1)
	if !errors.Is(err, ErrUnknownArgument) {
		t.Errorf("expected ErrUnknownArgument, got %v", err)
	}
}

func TestArguments_Validate(t *testing.T) {
	args := NewArguments().
		Add("required", "", nil, false).
		Add("optional", "", nil, true)

	if err := args.Validate(); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}

	_ = args.Set("required", true)

	if err := args.Validate(); err != nil {
		t.Errorf("expected valid arguments, got %v", err)
	}
}

func TestArguments_Clone_ResetsValues(t *testing.T) {
	args := NewArguments().Add("x", "", int64(1), false)
	_ = args.Set("x", int64(5))

	c := args.Clone()

	if v, _ := c.Value("x"); v != int64(1) {
		t.Errorf("expected clone to hold default, got %v", v)
	}

	if v, _ := args.Value("x"); v != int64(5) {
		t.Errorf("expected original to keep its value, got %v", v)
	}
}

func TestArguments_NilSafe(t *testing.T) {
	var args *Arguments

	if args.Has("x") || args.Len() != 0 || args.Validate() != nil {
		t.Error("nil arguments should behave as empty")
	}

	for range args.All() {
		t.Error("nil arguments should not iterate")
	}
}
