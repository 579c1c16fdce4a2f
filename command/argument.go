package command

import (
	"iter"
	"log/slog"
)

// Argument is one named parameter of a [Command].
type Argument struct {
	Name        string
	Description string
	Default     any
	Optional    bool

	value any
	set   bool
}

// Value returns the assigned value, or the default if none was assigned.
func (a *Argument) Value() any {
	if a.set {
		return a.value
	}

	return a.Default
}

// IsSet reports whether a value was assigned explicitly.
func (a *Argument) IsSet() bool { return a.set }

// Arguments is an ordered mapping of argument names to values.
// The zero value is an empty, usable argument list.
type Arguments struct {
	list  []*Argument
	index map[string]int
}

// NewArguments returns an empty argument list.
func NewArguments() *Arguments {
	return &Arguments{index: make(map[string]int)}
}

// Add declares an argument. Adding a name that already exists replaces its
// description, default, and optionality while keeping its position.
// A declared argument with a non-nil default counts as set.
func (a *Arguments) Add(
	name, description string,
	def any,
	optional bool,
) *Arguments {
	if a.index == nil {
		a.index = make(map[string]int)
	}

	arg := &Argument{
		Name:        name,
		Description: description,
		Default:     def,
		Optional:    optional,
		value:       def,
		set:         def != nil,
	}

	if i, ok := a.index[name]; ok {
		a.list[i] = arg

		return a
	}

	a.index[name] = len(a.list)
	a.list = append(a.list, arg)

	return a
}

// Has reports whether name is a declared argument.
func (a *Arguments) Has(name string) bool {
	if a == nil {
		return false
	}

	_, ok := a.index[name]

	return ok
}

// Lookup returns the declared argument with the given name.
// Mutating the returned value updates the list.
func (a *Arguments) Lookup(name string) (*Argument, bool) {
	if a == nil {
		return nil, false
	}

	i, ok := a.index[name]
	if !ok {
		return nil, false
	}

	return a.list[i], true
}

// Value returns the value of the named argument.
func (a *Arguments) Value(name string) (any, bool) {
	arg, ok := a.Lookup(name)
	if !ok {
		return nil, false
	}

	return arg.Value(), true
}

// Get returns the named argument converted to T.
// It reports false if the argument is undeclared or holds another type.
func Get[T any](a *Arguments, name string) (T, bool) {
	var zero T

	v, ok := a.Value(name)
	if !ok {
		return zero, false
	}

	t, ok := v.(T)

	return t, ok
}

// Set assigns a value to a declared argument.
func (a *Arguments) Set(name string, v any) error {
	arg, ok := a.Lookup(name)
	if !ok {
		return ErrUnknownArgument.With(slog.String("argument", name))
	}

	arg.value = v
	arg.set = true

	return nil
}

// Len returns the number of declared arguments.
func (a *Arguments) Len() int {
	if a == nil {
		return 0
	}

	return len(a.list)
}

// Names returns the declared argument names in declaration order.
func (a *Arguments) Names() []string {
	if a == nil {
		return nil
	}

	names := make([]string, len(a.list))
	for i, arg := range a.list {
		names[i] = arg.Name
	}

	return names
}

// All returns an iterator over argument names and values in declaration
// order.
func (a *Arguments) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if a == nil {
			return
		}

		for _, arg := range a.list {
			if !yield(arg.Name, arg.Value()) {
				return
			}
		}
	}
}

// Validate fails if a required argument has no value.
func (a *Arguments) Validate() error {
	if a == nil {
		return nil
	}

	for _, arg := range a.list {
		if !arg.Optional && !arg.set {
			return ErrMissingArgument.With(slog.String("argument", arg.Name))
		}
	}

	return nil
}

// Clone returns an independent copy of the declarations with every assigned
// value reset to its default.
func (a *Arguments) Clone() *Arguments {
	c := NewArguments()
	if a == nil {
		return c
	}

	for _, arg := range a.list {
		c.Add(arg.Name, arg.Description, arg.Default, arg.Optional)
	}

	return c
}
