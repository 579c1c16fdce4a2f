package lang

import (
	"log/slog"
	"slices"
)

// Slot is a variable cell. Aliases in other frames share the same Slot.
type Slot struct {
	Value Value
}

// FunctionRef binds a function definition to the frame it was declared in.
// Calls run in a frame whose parent is Frame.
type FunctionRef struct {
	Def   Invocable
	Frame *Stack
}

// Signature returns the signature of the referenced function.
func (r *FunctionRef) Signature() Signature { return r.Def.Signature() }

// Stack is one frame of a lexically scoped symbol table.
//
// A frame owns variables and functions, and may hold aliases to slots owned
// by other frames. Names are unique within a frame except that a function
// name may carry several definitions with distinct parameter sets.
type Stack struct {
	parent  *Stack
	order   []string
	vars    map[string]*Slot
	aliases map[string]*Slot
	funcs   map[string][]*FunctionRef
}

// NewStack returns an empty frame chained to parent, which may be nil.
func NewStack(parent *Stack) *Stack {
	return &Stack{
		parent:  parent,
		vars:    make(map[string]*Slot),
		aliases: make(map[string]*Slot),
		funcs:   make(map[string][]*FunctionRef),
	}
}

// Parent returns the enclosing frame, or nil.
func (s *Stack) Parent() *Stack { return s.parent }

// Owns reports whether name is bound in this frame, ignoring ancestors.
func (s *Stack) Owns(name string) bool {
	_, v := s.vars[name]
	_, a := s.aliases[name]
	_, f := s.funcs[name]

	return v || a || f
}

// Has reports whether name is bound in this frame or an ancestor.
func (s *Stack) Has(name string) bool {
	for f := s; f != nil; f = f.parent {
		if f.Owns(name) {
			return true
		}
	}

	return false
}

// Names returns the names bound in this frame in declaration order.
func (s *Stack) Names() []string {
	return slices.Clone(s.order)
}

func (s *Stack) exists(name string) error {
	return ErrNameExists.With(slog.String("name", name))
}

func (s *Stack) bind(name string) {
	if !slices.Contains(s.order, name) {
		s.order = append(s.order, name)
	}
}

func (s *Stack) unbind(name string) {
	if !s.Owns(name) {
		s.order = slices.DeleteFunc(s.order, func(n string) bool {
			return n == name
		})
	}
}

// DeclareVariable adds an empty variable to this frame.
func (s *Stack) DeclareVariable(name string) (*Slot, error) {
	if s.Owns(name) {
		return nil, s.exists(name)
	}

	slot := &Slot{}
	s.vars[name] = slot
	s.bind(name)

	return slot, nil
}

// RedeclareVariable is DeclareVariable, except that a variable this frame
// already owns is replaced by an empty one. Slots captured earlier keep their
// values.
func (s *Stack) RedeclareVariable(name string) (*Slot, error) {
	if _, ok := s.vars[name]; ok {
		slot := &Slot{}
		s.vars[name] = slot

		return slot, nil
	}

	return s.DeclareVariable(name)
}

// DeclareFunction adds a function to this frame. A function may share its
// name with other functions of different parameter sets, but not with a
// variable or alias.
func (s *Stack) DeclareFunction(name string, ref *FunctionRef) error {
	if _, ok := s.vars[name]; ok {
		return s.exists(name)
	}

	if _, ok := s.aliases[name]; ok {
		return s.exists(name)
	}

	key := ref.Signature().Key()
	for _, r := range s.funcs[name] {
		if r.Signature().Key() == key {
			return ErrNameExists.With(slog.String("name", name),
				slog.String("signature", ref.Signature().String()))
		}
	}

	s.funcs[name] = append(s.funcs[name], ref)
	s.bind(name)

	return nil
}

// RedefineFunction adds a function to this frame, replacing any function of
// the same name and parameter set.
func (s *Stack) RedefineFunction(name string, ref *FunctionRef) error {
	key := ref.Signature().Key()
	s.funcs[name] = slices.DeleteFunc(s.funcs[name], func(r *FunctionRef) bool {
		return r.Signature().Key() == key
	})

	if len(s.funcs[name]) == 0 {
		delete(s.funcs, name)
	}

	return s.DeclareFunction(name, ref)
}

// DeclareAlias binds name in this frame to a slot owned elsewhere.
func (s *Stack) DeclareAlias(name string, slot *Slot) error {
	if s.Owns(name) {
		return s.exists(name)
	}

	s.aliases[name] = slot
	s.bind(name)

	return nil
}

// RemoveAlias unbinds an alias from this frame. It does nothing if name is
// not an alias here.
func (s *Stack) RemoveAlias(name string) {
	if _, ok := s.aliases[name]; !ok {
		return
	}

	delete(s.aliases, name)
	s.unbind(name)
}

// LookupVariable calls fn with the slot bound to name, searching aliases and
// variables of each frame from this one outward.
func (s *Stack) LookupVariable(name string, fn func(*Slot) error) error {
	for f := s; f != nil; f = f.parent {
		if slot, ok := f.aliases[name]; ok {
			return fn(slot)
		}

		if slot, ok := f.vars[name]; ok {
			return fn(slot)
		}

		if _, ok := f.funcs[name]; ok {
			break
		}
	}

	return ErrNotFound.With(slog.String("variable", name))
}

// LookupFunction calls fn with the definitions bound to name in the nearest
// frame that declares it.
func (s *Stack) LookupFunction(name string, fn func([]*FunctionRef) error) error {
	for f := s; f != nil; f = f.parent {
		if refs, ok := f.funcs[name]; ok {
			return fn(refs)
		}

		if f.Owns(name) {
			break
		}
	}

	return ErrNotFound.With(slog.String("function", name))
}

// ResolveFunction returns the definition of name accepting exactly the
// argument names given. Frames are searched outward; a frame declaring name
// without a matching parameter set does not end the search.
//
// When no definition matches, the error describes the nearest definition
// taking as many parameters as there are arguments, if any.
func (s *Stack) ResolveFunction(name string, args []string) (*FunctionRef, error) {
	var near *FunctionRef

	for f := s; f != nil; f = f.parent {
		for _, r := range f.funcs[name] {
			if r.Signature().Accepts(args) {
				return r, nil
			}

			if near == nil || (len(near.Signature().Params) != len(args) &&
				len(r.Signature().Params) == len(args)) {
				near = r
			}
		}
	}

	if near == nil {
		return nil, ErrNotFound.With(slog.String("function", name))
	}

	sig := near.Signature()
	attrs := []slog.Attr{
		slog.String("function", sig.String()),
		slog.Any("arguments", args),
	}

	if len(args) != len(sig.Params) {
		return nil, ErrArgumentCount.With(attrs...)
	}

	for _, p := range sig.Params {
		if !slices.Contains(args, p) {
			return nil, ErrMissingArgument.With(
				append(attrs, slog.String("parameter", p))...)
		}
	}

	return nil, ErrUnknownArgument.With(attrs...)
}

// Binding reports where name resolves: the frame that binds it and whether
// that binding is an alias.
func (s *Stack) Binding(name string) (frame *Stack, alias, ok bool) {
	for f := s; f != nil; f = f.parent {
		if _, ok := f.aliases[name]; ok {
			return f, true, true
		}

		if f.Owns(name) {
			return f, false, true
		}
	}

	return nil, false, false
}
