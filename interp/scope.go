package interp

import (
	"sort"

	"github.com/t0technology/awaitless/object"
)

type binding struct {
	value    object.Object
	constant bool
}

// Scope holds the variables of one function invocation, or of the session
// for top-level code. Blocks share the scope of their function.
type Scope struct {
	vars   map[string]*binding
	parent *Scope
}

// NewScope returns an empty scope nested in parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: map[string]*binding{}, parent: parent}
}

// Get looks name up in this scope and its ancestors.
func (s *Scope) Get(name string) (object.Object, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Declare binds name in this scope, shadowing any outer binding.
func (s *Scope) Declare(name string, value object.Object, constant bool) error {
	if b, ok := s.vars[name]; ok && b.constant {
		return object.TypeErrorf("cannot redeclare constant %q", name)
	}
	s.vars[name] = &binding{value: value, constant: constant}
	return nil
}

// Set updates the nearest existing binding of name, or defines it in this
// scope when there is none.
func (s *Scope) Set(name string, value object.Object) error {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			if b.constant {
				return object.TypeErrorf("cannot assign to constant %q", name)
			}
			b.value = value
			return nil
		}
	}
	s.vars[name] = &binding{value: value}
	return nil
}

// Delete removes name from this scope only.
func (s *Scope) Delete(name string) {
	delete(s.vars, name)
}

// Names returns every name visible from this scope, sorted.
func (s *Scope) Names() []string {
	seen := map[string]bool{}
	for cur := s; cur != nil; cur = cur.parent {
		for name := range cur.vars {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
