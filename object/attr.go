package object

import "strings"

// AttrSpec describes a method or attribute of a value, for dir() and
// completion in the shell.
type AttrSpec struct {
	Name     string
	Doc      string
	Args     []string // required parameters
	Optional []string // trailing optional parameters
	Returns  string
}

// Signature renders the spec as "name(a, b=?)".
func (s AttrSpec) Signature() string {
	params := append([]string(nil), s.Args...)
	for _, opt := range s.Optional {
		params = append(params, opt+"=?")
	}
	return s.Name + "(" + strings.Join(params, ", ") + ")"
}

// Introspectable values can list their attributes.
type Introspectable interface {
	Attrs() []AttrSpec
}

// AttrNames returns the names of attrs in order.
func AttrNames(attrs []AttrSpec) []string {
	names := make([]string, len(attrs))
	for i, attr := range attrs {
		names[i] = attr.Name
	}
	return names
}
