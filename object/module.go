package object

import (
	"fmt"
	"sort"
)

// Module is a named namespace of builtins and values, bound by import.
type Module struct {
	*base
	name  string
	attrs map[string]Object
}

func (m *Module) Attrs() []AttrSpec {
	specs := make([]AttrSpec, 0, len(m.attrs))
	for _, name := range m.sortedNames() {
		specs = append(specs, AttrSpec{Name: name, Returns: string(m.attrs[name].Type())})
	}
	return specs
}

func (m *Module) GetAttr(name string) (Object, bool) {
	if name == "__name__" {
		return NewString(m.name), true
	}
	value, ok := m.attrs[name]
	return value, ok
}

func (m *Module) SetAttr(name string, value Object) error {
	return TypeErrorf("cannot modify module attributes")
}

func (m *Module) Type() Type {
	return MODULE
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) Inspect() string {
	return fmt.Sprintf("module(%s)", m.name)
}

func (m *Module) String() string {
	return m.Inspect()
}

func (m *Module) Interface() any {
	return nil
}

func (m *Module) Equals(other Object) bool {
	otherModule, ok := other.(*Module)
	return ok && m == otherModule
}

func (m *Module) sortedNames() []string {
	names := make([]string, 0, len(m.attrs))
	for name := range m.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltinsModule returns a module holding the given attributes. Builtins
// in the map are renamed so that they report the module as their origin.
func NewBuiltinsModule(name string, contents map[string]Object) *Module {
	attrs := make(map[string]Object, len(contents))
	for k, v := range contents {
		if b, ok := v.(*Builtin); ok && b.moduleName == "" {
			v = NewModuleBuiltin(name, b.name, b.fn)
		}
		attrs[k] = v
	}
	return &Module{name: name, attrs: attrs}
}
