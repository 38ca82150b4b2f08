package builtins

import "github.com/t0technology/awaitless/object"

// Docs returns documentation for all builtin functions, sorted by name.
func Docs() []object.AttrSpec {
	return builtinDocs
}

var builtinDocs = []object.AttrSpec{
	{Name: "all", Doc: "Return true if all elements are truthy", Args: []string{"items"}, Returns: "bool"},
	{Name: "any", Doc: "Return true if any element is truthy", Args: []string{"items"}, Returns: "bool"},
	{Name: "assert", Doc: "Raise an error if condition is false", Args: []string{"condition", "message?"}, Returns: "nil"},
	{Name: "bool", Doc: "Convert value to boolean", Args: []string{"value?"}, Returns: "bool"},
	{Name: "call", Doc: "Call a function with arguments", Args: []string{"fn", "args..."}, Returns: "any"},
	{Name: "dir", Doc: "Sorted attribute names of a value, or the builtin names", Args: []string{"value?"}, Returns: "list"},
	{Name: "error", Doc: "Create an error value; raise it with throw", Args: []string{"format", "args..."}, Returns: "error"},
	{Name: "float", Doc: "Convert value to float", Args: []string{"value?"}, Returns: "float"},
	{Name: "getattr", Doc: "Get an attribute, with an optional default", Args: []string{"obj", "name", "default?"}, Returns: "any"},
	{Name: "int", Doc: "Convert value to integer", Args: []string{"value?"}, Returns: "int"},
	{Name: "keys", Doc: "Keys of a map or indexes of a list", Args: []string{"container"}, Returns: "list"},
	{Name: "len", Doc: "Number of items in a container", Args: []string{"container"}, Returns: "int"},
	{Name: "list", Doc: "Create a list from a list, map or string", Args: []string{"value?"}, Returns: "list"},
	{Name: "print", Doc: "Write values separated by spaces", Args: []string{"values..."}, Returns: "nil"},
	{Name: "range", Doc: "List of integers from start up to stop", Args: []string{"start?", "stop"}, Returns: "list"},
	{Name: "sorted", Doc: "Sorted copy of a list, with an optional less function", Args: []string{"items", "less?"}, Returns: "list"},
	{Name: "sprintf", Doc: "Format a string", Args: []string{"format", "args..."}, Returns: "string"},
	{Name: "str", Doc: "Convert value to string", Args: []string{"value?"}, Returns: "string"},
	{Name: "string", Doc: "Convert value to string", Args: []string{"value?"}, Returns: "string"},
	{Name: "type", Doc: "Name of the value's type", Args: []string{"value"}, Returns: "string"},
	{Name: "RuntimeError", Doc: "Create a RuntimeError value", Args: []string{"format", "args..."}, Returns: "error"},
	{Name: "TypeError", Doc: "Create a TypeError value", Args: []string{"format", "args..."}, Returns: "error"},
	{Name: "ValueError", Doc: "Create a ValueError value", Args: []string{"format", "args..."}, Returns: "error"},
}
