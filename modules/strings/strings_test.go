package strings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/object"
)

func call(t *testing.T, name string, args ...object.Object) (object.Object, error) {
	t.Helper()
	fn, ok := Module().GetAttr(name)
	require.True(t, ok, name)
	return fn.(*object.Builtin).Call(context.Background(), args...)
}

func str(s string) object.Object { return object.NewString(s) }

func TestModule(t *testing.T) {
	tests := []struct {
		name string
		args []object.Object
		want string
	}{
		{"contains", []object.Object{str("coroutine"), str("rout")}, "true"},
		{"has_prefix", []object.Object{str("Task-1"), str("Task")}, "true"},
		{"has_suffix", []object.Object{str("Task-1"), str("2")}, "false"},
		{"count", []object.Object{str("cheese"), str("e")}, "3"},
		{"index", []object.Object{str("chicken"), str("ken")}, "4"},
		{"to_upper", []object.Object{str("hello")}, `"HELLO"`},
		{"trim_prefix", []object.Object{str("__awaitless_tmp"), str("__awaitless_")}, `"tmp"`},
		{"repeat", []object.Object{str("ab"), object.NewInt(3)}, `"ababab"`},
		{"split", []object.Object{str("a,b"), str(",")}, `["a", "b"]`},
		{"join", []object.Object{object.NewStringList([]string{"a", "b"}), str("-")}, `"a-b"`},
		{"replace_all", []object.Object{str("aaa"), str("a"), str("b")}, `"bbb"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, tt.name, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Inspect())
		})
	}
}

func TestArgumentErrors(t *testing.T) {
	_, err := call(t, "contains", str("a"))
	assert.EqualError(t, err, "TypeError: strings.contains() takes exactly 2 arguments (1 given)")

	_, err = call(t, "to_upper", object.NewInt(1))
	assert.Error(t, err)

	_, err = call(t, "repeat", str("a"), object.NewInt(-1))
	assert.EqualError(t, err, "ValueError: strings.repeat: negative count")
}
