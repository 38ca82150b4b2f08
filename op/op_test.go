package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryOpRoundTrip(t *testing.T) {
	for _, literal := range []string{"+", "-", "*", "/", "%", "&&", "||"} {
		bop, ok := LookupBinary(literal)
		require.True(t, ok, literal)
		assert.Equal(t, literal, bop.String())
	}
	_, ok := LookupBinary("**")
	assert.False(t, ok)
	assert.Equal(t, "", BinaryOpType(99).String())
}

func TestCompareOpRoundTrip(t *testing.T) {
	for _, literal := range []string{"<", "<=", "==", "!=", ">", ">="} {
		cop, ok := LookupCompare(literal)
		require.True(t, ok, literal)
		assert.Equal(t, literal, cop.String())
	}
	_, ok := LookupCompare("+")
	assert.False(t, ok)
}

func TestLookupAssign(t *testing.T) {
	tests := []struct {
		literal string
		want    BinaryOpType
		ok      bool
	}{
		{"+=", Add, true},
		{"-=", Subtract, true},
		{"*=", Multiply, true},
		{"/=", Divide, true},
		{"=", 0, false},
		{"==", 0, false},
		{"%=", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got, ok := LookupAssign(tt.literal)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
