package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"with filename", SourceLocation{Filename: "<cell 3>", Line: 10, Column: 5}, "<cell 3>:10:5"},
		{"without filename", SourceLocation{Line: 10, Column: 5}, "10:5"},
		{"zero location", SourceLocation{}, "0:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.String())
		})
	}
}

func TestSourceLocation_IsZero(t *testing.T) {
	assert.True(t, SourceLocation{}.IsZero())
	assert.True(t, SourceLocation{Filename: "cell"}.IsZero())
	assert.False(t, SourceLocation{Line: 1}.IsZero())
	assert.False(t, SourceLocation{Column: 1}.IsZero())
}

func TestStackFrame_String(t *testing.T) {
	frame := StackFrame{
		Function: "hello",
		Location: SourceLocation{Filename: "<cell 1>", Line: 2, Column: 5},
	}
	assert.Equal(t, "at hello (<cell 1>:2:5)", frame.String())

	anonymous := StackFrame{Location: SourceLocation{Line: 10, Column: 5}}
	assert.Equal(t, "at 10:5", anonymous.String())
}

func TestFormatStackTrace(t *testing.T) {
	assert.Equal(t, "", FormatStackTrace(nil))

	result := FormatStackTrace([]StackFrame{
		{Function: "inner", Location: SourceLocation{Line: 10, Column: 5}},
		{Function: "<cell>", Location: SourceLocation{Line: 20, Column: 1}},
	})
	assert.Contains(t, result, "Stack trace:")
	assert.Contains(t, result, "at inner (10:5)")
	assert.Contains(t, result, "at <cell> (20:1)")
}

func TestEvalError(t *testing.T) {
	err := EvalErrorf("something bad: %s", "details")
	assert.Equal(t, "something bad: details", err.Error())
	assert.NotNil(t, err.Unwrap())
	assert.True(t, IsFatal(err))
	assert.False(t, IsFatal(fmt.Errorf("plain")))
}

func TestErrorCode_Description(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{E1001, "unexpected token"},
		{E2001, "unsupported statement shape"},
		{E3005, "undefined variable"},
		{E3011, "coroutine reused"},
		{ErrorCode("E9999"), "unknown error"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.Description())
		})
	}
}

func TestErrorCode_Category(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{E1001, "parse"},
		{E2002, "transform"},
		{E3009, "runtime"},
		{ErrorCode("E"), "unknown"},
		{ErrorCode("E4001"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.Category())
		})
	}
	assert.Equal(t, "E3001", E3001.String())
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"hello", "help", "helper", "world"}

	suggestions := SuggestSimilar("helo", candidates)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "hello", suggestions[0].Value)

	assert.Empty(t, SuggestSimilar("xyz", candidates))
	assert.Empty(t, SuggestSimilar("", candidates))
	assert.Empty(t, SuggestSimilar("hello", nil))

	assert.Empty(t, SuggestSimilar("tmp", []string{"__awaitless_tmp", "__tmp"}))
	assert.Equal(t, "__tmp", SuggestSimilar("__tm", []string{"__tmp"})[0].Value)

	many := SuggestSimilar("foo", []string{"foo1", "foo2", "foo3", "foo4", "foo5"})
	assert.LessOrEqual(t, len(many), MaxSuggestions)
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, "", FormatSuggestions(nil))
	assert.Equal(t, "Did you mean 'print'?", FormatSuggestions([]Suggestion{{Value: "print", Distance: 1}}))
	assert.Equal(t, "Did you mean one of: 'print', 'sprintf'?", FormatSuggestions([]Suggestion{
		{Value: "print", Distance: 1},
		{Value: "sprintf", Distance: 2},
	}))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "abd", 1},
		{"abc", "abcd", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, levenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(false)
	result := f.Format(&FormattedError{
		Code:     E3005,
		Kind:     "NameError",
		Message:  "name 'helo' is not defined",
		Filename: "<cell 4>",
		Line:     3,
		Column:   5,
		SourceLines: []SourceLineEntry{
			{Number: 3, Text: "x = helo()", IsMain: true},
		},
		Hint: "Did you mean 'hello'?",
		Note: "names are resolved when the statement runs",
		Stack: []StackFrame{
			{Function: "<cell>", Location: SourceLocation{Line: 3, Column: 5}},
		},
	})
	assert.Contains(t, result, "NameError[E3005]: name 'helo' is not defined")
	assert.Contains(t, result, "--> <cell 4>:3:5")
	assert.Contains(t, result, " 3 | x = helo()")
	assert.Contains(t, result, "   |     ^")
	assert.Contains(t, result, "hint: Did you mean 'hello'?")
	assert.Contains(t, result, "note: names are resolved when the statement runs")
	assert.Contains(t, result, "traceback (most recent call last):")
	assert.Contains(t, result, "at <cell> (3:5)")
}

func TestFormatter_CellTraceback(t *testing.T) {
	result := NewFormatter(false).Format(&FormattedError{
		Kind:     "ValueError",
		Message:  "bad",
		Filename: "<cell 1>",
		Line:     2,
		Column:   5,
		Stack: []StackFrame{
			{Function: "f", Location: SourceLocation{Filename: "<cell 1>", Line: 2, Column: 5, Source: "    throw ValueError(\"bad\")"}},
			{Function: "<cell>", Location: SourceLocation{Filename: "<cell 3>", Line: 1, Column: 1, Source: "f()"}},
		},
	})
	assert.Contains(t, result, "  --> <cell 1>:2:5 (In [1])\n")
	outer := strings.Index(result, "at <cell> (<cell 3>:1:1) In [3]\n         f()\n")
	inner := strings.Index(result, "at f (<cell 1>:2:5) In [1]\n         throw ValueError(\"bad\")\n")
	require.GreaterOrEqual(t, outer, 0, result)
	require.GreaterOrEqual(t, inner, 0, result)
	assert.Less(t, outer, inner)
}

func TestFormatter_TransformNote(t *testing.T) {
	f := NewFormatter(false)
	result := f.Format(&FormattedError{Code: E2002, Kind: "transform error", Message: "await outside async"})
	assert.Contains(t, result, "note: top-level await outside an async cell; the cell was not run")

	result = f.Format(&FormattedError{Code: E2001, Kind: "transform error", Message: "x", Note: "split the statement"})
	assert.Contains(t, result, "note: split the statement; unsupported statement shape; the cell was not run")

	result = f.Format(&FormattedError{Code: E3005, Kind: "NameError", Message: "x"})
	assert.NotContains(t, result, "note:")
}

func TestCellNumber(t *testing.T) {
	n, ok := CellNumber("<cell 12>")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	for _, name := range []string{"", "main.aw", "<cell>", "<cell x>", "<cell 3"} {
		_, ok := CellNumber(name)
		assert.False(t, ok, name)
	}
}

func TestFormatter_NoLocation(t *testing.T) {
	result := NewFormatter(false).Format(&FormattedError{Kind: "error", Message: "something went wrong"})
	assert.Equal(t, "error: something went wrong\n", result)
}

func TestFormatter_MultiCharUnderline(t *testing.T) {
	result := NewFormatter(false).Format(&FormattedError{
		Message:   "undefined identifier",
		Line:      5,
		Column:    9,
		EndColumn: 13,
		SourceLines: []SourceLineEntry{
			{Number: 5, Text: "let y = hello", IsMain: true},
		},
	})
	assert.Contains(t, result, "^^^^^")
}

func TestFormatter_FormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	assert.Equal(t, "", f.FormatMultiple(nil))
	assert.NotContains(t, f.FormatMultiple([]*FormattedError{{Message: "test"}}), "[1/1]")

	result := f.FormatMultiple([]*FormattedError{
		{Kind: "error", Message: "first error"},
		{Kind: "error", Message: "second error"},
	})
	assert.Contains(t, result, "error[1/2]: first error")
	assert.Contains(t, result, "error[2/2]: second error")
	assert.Contains(t, result, "found 2 errors")
}

func TestFormatter_Color(t *testing.T) {
	result := NewFormatter(true).Format(&FormattedError{Kind: "error", Message: "boom", Line: 1, Column: 1})
	assert.Contains(t, result, "\x1b[")
	assert.Contains(t, result, "boom")
}

func TestTransformError(t *testing.T) {
	err := &TransformError{
		Code:       E2001,
		Message:    "compound assignment is not rewritten",
		Filename:   "<cell 2>",
		Line:       1,
		Column:     1,
		SourceLine: "x += fetch()",
	}
	assert.Equal(t, "transform error: compound assignment is not rewritten (<cell 2>:1:1)", err.Error())
	friendly := err.FriendlyErrorMessage()
	assert.Contains(t, friendly, "transform error[E2001]")
	assert.Contains(t, friendly, "x += fetch()")

	var errs TransformErrors
	require.Nil(t, errs.ToError())
	errs.Add(err)
	require.Equal(t, err, errs.ToError())
	errs.Add(&TransformError{Code: E2002, Message: "await outside async cell"})
	require.Equal(t, 2, errs.Count())
	assert.Contains(t, errs.Error(), "(and 1 more errors)")
	assert.Contains(t, errs.FriendlyErrorMessage(), "found 2 errors")
	assert.Len(t, errs.Unwrap(), 2)
}
