package shell

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/t0technology/awaitless/object"
)

const (
	promptPrefix       = ">>> "
	continuationPrefix = "... "
	skipDirective      = "doctest: +SKIP"
	ellipsis           = "..."
)

// Example is one cell of a session transcript with its expected output.
type Example struct {
	Source string
	Want   string
	Line   int
	Skip   bool
}

// ParseExamples reads a transcript. Lines starting with ">>> " begin a cell
// and "... " lines continue it, keeping any indentation after the dots; the
// lines that follow, up to a blank line or
// the next prompt, are the expected output. Other text is ignored.
func ParseExamples(text string) []Example {
	var (
		examples []Example
		cur      *Example
		inWant   bool
	)
	flush := func() {
		if cur != nil {
			cur.Want = strings.TrimSpace(cur.Want)
			examples = append(examples, *cur)
			cur = nil
		}
		inWant = false
	}
	for i, raw := range sourceLines(text) {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, promptPrefix) || line == strings.TrimSpace(promptPrefix):
			flush()
			src := strings.TrimPrefix(strings.TrimPrefix(line, promptPrefix), strings.TrimSpace(promptPrefix))
			cur = &Example{Source: src, Line: i + 1}
		case cur != nil && !inWant && (strings.HasPrefix(line, continuationPrefix) || line == ellipsis):
			cur.Source += "\n" + strings.TrimPrefix(strings.TrimPrefix(line, continuationPrefix), ellipsis)
		case cur != nil && line == "":
			flush()
		case cur != nil:
			inWant = true
			cur.Want += line + "\n"
		}
	}
	flush()
	for i := range examples {
		if idx := strings.Index(examples[i].Source, "//"); idx >= 0 && strings.Contains(examples[i].Source[idx:], skipDirective) {
			examples[i].Skip = true
			examples[i].Source = strings.TrimSpace(examples[i].Source[:idx])
		}
	}
	return examples
}

// Failure is an example whose output did not match.
type Failure struct {
	Example Example
	Got     string
}

func (f Failure) Error() string {
	return fmt.Sprintf("line %d: %s\nexpected:\n%s\ngot:\n%s", f.Example.Line, f.Example.Source, f.Example.Want, f.Got)
}

// RunTranscript runs every example of text in a fresh shell and returns the
// examples whose output did not match. Output matches when it equals the
// expected text, where "..." in the expected text matches any run of
// characters. A cell that raises produces its error message as output.
func RunTranscript(ctx context.Context, text string, options ...Option) ([]Failure, error) {
	var out bytes.Buffer
	sh := New(append(options, WithOutput(&out))...)
	var failures []Failure
	for _, ex := range ParseExamples(text) {
		if ex.Skip {
			continue
		}
		out.Reset()
		result := sh.RunCell(ctx, ex.Source)
		got := render(&out, result)
		if !MatchOutput(ex.Want, got) {
			failures = append(failures, Failure{Example: ex, Got: got})
		}
	}
	return failures, sh.Close()
}

func render(out *bytes.Buffer, result *ExecutionResult) string {
	var b strings.Builder
	b.WriteString(out.String())
	if err := result.Err(); err != nil {
		b.WriteString(err.Error())
	} else if result.Value != nil && result.Value != object.Nil {
		b.WriteString(result.Value.Inspect())
	}
	return strings.TrimSpace(b.String())
}

// MatchOutput compares output to an expected transcript block, where "..."
// in want matches any text.
func MatchOutput(want, got string) bool {
	want, got = strings.TrimSpace(want), strings.TrimSpace(got)
	if !strings.Contains(want, ellipsis) {
		return want == got
	}
	parts := strings.Split(want, ellipsis)
	if !strings.HasPrefix(got, parts[0]) {
		return false
	}
	got = got[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(got, part)
		if idx < 0 {
			return false
		}
		got = got[idx+len(part):]
	}
	return strings.HasSuffix(got, last)
}
