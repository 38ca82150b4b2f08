package errors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// FormattedError is an error broken into the parts the Formatter renders.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "parse error", "transform error", "ValueError", ...
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
	Stack       []StackFrame // innermost first
}

// SourceLineEntry is one numbered line of source shown under an error.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool
}

type role int

const (
	roleLabel role = iota
	roleCode
	roleMessage
	roleGutter
	roleLocation
	roleSource
	roleCaret
	roleHint
	roleNote
	roleCell
)

var palette = map[role]*color.Color{
	roleLabel:    color.New(color.FgHiRed, color.Bold),
	roleCode:     color.New(color.FgHiBlack),
	roleMessage:  color.New(color.FgRed),
	roleGutter:   color.New(color.FgHiBlack),
	roleLocation: color.New(color.FgCyan),
	roleSource:   color.New(color.FgWhite),
	roleCaret:    color.New(color.FgHiRed),
	roleHint:     color.New(color.FgHiYellow),
	roleNote:     color.New(color.FgHiBlue),
	roleCell:     color.New(color.FgGreen),
}

func init() {
	// Whether to color is the Formatter's decision, not the terminal's.
	for _, c := range palette {
		c.EnableColor()
	}
}

// Formatter renders errors for a terminal. Each error gets a header, an
// arrow to its location, the source line with a caret underline, any hint
// or note, and the traceback with the most recent call last.
type Formatter struct {
	UseColor bool
}

// NewFormatter returns a Formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

func (f *Formatter) paint(r role, s string) string {
	if !f.UseColor || s == "" {
		return s
	}
	return palette[r].Sprint(s)
}

// Format renders a single error.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix renders err with prefix, such as "2/3", in the header
// brackets when the error has no code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	w := &writer{f: f, gutter: gutterWidth(err)}
	w.header(err, prefix)
	w.location(err)
	w.source(err)
	if err.Hint != "" {
		w.blank()
		w.annotation(roleHint, "hint", err.Hint)
	}
	if note := noteFor(err); note != "" {
		w.annotation(roleNote, "note", note)
	}
	if len(err.Stack) > 0 {
		w.blank()
		w.traceback(err.Stack)
	}
	return w.String()
}

// FormatMultiple renders errs in order, numbering them when there is more
// than one.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return f.Format(errs[0])
	}
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, len(errs)))
	}
	return strings.Join(parts, "\n") + "\n" + f.paint(roleLabel, fmt.Sprintf("found %d errors", len(errs))) + "\n"
}

// noteFor returns the note shown under err. Transform errors always say
// that the cell never ran, since nothing in the output would show it.
func noteFor(err *FormattedError) string {
	if err.Code.Category() != "transform" {
		return err.Note
	}
	note := err.Code.Description() + "; the cell was not run"
	if err.Note != "" {
		note = err.Note + "; " + note
	}
	return note
}

// CellNumber extracts N from a "<cell N>" filename.
func CellNumber(filename string) (int, bool) {
	inner, ok := strings.CutPrefix(filename, "<cell ")
	if !ok {
		return 0, false
	}
	inner, ok = strings.CutSuffix(inner, ">")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(inner)
	return n, err == nil
}

func gutterWidth(err *FormattedError) int {
	widest := err.Line
	for _, line := range err.SourceLines {
		widest = max(widest, line.Number)
	}
	return max(2, len(strconv.Itoa(widest)))
}

type writer struct {
	strings.Builder
	f      *Formatter
	gutter int
}

func (w *writer) put(r role, s string) {
	w.WriteString(w.f.paint(r, s))
}

// margin writes the empty gutter followed by sep.
func (w *writer) margin(sep string) {
	w.put(roleGutter, strings.Repeat(" ", w.gutter)+sep)
}

func (w *writer) blank() {
	w.margin(" |\n")
}

func (w *writer) header(err *FormattedError, prefix string) {
	label := err.Kind
	if label == "" {
		label = "error"
	}
	w.put(roleLabel, label)
	switch {
	case err.Code != "":
		w.put(roleCode, "["+string(err.Code)+"]")
	case prefix != "":
		w.put(roleCode, "["+prefix+"]")
	}
	w.put(roleMessage, ": ")
	w.WriteString(err.Message)
	w.WriteByte('\n')
}

func (w *writer) location(err *FormattedError) {
	if err.Line == 0 && err.Filename == "" {
		return
	}
	loc := err.Filename
	if err.Line > 0 {
		pos := fmt.Sprintf("%d:%d", err.Line, err.Column)
		if loc == "" {
			loc = pos
		} else {
			loc += ":" + pos
		}
	}
	w.margin("")
	w.put(roleLocation, "-->")
	w.WriteByte(' ')
	w.put(roleLocation, loc)
	if n, ok := CellNumber(err.Filename); ok {
		w.WriteByte(' ')
		w.put(roleCell, fmt.Sprintf("(In [%d])", n))
	}
	w.WriteByte('\n')
}

func (w *writer) source(err *FormattedError) {
	if len(err.SourceLines) == 0 {
		return
	}
	w.blank()
	for _, line := range err.SourceLines {
		w.put(roleGutter, fmt.Sprintf("%*d | ", w.gutter, line.Number))
		w.put(roleSource, line.Text)
		w.WriteByte('\n')
		if !line.IsMain || err.Column < 1 {
			continue
		}
		width := 1
		if err.EndColumn > err.Column {
			width = err.EndColumn - err.Column + 1
		}
		w.margin(" | ")
		w.WriteString(strings.Repeat(" ", err.Column-1))
		w.put(roleCaret, strings.Repeat("^", width))
		w.WriteByte('\n')
	}
}

func (w *writer) annotation(r role, name, text string) {
	w.margin(" = ")
	w.put(r, name+": ")
	w.WriteString(text)
	w.WriteByte('\n')
}

// traceback writes frames outermost first. Each frame names where it ran
// and, when known, the source line it was on.
func (w *writer) traceback(stack []StackFrame) {
	w.margin(" = ")
	w.put(roleNote, "traceback (most recent call last):\n")
	for i := len(stack) - 1; i >= 0; i-- {
		frame := stack[i]
		w.margin("     ")
		w.WriteString(frame.String())
		if n, ok := CellNumber(frame.Location.Filename); ok {
			w.WriteByte(' ')
			w.put(roleCell, fmt.Sprintf("In [%d]", n))
		}
		w.WriteByte('\n')
		if src := strings.TrimSpace(frame.Location.Source); src != "" {
			w.margin("       ")
			w.put(roleSource, src)
			w.WriteByte('\n')
		}
	}
}
