package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/t0technology/awaitless"
	"github.com/t0technology/awaitless/builtins"
	"github.com/t0technology/awaitless/object"
	"github.com/t0technology/awaitless/parser"
	"github.com/t0technology/awaitless/rewrite"
	"github.com/t0technology/awaitless/shell"
)

const banner = `awaitless %s
Top-level coroutines run as tasks. Type :help for commands.
`

const helpText = `Commands:
  :help              show this help
  :quit              exit (also :q, :exit, Ctrl-D)
  :history [n]       show the last n recorded cells (default 10)
  :load              load the awaitless extension
  :unload            unload the awaitless extension
  :transformers      list installed transformers
  :timing            toggle execution timing
  :env               list global names

Magics:
  %load_ext NAME     load an extension
  %unload_ext NAME   unload an extension
  %reload_ext NAME   reload an extension
`

var (
	outColor    = color.New(color.FgRed).SprintFunc()
	dimColor    = color.New(color.Faint).SprintFunc()
)

type replOptions struct {
	timing bool
}

// repl handles one submitted cell or command at a time.
type repl struct {
	sh     *shell.Shell
	out    io.Writer
	errOut io.Writer
	timing bool
}

func runRepl(ctx context.Context, sh *shell.Shell, opts replOptions) error {
	fmt.Printf(banner, version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	histPath := replHistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	r := &repl{sh: sh, out: os.Stdout, errOut: os.Stderr, timing: opts.timing}
	ln.SetCompleter(r.complete)
	for {
		n := sh.ExecutionCount() + 1
		code, ok := readByParseProbe(ln, inPrompt(n), contPrompt(n))
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if quit := r.handle(ctx, code); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func inPrompt(n int) string {
	return fmt.Sprintf("In [%d]: ", n)
}

func contPrompt(n int) string {
	return strings.Repeat(" ", len(strconv.Itoa(n))+4) + "...: "
}

// readByParseProbe reads lines until the accumulated input parses or fails
// for a reason other than running out of input.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !needsMore(src) {
			return src, true
		}
	}
}

// needsMore reports whether src is an unfinished cell.
func needsMore(src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" || strings.HasPrefix(trimmed, ":") || strings.HasPrefix(trimmed, "%") {
		return false
	}
	_, err := parser.Parse(context.Background(), src)
	return err != nil && parser.IsIncomplete(err)
}

// handle runs a command or cell and reports whether the REPL should exit.
func (r *repl) handle(ctx context.Context, code string) bool {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, ":") {
		return r.command(ctx, trimmed)
	}
	result := r.sh.RunCell(ctx, code)
	if err := result.Err(); err != nil {
		text, ferr := r.sh.FormatError(err)
		if ferr != nil {
			text = err.Error()
		}
		fmt.Fprintln(r.errOut, strings.TrimRight(text, "\n"))
	} else if result.Value != nil && result.Value != object.Nil {
		fmt.Fprintf(r.out, "%s%s\n", outColor(fmt.Sprintf("Out[%d]: ", result.ExecutionCount)), result.Value.Inspect())
	}
	if r.timing {
		fmt.Fprintln(r.out, dimColor(result.Duration.String()))
	}
	return false
}

func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprint(r.out, helpText)
	case ":timing":
		r.timing = !r.timing
		state := "off"
		if r.timing {
			state = "on"
		}
		fmt.Fprintf(r.out, "timing %s\n", state)
	case ":load":
		r.report(awaitless.Load(r.sh), "awaitless loaded")
	case ":unload":
		r.report(awaitless.Unload(r.sh), "awaitless unloaded")
	case ":transformers":
		for _, t := range r.sh.Transformers() {
			fmt.Fprintln(r.out, t.Name())
		}
	case ":env":
		builtin := builtins.Builtins()
		for _, name := range r.sh.Interpreter().Globals().Names() {
			if _, ok := builtin[name]; ok || strings.HasPrefix(name, rewrite.Prefix) {
				continue
			}
			value, _ := r.sh.Interpreter().Globals().Get(name)
			fmt.Fprintf(r.out, "%s = %s\n", name, value.Inspect())
		}
	case ":history":
		n := 10
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 1 {
				fmt.Fprintln(r.errOut, red("usage: :history [n]"))
				return false
			}
			n = v
		}
		store := r.sh.History()
		if store == nil {
			fmt.Fprintln(r.errOut, red("history is disabled"))
			return false
		}
		cells, err := store.Recent(ctx, n)
		if err != nil {
			fmt.Fprintln(r.errOut, red(err.Error()))
			return false
		}
		printCells(r.out, cells)
	default:
		fmt.Fprintf(r.errOut, "%s\n", red(fmt.Sprintf("unknown command %s. Type :help for commands.", fields[0])))
	}
	return false
}

var replCommands = []string{":help", ":quit", ":history", ":load", ":unload", ":transformers", ":timing", ":env",
	"%load_ext", "%unload_ext", "%reload_ext"}

// complete offers names for the word at the end of line: commands, global
// and builtin names, or the attributes of a global followed by a dot.
// Names reserved for rewritten code are never offered.
func (r *repl) complete(line string) []string {
	start := strings.LastIndexFunc(line, func(c rune) bool {
		return !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.' || c == ':' || c == '%')
	})
	if start < 0 {
		start = 0
	} else {
		_, size := utf8.DecodeRuneInString(line[start:])
		start += size
	}
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	var candidates []string
	prefix := ""
	switch {
	case strings.HasPrefix(word, ":") || strings.HasPrefix(word, "%"):
		candidates = replCommands
	case strings.Contains(word, "."):
		dot := strings.LastIndex(word, ".")
		value, ok := r.sh.Interpreter().Globals().Get(word[:dot])
		if !ok {
			return nil
		}
		if v, ok := value.(object.Introspectable); ok {
			candidates = object.AttrNames(v.Attrs())
		}
		prefix, word = word[:dot+1], word[dot+1:]
	default:
		candidates = r.sh.Interpreter().Globals().Names()
	}

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) && !strings.HasPrefix(c, rewrite.Prefix) {
			out = append(out, head+prefix+c)
		}
	}
	sort.Strings(out)
	return out
}

func (r *repl) report(err error, ok string) {
	if err != nil {
		fmt.Fprintln(r.errOut, red(err.Error()))
		return
	}
	fmt.Fprintln(r.out, ok)
}
