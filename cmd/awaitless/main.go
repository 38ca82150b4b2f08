package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "awaitless [file]",
		Short:         "Interactive shell where top-level coroutines run as tasks",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHandler,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default ~/.awaitless/config.toml)")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.Bool("autoawait", true, "run cells with top-level await in the event loop")
	pf.Bool("awaitless", true, "load the awaitless extension at startup")
	pf.Bool("strict", false, "reject statements the rewriter cannot expand")
	pf.String("history", "", "history database (default ~/.awaitless/history.sqlite)")
	pf.Bool("no-history", false, "do not record cells")
	pf.Bool("traceback-fallback", true, "show a placeholder for missing source lines in tracebacks")

	f := cmd.Flags()
	f.StringP("code", "c", "", "code to run")
	f.Bool("stdin", false, "read code from stdin")
	f.Bool("timing", false, "show execution time")
	f.StringP("output", "o", "", "output format: json or text")
	f.Bool("no-repl", false, "disable the REPL")

	cmd.AddCommand(
		newEvalCmd(),
		newAstCmd(),
		newDoctestCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)
	return cmd
}

func fatal(msg any) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}
