package main

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t0technology/awaitless/shell"
)

const stdinFilename = "<stdin>"

func runHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()

	if shouldRunRepl(cmd, args) {
		sh, err := cfg.newShell()
		if err != nil {
			return err
		}
		defer sh.Close()
		timing, _ := flags.GetBool("timing")
		return runRepl(contextOf(cmd), sh, replOptions{timing: timing})
	}

	filename, code, err := getCode(cmd, args)
	if err != nil {
		return err
	}
	sh, err := cfg.newShell()
	if err != nil {
		return err
	}
	defer sh.Close()

	result := sh.RunFile(contextOf(cmd), filename, code)
	if err := result.Err(); err != nil {
		return formatError(sh, err)
	}

	format, _ := flags.GetString("output")
	output, err := getOutput(result.Value, format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if output != "" {
		fmt.Fprintln(out, output)
	}
	if timing, _ := flags.GetBool("timing"); timing {
		fmt.Fprintf(out, "%v\n", result.Duration)
	}
	return nil
}

func versionHandler(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()
	if strings.ToLower(format) == "json" {
		info, err := json.MarshalIndent(map[string]any{
			"version": version,
			"commit":  commit,
			"date":    date,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(info))
	} else {
		fmt.Fprintln(out, version)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE:  versionHandler,
	}
	cmd.Flags().StringP("output", "o", "", "output format: json or text")
	return cmd
}

func shouldRunRepl(cmd *cobra.Command, args []string) bool {
	flags := cmd.Flags()
	if noRepl, _ := flags.GetBool("no-repl"); noRepl {
		return false
	}
	if stdin, _ := flags.GetBool("stdin"); stdin {
		return false
	}
	if flags.Changed("code") || len(args) > 0 {
		return false
	}
	return isTerminalIO()
}

// getCode returns the filename to report and the code to run.
func getCode(cmd *cobra.Command, args []string) (string, string, error) {
	flags := cmd.Flags()
	codeSet := flags.Changed("code")
	stdinSet, _ := flags.GetBool("stdin")
	fileProvided := len(args) > 0

	count := 0
	for _, set := range []bool{codeSet, stdinSet, fileProvided} {
		if set {
			count++
		}
	}
	switch {
	case count > 1:
		return "", "", goerrors.New("multiple input sources specified")
	case count == 0:
		return "", "", goerrors.New("no input provided")
	}

	if stdinSet {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return stdinFilename, string(data), nil
	}
	if fileProvided {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return args[0], string(data), nil
	}
	code, _ := flags.GetString("code")
	return "<code>", code, nil
}

// formatError renders err with the source lines the shell recorded.
func formatError(sh *shell.Shell, err error) error {
	text, ferr := sh.FormatError(err)
	if ferr != nil {
		return err
	}
	return goerrors.New(strings.TrimRight(text, "\n"))
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
