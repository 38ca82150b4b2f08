package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t0technology/awaitless/object"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate code as a single cell and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  evalHandler,
	}
	f := cmd.Flags()
	f.StringP("code", "c", "", "code to evaluate")
	f.Bool("stdin", false, "read code from stdin")
	f.StringP("output", "o", "text", "output format: text or json")
	f.BoolP("quiet", "q", false, "print nothing on success")
	return cmd
}

func evalHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	code, err := getEvalCode(cmd, args)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	format, _ := flags.GetString("output")
	quiet, _ := flags.GetBool("quiet")
	out := cmd.OutOrStdout()

	sh, err := cfg.newShell()
	if err != nil {
		return err
	}
	defer sh.Close()

	result := sh.RunCell(contextOf(cmd), code)
	if err := result.Err(); err != nil {
		if format == "json" {
			return encodeJSON(out, map[string]any{"error": err.Error()})
		}
		return formatError(sh, err)
	}
	if quiet {
		return nil
	}
	if result.Value == nil {
		result.Value = object.Nil
	}
	if format == "json" {
		value, ok := toGoValue(result.Value)
		if !ok {
			value = result.Value.Inspect()
		}
		return encodeJSON(out, map[string]any{
			"value": value,
			"type":  string(result.Value.Type()),
		})
	}
	fmt.Fprintln(out, result.Value.Inspect())
	return nil
}

// getEvalCode takes the code from a positional argument, -c or --stdin.
func getEvalCode(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		if cmd.Flags().Changed("code") {
			return "", fmt.Errorf("multiple input sources specified")
		}
		if stdin, _ := cmd.Flags().GetBool("stdin"); stdin {
			return "", fmt.Errorf("multiple input sources specified")
		}
		return args[0], nil
	}
	_, code, err := getCode(cmd, nil)
	return strings.TrimSpace(code), err
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
