package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"

	"github.com/t0technology/awaitless/object"
)

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

func getOutput(result object.Object, format string) (string, error) {
	switch strings.ToLower(format) {
	case "":
		// Print nothing for nil, JSON when the value has a Go form, and the
		// inspected value otherwise.
		if result == nil || result == object.Nil {
			return "", nil
		}
		value, ok := toGoValue(result)
		if !ok {
			return result.Inspect(), nil
		}
		output, err := getOutputJSON(value)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		value, ok := toGoValue(result)
		if !ok {
			return "", fmt.Errorf("cannot encode %s as json", result.Inspect())
		}
		output, err := getOutputJSON(value)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		if result == nil {
			return "", nil
		}
		return result.Inspect(), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

// toGoValue converts a value to plain Go data. Tasks, coroutines and other
// values with no Go form report false.
func toGoValue(obj object.Object) (any, bool) {
	if obj == nil || obj == object.Nil {
		return nil, true
	}
	switch obj.(type) {
	case *object.Int, *object.Float, *object.String, *object.Bool, *object.List, *object.Map:
		return obj.Interface(), true
	}
	return nil, false
}

func getOutputJSON(value any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(value, "", "  ")
	}
	return prettyjson.Marshal(value)
}
