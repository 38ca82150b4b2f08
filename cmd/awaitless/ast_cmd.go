package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/parser"
	"github.com/t0technology/awaitless/rewrite"
)

func newAstCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the syntax tree of a program",
		Long: `Print the syntax tree of a program. With --rewrite the tree is shown
after the awaitless rewrite, as it would run in the shell.`,
		Args: cobra.MaximumNArgs(1),
		RunE: astHandler,
	}
	f := cmd.Flags()
	f.StringP("code", "c", "", "code to parse")
	f.Bool("stdin", false, "read code from stdin")
	f.Bool("rewrite", false, "show the tree after rewriting")
	f.StringP("output", "o", "text", "output format: text, source or json")
	return cmd
}

func astHandler(cmd *cobra.Command, args []string) error {
	filename, code, err := getCode(cmd, args)
	if err != nil {
		return err
	}
	program, err := parser.Parse(contextOf(cmd), code, parser.WithFilename(filename))
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if rw, _ := flags.GetBool("rewrite"); rw {
		var options []rewrite.Option
		if strict, _ := flags.GetBool("strict"); strict {
			options = append(options, rewrite.WithStrictShapes())
		}
		if program, err = rewrite.New(options...).Transform(program); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	format, _ := flags.GetString("output")
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(nodeToJSON(program))
	case "source":
		fmt.Fprintln(out, program.String())
		return nil
	case "", "text":
		printAST(out, nodeToJSON(program), 0)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// ASTNode is a node of the printed tree.
type ASTNode struct {
	Type     string     `json:"type"`
	Value    any        `json:"value,omitempty"`
	Line     int        `json:"line,omitempty"`
	Children []*ASTNode `json:"children,omitempty"`
}

func nodeToJSON(node ast.Node) *ASTNode {
	result := &ASTNode{
		Type:  reflect.TypeOf(node).Elem().Name(),
		Value: nodeValue(node),
	}
	if _, ok := node.(*ast.Program); !ok {
		result.Line = node.Pos().LineNumber()
	}
	ast.Inspect(node, func(child ast.Node) bool {
		if child == node {
			return true
		}
		result.Children = append(result.Children, nodeToJSON(child))
		return false
	})
	return result
}

func nodeValue(node ast.Node) any {
	switch n := node.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.Int:
		return n.Value
	case *ast.Float:
		return n.Value
	case *ast.Bool:
		return n.Value
	case *ast.String:
		return n.Value
	case *ast.Infix:
		return n.Op
	case *ast.Prefix:
		return n.Op
	case *ast.Assign:
		return n.Op
	case *ast.SetAttr:
		return n.Op
	}
	return nil
}

func printAST(w io.Writer, node *ASTNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if node.Value != nil {
		fmt.Fprintf(w, "%s%s %v\n", indent, node.Type, node.Value)
	} else {
		fmt.Fprintf(w, "%s%s\n", indent, node.Type)
	}
	for _, child := range node.Children {
		printAST(w, child, depth+1)
	}
}
