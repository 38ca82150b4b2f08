package ast

import (
	"bytes"
	"strings"

	"github.com/t0technology/awaitless/internal/token"
)

// Var is a statement that declares a new variable with an initial value.
// This is used for "let x = value" statements.
type Var struct {
	Let   token.Position // position of "let" keyword
	Name  *Ident         // variable name
	Value Expr           // initial value
}

func (s *Var) stmtNode() {}

func (s *Var) Pos() token.Position { return s.Let }
func (s *Var) End() token.Position { return s.Value.End() }

func (s *Var) String() string {
	return "let " + s.Name.String() + " = " + s.Value.String()
}

// MultiVar is a statement that declares multiple variables at once.
// This is used for "let x, y = [1, 2]" statements where the right-hand side
// is unpacked into multiple variables.
type MultiVar struct {
	Let   token.Position // position of "let" keyword
	Names []*Ident       // names being declared
	Value Expr           // value to unpack
}

func (s *MultiVar) stmtNode() {}

func (s *MultiVar) Pos() token.Position { return s.Let }
func (s *MultiVar) End() token.Position { return s.Value.End() }

func (s *MultiVar) String() string {
	names := make([]string, 0, len(s.Names))
	for _, n := range s.Names {
		names = append(names, n.Name)
	}
	return "let " + strings.Join(names, ", ") + " = " + s.Value.String()
}

// Const is a statement that defines a named constant.
type Const struct {
	Const token.Position // position of "const" keyword
	Name  *Ident         // constant name
	Value Expr           // constant value
}

func (s *Const) stmtNode() {}

func (s *Const) Pos() token.Position { return s.Const }
func (s *Const) End() token.Position { return s.Value.End() }

func (s *Const) String() string {
	return "const " + s.Name.String() + " = " + s.Value.String()
}

// Assign is a statement that assigns a value to an existing variable or to
// an indexed element. Exactly one of Name or Index is set.
type Assign struct {
	Name  *Ident         // variable name; nil for index assignment
	Index *Index         // index expression; nil for name assignment
	OpPos token.Position // position of the operator
	Op    string         // "=", "+=", "-=", "*=", "/="
	Value Expr           // assigned value
}

func (s *Assign) stmtNode() {}

func (s *Assign) Pos() token.Position {
	if s.Name != nil {
		return s.Name.Pos()
	}
	return s.Index.Pos()
}

func (s *Assign) End() token.Position { return s.Value.End() }

// Target returns the assignment target expression.
func (s *Assign) Target() Expr {
	if s.Name != nil {
		return s.Name
	}
	return s.Index
}

func (s *Assign) String() string {
	return s.Target().String() + " " + s.Op + " " + s.Value.String()
}

// SetAttr is a statement that sets an attribute on an object.
type SetAttr struct {
	X      Expr           // object expression
	Period token.Position // position of "."
	Attr   *Ident         // attribute name
	OpPos  token.Position // position of the operator
	Op     string         // "=", "+=", "-=", "*=", "/="
	Value  Expr           // assigned value
}

func (s *SetAttr) stmtNode() {}

func (s *SetAttr) Pos() token.Position { return s.X.Pos() }
func (s *SetAttr) End() token.Position { return s.Value.End() }

func (s *SetAttr) String() string {
	return s.X.String() + "." + s.Attr.Name + " " + s.Op + " " + s.Value.String()
}

// Return is a statement that returns a value from a function.
type Return struct {
	Return token.Position // position of "return" keyword
	Value  Expr           // returned value; nil for bare return
}

func (s *Return) stmtNode() {}

func (s *Return) Pos() token.Position { return s.Return }
func (s *Return) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.Return.Advance(6) // len("return")
}

func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// Throw is a statement that raises an error.
type Throw struct {
	Throw token.Position // position of "throw" keyword
	Value Expr           // thrown value
}

func (s *Throw) stmtNode() {}

func (s *Throw) Pos() token.Position { return s.Throw }
func (s *Throw) End() token.Position { return s.Value.End() }

func (s *Throw) String() string { return "throw " + s.Value.String() }

// Import is a statement that binds a module into the current scope,
// optionally under an alias.
type Import struct {
	Import token.Position // position of "import" keyword
	Name   *Ident         // module name
	Alias  *Ident         // local name; nil to use Name
}

func (s *Import) stmtNode() {}

func (s *Import) Pos() token.Position { return s.Import }
func (s *Import) End() token.Position {
	if s.Alias != nil {
		return s.Alias.End()
	}
	return s.Name.End()
}

// LocalName returns the name the module is bound to.
func (s *Import) LocalName() string {
	if s.Alias != nil {
		return s.Alias.Name
	}
	return s.Name.Name
}

func (s *Import) String() string {
	if s.Alias != nil {
		return "import " + s.Name.Name + " as " + s.Alias.Name
	}
	return "import " + s.Name.Name
}

// Block is a sequence of statements enclosed in braces.
type Block struct {
	Lbrace token.Position // position of "{"
	Stmts  []Node         // statements in the block
	Rbrace token.Position // position of "}"
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }
func (s *Block) End() token.Position { return s.Rbrace.Advance(1) }

func (s *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, stmt := range s.Stmts {
		if i > 0 {
			out.WriteString(";")
		}
		out.WriteString(" ")
		out.WriteString(stmt.String())
	}
	out.WriteString(" }")
	return out.String()
}

// Try is a statement with a protected body and optional catch and finally
// blocks.
type Try struct {
	Try          token.Position // position of "try" keyword
	Body         *Block         // protected block
	CatchIdent   *Ident         // catch variable; nil for "catch { }"
	CatchBlock   *Block         // nil if no catch
	FinallyBlock *Block         // nil if no finally
}

func (s *Try) stmtNode() {}

func (s *Try) Pos() token.Position { return s.Try }
func (s *Try) End() token.Position {
	if s.FinallyBlock != nil {
		return s.FinallyBlock.End()
	}
	if s.CatchBlock != nil {
		return s.CatchBlock.End()
	}
	return s.Body.End()
}

func (s *Try) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(s.Body.String())
	if s.CatchBlock != nil {
		out.WriteString(" catch ")
		if s.CatchIdent != nil {
			out.WriteString(s.CatchIdent.Name)
			out.WriteString(" ")
		}
		out.WriteString(s.CatchBlock.String())
	}
	if s.FinallyBlock != nil {
		out.WriteString(" finally ")
		out.WriteString(s.FinallyBlock.String())
	}
	return out.String()
}
