package syntax

import "github.com/t0technology/awaitless/ast"

// Transformer modifies an AST before evaluation.
// Transformers receive ownership of the AST and return a (possibly new) AST.
type Transformer interface {
	// Transform processes the AST and returns the result.
	// The returned AST may be the same instance (modified in place)
	// or a completely new AST.
	Transform(program *ast.Program) (*ast.Program, error)
}

// NamedTransformer is a Transformer with a stable identity. A shell keeps at
// most one installed transformer per name.
type NamedTransformer interface {
	Transformer
	Name() string
}

// TransformerFunc is an adapter to use a function as a Transformer.
type TransformerFunc func(*ast.Program) (*ast.Program, error)

// Transform implements the Transformer interface.
func (f TransformerFunc) Transform(p *ast.Program) (*ast.Program, error) {
	return f(p)
}

type named struct {
	Transformer
	name string
}

func (n named) Name() string { return n.name }

// Named gives a transformer an identity.
func Named(name string, t Transformer) NamedTransformer {
	return named{Transformer: t, name: name}
}

// Chain composes transformers left to right. Each one receives the output of
// the previous one and the first error stops the chain.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		for _, t := range transformers {
			var err error
			if p, err = t.Transform(p); err != nil {
				return nil, err
			}
		}
		return p, nil
	})
}
