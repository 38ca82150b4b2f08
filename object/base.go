package object

import "github.com/t0technology/awaitless/op"

type base struct{}

func (b *base) GetAttr(name string) (Object, bool) {
	return nil, false
}

func (b *base) SetAttr(name string, value Object) error {
	return TypeErrorf("object has no attribute %q", name)
}

func (b *base) IsTruthy() bool {
	return true
}

func (b *base) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	return nil, TypeErrorf("unsupported operation %s for %s", opType, right.Type())
}
