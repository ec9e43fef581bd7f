package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// TypeExprKind enumerates the surface spellings of types.
type TypeExprKind uint8

const (
	TypeExprNamed TypeExprKind = iota // path, possibly with type arguments
	TypeExprTuple
	TypeExprArray
	TypeExprRef
	TypeExprSelf
	TypeExprUnit
)

type TypeExpr struct {
	Kind    TypeExprKind
	Span    source.Span
	Payload PayloadID
}

// TypeExprNamedData is a (possibly qualified) type path with arguments.
type TypeExprNamedData struct {
	Path []source.StringID
	Args []TypeExprID
}

type TypeExprTupleData struct {
	Elems []TypeExprID
}

// TypeExprArrayData is [Elem; Len]; Len must be a constant context.
type TypeExprArrayData struct {
	Elem TypeExprID
	Len  ExprID
}

type TypeExprRefData struct {
	Elem TypeExprID
}

// TypeExprs manages allocation of type expressions.
type TypeExprs struct {
	Arena  *Arena[TypeExpr]
	Named  *Arena[TypeExprNamedData]
	Tuples *Arena[TypeExprTupleData]
	Arrays *Arena[TypeExprArrayData]
	Refs   *Arena[TypeExprRefData]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &TypeExprs{
		Arena:  NewArena[TypeExpr](capHint),
		Named:  NewArena[TypeExprNamedData](capHint),
		Tuples: NewArena[TypeExprTupleData](capHint),
		Arrays: NewArena[TypeExprArrayData](capHint),
		Refs:   NewArena[TypeExprRefData](capHint),
	}
}

func (t *TypeExprs) Get(id TypeExprID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

func (t *TypeExprs) NewNamed(sp source.Span, path []source.StringID, args []TypeExprID) TypeExprID {
	payload := t.Named.Allocate(TypeExprNamedData{Path: path, Args: args})
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprNamed, Span: sp, Payload: PayloadID(payload)}))
}

func (t *TypeExprs) NewTuple(sp source.Span, elems []TypeExprID) TypeExprID {
	payload := t.Tuples.Allocate(TypeExprTupleData{Elems: elems})
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprTuple, Span: sp, Payload: PayloadID(payload)}))
}

func (t *TypeExprs) NewArray(sp source.Span, elem TypeExprID, length ExprID) TypeExprID {
	payload := t.Arrays.Allocate(TypeExprArrayData{Elem: elem, Len: length})
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprArray, Span: sp, Payload: PayloadID(payload)}))
}

func (t *TypeExprs) NewRef(sp source.Span, elem TypeExprID) TypeExprID {
	payload := t.Refs.Allocate(TypeExprRefData{Elem: elem})
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprRef, Span: sp, Payload: PayloadID(payload)}))
}

func (t *TypeExprs) NewSelf(sp source.Span) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprSelf, Span: sp}))
}

func (t *TypeExprs) NewUnit(sp source.Span) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprUnit, Span: sp}))
}

func (t *TypeExprs) NamedData(id TypeExprID) *TypeExprNamedData {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprNamed {
		return nil
	}
	return t.Named.Get(uint32(te.Payload))
}

func (t *TypeExprs) TupleData(id TypeExprID) *TypeExprTupleData {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprTuple {
		return nil
	}
	return t.Tuples.Get(uint32(te.Payload))
}

func (t *TypeExprs) ArrayData(id TypeExprID) *TypeExprArrayData {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprArray {
		return nil
	}
	return t.Arrays.Get(uint32(te.Payload))
}

func (t *TypeExprs) RefData(id TypeExprID) *TypeExprRefData {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprRef {
		return nil
	}
	return t.Refs.Get(uint32(te.Payload))
}
