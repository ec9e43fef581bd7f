package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprPath
	ExprCall
	ExprBinary
	ExprUnary
	ExprField
	ExprIndex
	ExprTuple
	ExprArray
	ExprStructLit
	ExprIf
	ExprMatch
	ExprBlock
	ExprStorageAccess
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// LitKind enumerates literal forms.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitBool
	LitString
	LitUnit
)

type ExprLitData struct {
	Kind  LitKind
	Int   uint64
	Bool  bool
	Str   source.StringID
	Width uint8 // explicit suffix width (8/16/32/64); 0 when absent
}

// ExprPathData names a value: local, constant, function, or enum variant.
type ExprPathData struct {
	Path []source.StringID
}

type ExprCallData struct {
	Callee   ExprID
	TypeArgs []TypeExprID
	Args     []ExprID
}

type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

// IsComparison reports whether the operator yields bool over matching
// operand types.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case BinEq, BinNe, BinLt, BinLe, BinGt, BinGe:
		return true
	}
	return false
}

// IsLogical reports whether the operator requires bool operands.
func (op BinaryOp) IsLogical() bool {
	return op == BinAnd || op == BinOr
}

type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type UnaryOp uint8

const (
	UnNot UnaryOp = iota
	UnRef
	UnDeref
)

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprFieldData struct {
	Recv ExprID
	Name source.StringID
}

type ExprIndexData struct {
	Recv  ExprID
	Index ExprID
}

type ExprTupleData struct {
	Elems []ExprID
}

type ExprArrayData struct {
	Elems []ExprID
}

type FieldInit struct {
	Name  source.StringID
	Value ExprID
	Span  source.Span
}

type ExprStructLitData struct {
	Path     []source.StringID
	TypeArgs []TypeExprID
	Fields   []FieldInit
}

type ExprIfData struct {
	Cond ExprID
	Then ExprID // block expr
	Else ExprID // block or if expr; NoExprID when absent
}

// Arm is one match arm: a pattern and its body expression.
type Arm struct {
	Pattern PatternID
	Body    ExprID
	Span    source.Span
}

type ExprMatchData struct {
	Scrutinee ExprID
	Arms      []ArmID
}

type ExprBlockData struct {
	Stmts []StmtID
	Tail  ExprID // NoExprID for unit-valued blocks
}

// ExprStorageAccessData reads a contract storage field.
type ExprStorageAccessData struct {
	Field source.StringID
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena     *Arena[Expr]
	Lits      *Arena[ExprLitData]
	Paths     *Arena[ExprPathData]
	Calls     *Arena[ExprCallData]
	Binaries  *Arena[ExprBinaryData]
	Unaries   *Arena[ExprUnaryData]
	Fields    *Arena[ExprFieldData]
	Indices   *Arena[ExprIndexData]
	Tuples    *Arena[ExprTupleData]
	Arrays    *Arena[ExprArrayData]
	Structs   *Arena[ExprStructLitData]
	Ifs       *Arena[ExprIfData]
	Matches   *Arena[ExprMatchData]
	Blocks    *Arena[ExprBlockData]
	Storages  *Arena[ExprStorageAccessData]
	ArmsArena *Arena[Arm]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:     NewArena[Expr](capHint),
		Lits:      NewArena[ExprLitData](capHint),
		Paths:     NewArena[ExprPathData](capHint),
		Calls:     NewArena[ExprCallData](capHint),
		Binaries:  NewArena[ExprBinaryData](capHint),
		Unaries:   NewArena[ExprUnaryData](capHint),
		Fields:    NewArena[ExprFieldData](capHint),
		Indices:   NewArena[ExprIndexData](capHint),
		Tuples:    NewArena[ExprTupleData](capHint),
		Arrays:    NewArena[ExprArrayData](capHint),
		Structs:   NewArena[ExprStructLitData](capHint),
		Ifs:       NewArena[ExprIfData](capHint),
		Matches:   NewArena[ExprMatchData](capHint),
		Blocks:    NewArena[ExprBlockData](capHint),
		Storages:  NewArena[ExprStorageAccessData](capHint),
		ArmsArena: NewArena[Arm](capHint),
	}
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) new(kind ExprKind, sp source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (e *Exprs) NewIntLit(sp source.Span, value uint64, width uint8) ExprID {
	return e.new(ExprLit, sp, e.Lits.Allocate(ExprLitData{Kind: LitInt, Int: value, Width: width}))
}

func (e *Exprs) NewBoolLit(sp source.Span, value bool) ExprID {
	return e.new(ExprLit, sp, e.Lits.Allocate(ExprLitData{Kind: LitBool, Bool: value}))
}

func (e *Exprs) NewStringLit(sp source.Span, value source.StringID) ExprID {
	return e.new(ExprLit, sp, e.Lits.Allocate(ExprLitData{Kind: LitString, Str: value}))
}

func (e *Exprs) NewUnitLit(sp source.Span) ExprID {
	return e.new(ExprLit, sp, e.Lits.Allocate(ExprLitData{Kind: LitUnit}))
}

func (e *Exprs) NewPath(sp source.Span, path ...source.StringID) ExprID {
	return e.new(ExprPath, sp, e.Paths.Allocate(ExprPathData{Path: path}))
}

func (e *Exprs) NewCall(sp source.Span, callee ExprID, typeArgs []TypeExprID, args []ExprID) ExprID {
	return e.new(ExprCall, sp, e.Calls.Allocate(ExprCallData{Callee: callee, TypeArgs: typeArgs, Args: args}))
}

func (e *Exprs) NewBinary(sp source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, sp, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) NewUnary(sp source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, sp, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) NewField(sp source.Span, recv ExprID, name source.StringID) ExprID {
	return e.new(ExprField, sp, e.Fields.Allocate(ExprFieldData{Recv: recv, Name: name}))
}

func (e *Exprs) NewIndex(sp source.Span, recv, index ExprID) ExprID {
	return e.new(ExprIndex, sp, e.Indices.Allocate(ExprIndexData{Recv: recv, Index: index}))
}

func (e *Exprs) NewTuple(sp source.Span, elems []ExprID) ExprID {
	return e.new(ExprTuple, sp, e.Tuples.Allocate(ExprTupleData{Elems: elems}))
}

func (e *Exprs) NewArray(sp source.Span, elems []ExprID) ExprID {
	return e.new(ExprArray, sp, e.Arrays.Allocate(ExprArrayData{Elems: elems}))
}

func (e *Exprs) NewStructLit(sp source.Span, path []source.StringID, typeArgs []TypeExprID, fields []FieldInit) ExprID {
	return e.new(ExprStructLit, sp, e.Structs.Allocate(ExprStructLitData{Path: path, TypeArgs: typeArgs, Fields: fields}))
}

func (e *Exprs) NewIf(sp source.Span, cond, then, els ExprID) ExprID {
	return e.new(ExprIf, sp, e.Ifs.Allocate(ExprIfData{Cond: cond, Then: then, Else: els}))
}

func (e *Exprs) NewArm(sp source.Span, pattern PatternID, body ExprID) ArmID {
	return ArmID(e.ArmsArena.Allocate(Arm{Pattern: pattern, Body: body, Span: sp}))
}

func (e *Exprs) NewMatch(sp source.Span, scrutinee ExprID, arms []ArmID) ExprID {
	return e.new(ExprMatch, sp, e.Matches.Allocate(ExprMatchData{Scrutinee: scrutinee, Arms: arms}))
}

func (e *Exprs) NewBlock(sp source.Span, stmts []StmtID, tail ExprID) ExprID {
	return e.new(ExprBlock, sp, e.Blocks.Allocate(ExprBlockData{Stmts: stmts, Tail: tail}))
}

func (e *Exprs) NewStorageAccess(sp source.Span, field source.StringID) ExprID {
	return e.new(ExprStorageAccess, sp, e.Storages.Allocate(ExprStorageAccessData{Field: field}))
}

func (e *Exprs) LitData(id ExprID) *ExprLitData { return data(e, id, ExprLit, e.Lits) }

func (e *Exprs) PathData(id ExprID) *ExprPathData { return data(e, id, ExprPath, e.Paths) }

func (e *Exprs) CallData(id ExprID) *ExprCallData { return data(e, id, ExprCall, e.Calls) }

func (e *Exprs) BinaryData(id ExprID) *ExprBinaryData { return data(e, id, ExprBinary, e.Binaries) }

func (e *Exprs) UnaryData(id ExprID) *ExprUnaryData { return data(e, id, ExprUnary, e.Unaries) }

func (e *Exprs) FieldData(id ExprID) *ExprFieldData { return data(e, id, ExprField, e.Fields) }

func (e *Exprs) IndexData(id ExprID) *ExprIndexData { return data(e, id, ExprIndex, e.Indices) }

func (e *Exprs) TupleData(id ExprID) *ExprTupleData { return data(e, id, ExprTuple, e.Tuples) }

func (e *Exprs) ArrayData(id ExprID) *ExprArrayData { return data(e, id, ExprArray, e.Arrays) }

func (e *Exprs) StructLitData(id ExprID) *ExprStructLitData {
	return data(e, id, ExprStructLit, e.Structs)
}

func (e *Exprs) IfData(id ExprID) *ExprIfData { return data(e, id, ExprIf, e.Ifs) }

func (e *Exprs) MatchData(id ExprID) *ExprMatchData { return data(e, id, ExprMatch, e.Matches) }

func (e *Exprs) BlockData(id ExprID) *ExprBlockData { return data(e, id, ExprBlock, e.Blocks) }

func (e *Exprs) StorageAccessData(id ExprID) *ExprStorageAccessData {
	return data(e, id, ExprStorageAccess, e.Storages)
}

func (e *Exprs) Arm(id ArmID) *Arm {
	return e.ArmsArena.Get(uint32(id))
}

func data[T any](e *Exprs, id ExprID, kind ExprKind, arena *Arena[T]) *T {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return nil
	}
	return arena.Get(uint32(expr.Payload))
}
