package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtExpr
	StmtReturn
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtLetData struct {
	Name  source.StringID
	Type  TypeExprID // NoTypeExprID when inferred
	Value ExprID
}

type StmtExprData struct {
	Expr ExprID
}

type StmtReturnData struct {
	Value ExprID // NoExprID for bare return
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Lets    *Arena[StmtLetData]
	Exprs   *Arena[StmtExprData]
	Returns *Arena[StmtReturnData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Lets:    NewArena[StmtLetData](capHint),
		Exprs:   NewArena[StmtExprData](capHint),
		Returns: NewArena[StmtReturnData](capHint),
	}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewLet(sp source.Span, name source.StringID, typ TypeExprID, value ExprID) StmtID {
	payload := s.Lets.Allocate(StmtLetData{Name: name, Type: typ, Value: value})
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtLet, Span: sp, Payload: PayloadID(payload)}))
}

func (s *Stmts) NewExpr(sp source.Span, expr ExprID) StmtID {
	payload := s.Exprs.Allocate(StmtExprData{Expr: expr})
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtExpr, Span: sp, Payload: PayloadID(payload)}))
}

func (s *Stmts) NewReturn(sp source.Span, value ExprID) StmtID {
	payload := s.Returns.Allocate(StmtReturnData{Value: value})
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtReturn, Span: sp, Payload: PayloadID(payload)}))
}

func (s *Stmts) LetData(id StmtID) *StmtLetData {
	st := s.Get(id)
	if st == nil || st.Kind != StmtLet {
		return nil
	}
	return s.Lets.Get(uint32(st.Payload))
}

func (s *Stmts) ExprData(id StmtID) *StmtExprData {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil
	}
	return s.Exprs.Get(uint32(st.Payload))
}

func (s *Stmts) ReturnData(id StmtID) *StmtReturnData {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil
	}
	return s.Returns.Get(uint32(st.Payload))
}
