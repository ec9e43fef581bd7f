package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// PatternKind has exactly two variants: a catch-all that matches anything
// and binds nothing, and an expression pattern that must unify with the
// scrutinee's type.
type PatternKind uint8

const (
	PatternWildcard PatternKind = iota
	PatternExpr
)

type Pattern struct {
	Kind PatternKind
	Span source.Span
	Expr ExprID // valid only for PatternExpr
}

type Patterns struct {
	Arena *Arena[Pattern]
}

func NewPatterns(capHint uint) *Patterns {
	return &Patterns{
		Arena: NewArena[Pattern](capHint),
	}
}

func (p *Patterns) NewWildcard(sp source.Span) PatternID {
	return PatternID(p.Arena.Allocate(Pattern{Kind: PatternWildcard, Span: sp}))
}

func (p *Patterns) NewExpr(sp source.Span, expr ExprID) PatternID {
	return PatternID(p.Arena.Allocate(Pattern{Kind: PatternExpr, Span: sp, Expr: expr}))
}

func (p *Patterns) Get(id PatternID) *Pattern {
	return p.Arena.Get(uint32(id))
}
