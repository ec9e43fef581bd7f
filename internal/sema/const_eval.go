package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
)

// evalConst evaluates an expression in a constant context: integer
// literals, references to constants, and the four arithmetic operators.
// Anything else is not constant. Callers report; this only answers.
func (c *checker) evalConst(ctx *declContext, id ast.ExprID) (uint64, bool) {
	e := c.b.Exprs.Get(id)
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case ast.ExprLit:
		lit := c.b.Exprs.LitData(id)
		if lit.Kind != ast.LitInt {
			return 0, false
		}
		return lit.Int, true
	case ast.ExprPath:
		return c.evalConstPath(ctx, id)
	case ast.ExprBinary:
		bin := c.b.Exprs.BinaryData(id)
		left, okL := c.evalConst(ctx, bin.Left)
		right, okR := c.evalConst(ctx, bin.Right)
		if !okL || !okR {
			return 0, false
		}
		switch bin.Op {
		case ast.BinAdd:
			return left + right, true
		case ast.BinSub:
			return left - right, true
		case ast.BinMul:
			return left * right, true
		case ast.BinDiv:
			if right == 0 {
				return 0, false
			}
			return left / right, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func (c *checker) evalConstPath(ctx *declContext, id ast.ExprID) (uint64, bool) {
	path := c.b.Exprs.PathData(id).Path
	res := c.tbl.ResolvePath(ctx.scope, path)
	if res.Status != namespace.ResolveOK || len(res.Rest) > 0 {
		return 0, false
	}
	sym := c.tbl.Symbols.Get(res.Sym)
	if sym == nil || sym.Kind != namespace.SymbolConst {
		return 0, false
	}
	return c.constValue(sym.Decl)
}

// constValue computes (and caches) a constant declaration's value on
// demand. The visiting set guards against evaluation cycles; those are
// already reported by the dependency analysis, so the guard just keeps
// evaluation terminating.
func (c *checker) constValue(decl ast.DeclID) (uint64, bool) {
	if v, ok := c.res.ConstValues[decl]; ok {
		return v, true
	}
	if c.constVisit[decl] {
		return 0, false
	}
	cd := c.b.Decls.Const(decl)
	if cd == nil {
		return 0, false
	}
	c.constVisit[decl] = true
	defer delete(c.constVisit, decl)

	ctx := &declContext{decl: decl, scope: c.moduleScope(decl)}
	v, ok := c.evalConst(ctx, cd.Value)
	if ok {
		c.res.ConstValues[decl] = v
	}
	return v, ok
}
