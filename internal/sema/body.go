package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// bodyPass elaborates function bodies and constant initializers in
// schedule order. Every signature exists by now, so mutual recursion
// between bodies needs no special casing.
func (c *checker) bodyPass() {
	for _, nid := range c.res.Schedule.Order {
		decl := c.res.Graph.Nodes[nid].Decl
		d := c.b.Decls.Get(decl)
		if d == nil {
			continue
		}
		switch d.Kind {
		case ast.DeclFn:
			c.checkFnBody(decl)
		case ast.DeclConst:
			c.checkConstInit(decl)
		case ast.DeclStorage:
			c.checkStorageInit(decl)
		}
	}
}

// bodyChecker carries per-function state during expression elaboration.
type bodyChecker struct {
	*checker
	ctx    *declContext
	locals scopeStack
	ret    types.TypeID
	module ast.ModuleID
	kind   ast.ProgramKind
	// self is the symbol whose body is being checked; recorded as the
	// caller of every instantiation site found inside it.
	self namespace.SymbolID
}

func (c *checker) checkFnBody(decl ast.DeclID) {
	fn := c.b.Decls.Fn(decl)
	if fn == nil || !fn.Body.IsValid() {
		return
	}

	var ctx *declContext
	var sig *namespace.FnSignature
	self := namespace.NoSymbolID
	if state, isMethod := c.methodCtx[decl]; isMethod {
		ctx = state.Ctx
		self = state.Sym
		sig = c.tbl.Symbols.Get(state.Sym).Sig
	} else {
		ctx = c.newContext(decl, fn.TypeParams)
		if symID, ok := c.declSyms[decl]; ok {
			self = symID
			sig = c.tbl.Symbols.Get(symID).Sig
		}
	}
	if sig == nil {
		return
	}

	mod := c.declMod[decl]
	bc := &bodyChecker{
		checker: c,
		ctx:     ctx,
		ret:     sig.Result,
		module:  mod,
		kind:    c.programKind(mod),
		self:    self,
	}
	bc.locals.push()
	for i, pid := range fn.Params {
		p := c.b.Decls.Params.Get(uint32(pid))
		if i < len(sig.Params) {
			bc.locals.declare(p.Name, localBinding{Type: sig.Params[i], Span: p.Span})
		}
	}

	got := bc.inferExpr(fn.Body)
	if err := c.in.Unify(got, sig.Result); err != nil {
		c.errorf(diag.TypeMismatch, c.bodyResultSpan(fn.Body),
			"function %q returns %s, body has type %s",
			c.name(fn.Name), c.format(sig.Result), c.format(got))
	}
	bc.locals.pop()
}

// bodyResultSpan points a return mismatch at what produced the body's
// value: the block's tail expression, else its last statement, else the
// body itself.
func (c *checker) bodyResultSpan(body ast.ExprID) source.Span {
	e := c.b.Exprs.Get(body)
	if e == nil {
		return source.Span{}
	}
	if e.Kind != ast.ExprBlock {
		return e.Span
	}
	data := c.b.Exprs.BlockData(body)
	if data.Tail.IsValid() {
		if tail := c.b.Exprs.Get(data.Tail); tail != nil {
			return tail.Span
		}
	}
	if n := len(data.Stmts); n > 0 {
		if last := c.b.Stmts.Get(data.Stmts[n-1]); last != nil {
			return last.Span
		}
	}
	return e.Span
}

func (c *checker) checkConstInit(decl ast.DeclID) {
	cd := c.b.Decls.Const(decl)
	if cd == nil {
		return
	}
	declared := c.res.DeclTypes[decl]
	mod := c.declMod[decl]
	bc := &bodyChecker{
		checker: c,
		ctx:     &declContext{decl: decl, scope: c.moduleScope(decl)},
		ret:     declared,
		module:  mod,
		kind:    c.programKind(mod),
	}
	bc.locals.push()
	got := bc.inferExpr(cd.Value)
	bc.locals.pop()
	if err := c.in.Unify(got, declared); err != nil {
		sp := c.b.Exprs.Get(cd.Value).Span
		c.errorf(diag.TypeMismatch, sp, "constant %q declared as %s, initializer has type %s",
			c.name(cd.Name), c.format(declared), c.format(got))
		return
	}
	if _, ok := c.constValue(decl); !ok {
		sp := c.b.Exprs.Get(cd.Value).Span
		c.errorf(diag.ConstRequired, sp, "initializer of %q is not a constant expression", c.name(cd.Name))
	}
}

func (c *checker) checkStorageInit(decl ast.DeclID) {
	st := c.b.Decls.Storage(decl)
	if st == nil {
		return
	}
	mod := c.declMod[decl]
	scope := c.moduleScope(decl)
	bc := &bodyChecker{
		checker: c,
		ctx:     &declContext{decl: decl, scope: scope},
		module:  mod,
		kind:    c.programKind(mod),
	}
	for _, fid := range st.Fields {
		f := c.b.Decls.StorageFields.Get(uint32(fid))
		declared := c.storageFieldType(mod, decl, f.Name)
		if !f.Init.IsValid() {
			continue
		}
		bc.locals.push()
		got := bc.inferExpr(f.Init)
		bc.locals.pop()
		if err := c.in.Unify(got, declared); err != nil {
			c.errorf(diag.TypeMismatch, f.Span, "storage field %q declared as %s, initializer has type %s",
				c.name(f.Name), c.format(declared), c.format(got))
			continue
		}
		if _, ok := c.evalConst(bc.ctx, f.Init); !ok {
			c.errorf(diag.ConstStorageInit, f.Span,
				"storage field %q must have a constant initializer", c.name(f.Name))
		}
	}
}

func (c *checker) storageFieldType(mod ast.ModuleID, decl ast.DeclID, name source.StringID) types.TypeID {
	sym := c.tbl.Symbols.Get(c.tbl.StorageField(mod, name))
	if sym != nil && sym.Decl == decl {
		return sym.Type
	}
	return c.in.Builtins().Error
}

func (c *checker) programKind(mod ast.ModuleID) ast.ProgramKind {
	if m := c.b.Modules.Get(mod); m != nil {
		return m.Kind
	}
	return ast.ProgramLibrary
}
