package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// registerImpls elaborates every impl declaration: target type, trait
// reference, method signatures. Runs after the signature pass so targets
// resolve against completed nominals. Ends with the pairwise overlap
// check; two impls of the same trait whose targets can describe one type
// are a hard ambiguity, there is no specificity ordering.
func (c *checker) registerImpls() {
	for _, mod := range c.modules {
		m := c.b.Modules.Get(mod)
		if m == nil {
			continue
		}
		for _, decl := range m.Decls {
			if d := c.b.Decls.Get(decl); d != nil && d.Kind == ast.DeclImpl {
				c.registerImpl(mod, decl)
			}
		}
	}
	c.checkImplOverlap()
}

func (c *checker) registerImpl(mod ast.ModuleID, decl ast.DeclID) {
	im := c.b.Decls.Impl(decl)
	ctx := c.newContext(decl, im.TypeParams)
	target := c.lowerTypeExpr(ctx, im.Target)
	ctx.selfType = target

	trait := namespace.NoSymbolID
	var spec traitSpec
	if len(im.TraitPath) > 0 {
		trait, spec = c.resolveTrait(ctx, im)
	}

	methods := make(map[source.StringID]namespace.SymbolID, len(im.Methods))
	for _, methodDecl := range im.Methods {
		fn := c.b.Decls.Fn(methodDecl)
		if fn == nil {
			continue
		}
		mctx := c.methodContext(ctx, methodDecl, fn)
		sig := c.elaborateFnSig(mctx, fn)
		c.declParams[methodDecl] = mctx.paramList

		symID := c.tbl.Symbols.New(namespace.Symbol{
			Name:   fn.Name,
			Kind:   namespace.SymbolFunction,
			Span:   fn.NameSpan,
			Decl:   methodDecl,
			Module: mod,
			Sig:    &sig,
			Arity:  len(fn.Params),
			Flags:  namespace.SymbolFlagSignatureDone,
		})
		if prev, dup := methods[fn.Name]; dup {
			prevSym := c.tbl.Symbols.Get(prev)
			c.report(diag.NewError(diag.NameCollision, fn.NameSpan,
				"duplicate method "+c.name(fn.Name)).WithNote(prevSym.Span, "previous declaration here"))
			continue
		}
		methods[fn.Name] = symID
		c.declSyms[methodDecl] = symID
		c.methodCtx[methodDecl] = &methodState{Sym: symID, Ctx: mctx}
	}

	id := c.tbl.Impls.Register(namespace.ImplEntry{
		Impl:       decl,
		Trait:      trait,
		Target:     target,
		TypeParams: ctx.paramList,
		Methods:    methods,
		Span:       im.Span,
	})
	c.impls = append(c.impls, implInfo{Decl: decl, ID: id, Trait: trait})

	// Conformance: every trait method must be provided.
	for _, name := range spec.Order {
		if _, ok := methods[name]; !ok {
			c.errorf(diag.NameNotFound, im.Span,
				"impl is missing trait method %q", c.name(name))
		}
	}
}

func (c *checker) resolveTrait(ctx *declContext, im *ast.ImplDecl) (namespace.SymbolID, traitSpec) {
	res := c.tbl.ResolvePath(ctx.scope, im.TraitPath)
	if res.Status != namespace.ResolveOK {
		c.errorf(diag.NameNotFound, im.Span, "unknown trait %q", c.pathName(im.TraitPath))
		return namespace.NoSymbolID, traitSpec{}
	}
	sym := c.tbl.Symbols.Get(res.Sym)
	if sym == nil || sym.Kind != namespace.SymbolTrait {
		c.errorf(diag.NameNotAType, im.Span, "%q is not a trait", c.pathName(im.TraitPath))
		return namespace.NoSymbolID, traitSpec{}
	}
	return res.Sym, c.traitMethods[sym.Decl]
}

// methodContext merges the impl's type parameters with the method's own.
// The method sees both; its substitution domain at instantiation time is
// the concatenation, impl parameters first.
func (c *checker) methodContext(implCtx *declContext, decl ast.DeclID, fn *ast.FnDecl) *declContext {
	mctx := c.newContext(decl, fn.TypeParams)
	mctx.selfType = implCtx.selfType
	if len(implCtx.paramList) > 0 {
		merged := make(map[source.StringID]types.TypeID,
			len(implCtx.typeParams)+len(mctx.typeParams))
		for name, p := range implCtx.typeParams {
			merged[name] = p
		}
		for name, p := range mctx.typeParams {
			merged[name] = p
		}
		mctx.typeParams = merged
		mctx.paramList = append(append([]types.TypeID{}, implCtx.paramList...), mctx.paramList...)
	}
	return mctx
}

// checkImplOverlap reports every pair of same-trait impls whose targets
// can match the same type.
func (c *checker) checkImplOverlap() {
	for i := range c.impls {
		for j := i + 1; j < len(c.impls); j++ {
			a, b := c.impls[i], c.impls[j]
			if a.Trait != b.Trait || !a.Trait.IsValid() {
				continue
			}
			ea := c.tbl.Impls.Get(a.ID)
			eb := c.tbl.Impls.Get(b.ID)
			if ea == nil || eb == nil {
				continue
			}
			if !c.implTargetsOverlap(ea, eb) {
				continue
			}
			traitSym := c.tbl.Symbols.Get(a.Trait)
			c.report(diag.NewError(diag.NameAmbiguousImpl, eb.Span,
				"conflicting implementations of trait "+c.name(traitSym.Name)+
					" for "+c.format(eb.Target)).
				WithNote(ea.Span, "first implementation here"))
		}
	}
}

// implTargetsOverlap unifies the two target patterns with both sides'
// parameters treated as inference variables; success means some concrete
// type satisfies both.
func (c *checker) implTargetsOverlap(a, b *namespace.ImplEntry) bool {
	if c.in.IsError(a.Target) || c.in.IsError(b.Target) {
		return false
	}
	ta := c.freshenParams(a.Target, a.TypeParams)
	tb := c.freshenParams(b.Target, b.TypeParams)
	return c.in.Unify(ta, tb) == nil
}

func (c *checker) freshenParams(target types.TypeID, params []types.TypeID) types.TypeID {
	if len(params) == 0 {
		return target
	}
	sub := types.NewSubst()
	for _, p := range params {
		_ = sub.Bind(p, c.in.FreshVar(source.Span{}))
	}
	return c.in.Apply(sub, target)
}
