package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// signaturePass elaborates declaration headers in dependency order, so a
// struct's fields can refer to any type scheduled before it. Declarations
// trapped in a value cycle are poisoned with the error sentinel; the cycle
// is already reported.
func (c *checker) signaturePass() {
	for _, nid := range c.res.Schedule.Order {
		decl := c.res.Graph.Nodes[nid].Decl
		if _, isMethod := c.implMethods[decl]; isMethod {
			continue // elaborated with its impl
		}
		c.elaborateSignature(decl)
	}
	for _, nid := range c.res.Schedule.Cycles {
		c.poisonDecl(c.res.Graph.Nodes[nid].Decl)
	}
}

func (c *checker) poisonDecl(decl ast.DeclID) {
	bl := c.in.Builtins()
	if symID, ok := c.declSyms[decl]; ok {
		sym := c.tbl.Symbols.Get(symID)
		if sym != nil && sym.Type == types.NoTypeID {
			sym.Type = bl.Error
		}
	}
	c.res.DeclTypes[decl] = bl.Error
}

func (c *checker) elaborateSignature(decl ast.DeclID) {
	d := c.b.Decls.Get(decl)
	if d == nil {
		return
	}
	switch d.Kind {
	case ast.DeclStruct:
		c.elaborateStruct(decl)
	case ast.DeclEnum:
		c.elaborateEnum(decl)
	case ast.DeclConst:
		c.elaborateConstType(decl)
	case ast.DeclFn:
		c.elaborateFn(decl)
	case ast.DeclTrait:
		c.elaborateTrait(decl)
	case ast.DeclStorage:
		c.elaborateStorage(decl)
	}
}

func (c *checker) elaborateStruct(decl ast.DeclID) {
	st := c.b.Decls.Struct(decl)
	ctx := c.newContext(decl, st.TypeParams)
	c.declParams[decl] = ctx.paramList

	nominal := c.in.RegisterNominal(types.NominalStruct, st.Name, uint32(decl), st.NameSpan, ctx.paramList)
	c.finishSymbol(decl, nominal)
	c.res.DeclTypes[decl] = nominal

	fields := make([]types.Field, 0, len(st.Fields))
	seen := make(map[source.StringID]source.Span, len(st.Fields))
	for _, fid := range st.Fields {
		f := c.b.Decls.Fields.Get(uint32(fid))
		if prev, dup := seen[f.Name]; dup {
			c.report(diag.NewError(diag.NameCollision, f.Span,
				"duplicate field "+c.name(f.Name)).WithNote(prev, "first declared here"))
			continue
		}
		seen[f.Name] = f.Span
		fields = append(fields, types.Field{
			Name: f.Name,
			Type: c.lowerTypeExpr(ctx, f.Type),
			Span: f.Span,
		})
	}
	c.in.SetFields(nominal, fields)
}

func (c *checker) elaborateEnum(decl ast.DeclID) {
	en := c.b.Decls.Enum(decl)
	ctx := c.newContext(decl, en.TypeParams)
	c.declParams[decl] = ctx.paramList
	bl := c.in.Builtins()

	nominal := c.in.RegisterNominal(types.NominalEnum, en.Name, uint32(decl), en.NameSpan, ctx.paramList)
	c.finishSymbol(decl, nominal)
	c.res.DeclTypes[decl] = nominal

	variants := make([]types.Variant, 0, len(en.Variants))
	seen := make(map[source.StringID]source.Span, len(en.Variants))
	for _, vid := range en.Variants {
		v := c.b.Decls.Variants.Get(uint32(vid))
		if prev, dup := seen[v.Name]; dup {
			c.report(diag.NewError(diag.NameCollision, v.Span,
				"duplicate variant "+c.name(v.Name)).WithNote(prev, "first declared here"))
			continue
		}
		seen[v.Name] = v.Span
		payload := bl.Unit
		if v.Payload.IsValid() {
			payload = c.lowerTypeExpr(ctx, v.Payload)
		}
		variants = append(variants, types.Variant{Name: v.Name, Payload: payload, Span: v.Span})
	}
	c.in.SetVariants(nominal, variants)
}

func (c *checker) elaborateConstType(decl ast.DeclID) {
	cd := c.b.Decls.Const(decl)
	ctx := c.newContext(decl, nil)
	t := c.lowerTypeExpr(ctx, cd.Type)
	c.finishSymbol(decl, t)
	c.res.DeclTypes[decl] = t
}

func (c *checker) elaborateFn(decl ast.DeclID) {
	fn := c.b.Decls.Fn(decl)
	ctx := c.newContext(decl, fn.TypeParams)
	c.declParams[decl] = ctx.paramList

	sig := c.elaborateFnSig(ctx, fn)
	if symID, ok := c.declSyms[decl]; ok {
		sym := c.tbl.Symbols.Get(symID)
		if sym != nil {
			sym.Sig = &sig
			sym.Flags |= namespace.SymbolFlagSignatureDone
		}
	}
}

// elaborateFnSig lowers a function header inside ctx. A leading self
// parameter takes the context's Self type; outside an impl that is an
// error.
func (c *checker) elaborateFnSig(ctx *declContext, fn *ast.FnDecl) namespace.FnSignature {
	bl := c.in.Builtins()
	selfName := c.b.Intern("self")

	sig := namespace.FnSignature{
		TypeParams: ctx.paramList,
		Params:     make([]types.TypeID, 0, len(fn.Params)),
		Result:     bl.Unit,
	}
	for i, pid := range fn.Params {
		p := c.b.Decls.Params.Get(uint32(pid))
		if i == 0 && p.Name == selfName && !p.Type.IsValid() {
			sig.HasSelf = true
			if ctx.selfType == types.NoTypeID {
				c.errorf(diag.TypeNoSelfContext, p.Span, "self parameter outside an impl")
				sig.Params = append(sig.Params, bl.Error)
			} else {
				sig.Params = append(sig.Params, ctx.selfType)
			}
			continue
		}
		sig.Params = append(sig.Params, c.lowerTypeExpr(ctx, p.Type))
	}
	if fn.Return.IsValid() {
		sig.Result = c.lowerTypeExpr(ctx, fn.Return)
	}
	return sig
}

// elaborateTrait records the trait's method names and signatures. Trait
// method Self stays an unresolved marker until an impl provides the
// target.
func (c *checker) elaborateTrait(decl ast.DeclID) {
	tr := c.b.Decls.Trait(decl)
	methods := make(map[source.StringID]*namespace.FnSignature, len(tr.Methods))
	order := make([]source.StringID, 0, len(tr.Methods))
	for _, mid := range tr.Methods {
		fn := c.b.Decls.Fn(mid)
		if fn == nil {
			continue
		}
		ctx := c.newContext(mid, fn.TypeParams)
		ctx.selfType = c.in.MakeSelf(types.NoTypeID)
		sig := c.elaborateFnSig(ctx, fn)
		methods[fn.Name] = &sig
		order = append(order, fn.Name)
	}
	c.traitMethods[decl] = traitSpec{Methods: methods, Order: order}
}

func (c *checker) elaborateStorage(decl ast.DeclID) {
	st := c.b.Decls.Storage(decl)
	ctx := c.newContext(decl, nil)
	mod := c.declMod[decl]
	for _, fid := range st.Fields {
		f := c.b.Decls.StorageFields.Get(uint32(fid))
		t := c.lowerTypeExpr(ctx, f.Type)
		sym := c.tbl.Symbols.Get(c.tbl.StorageField(mod, f.Name))
		if sym != nil && sym.Decl == decl {
			sym.Type = t
			sym.Flags |= namespace.SymbolFlagSignatureDone
		}
	}
}

// finishSymbol stores the elaborated type on the declaring symbol.
func (c *checker) finishSymbol(decl ast.DeclID, t types.TypeID) {
	if symID, ok := c.declSyms[decl]; ok {
		sym := c.tbl.Symbols.Get(symID)
		if sym != nil {
			sym.Type = t
			sym.Flags |= namespace.SymbolFlagSignatureDone
		}
	}
}

func (c *checker) report(d diag.Diagnostic) {
	if c.reporter != nil {
		c.reporter.Report(d)
	}
}
