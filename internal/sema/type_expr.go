package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// declContext carries the lexical surroundings of one declaration while
// its types are lowered: the module scope, the declaration's rigid type
// parameters, and the Self target inside impls.
type declContext struct {
	decl       ast.DeclID
	scope      namespace.ScopeID
	typeParams map[source.StringID]types.TypeID
	paramList  []types.TypeID
	selfType   types.TypeID
}

// newContext registers the declaration's type parameters as rigid types
// and builds the lowering context. The declaration's arena index doubles
// as the owner handle of its parameters.
func (c *checker) newContext(decl ast.DeclID, typeParams []ast.TypeParamID) *declContext {
	ctx := &declContext{
		decl:  decl,
		scope: c.moduleScope(decl),
	}
	if len(typeParams) > 0 {
		ctx.typeParams = make(map[source.StringID]types.TypeID, len(typeParams))
		ctx.paramList = make([]types.TypeID, 0, len(typeParams))
		for i, tpID := range typeParams {
			tp := c.b.Decls.TypeParams.Get(uint32(tpID))
			p := c.in.RegisterParam(tp.Name, uint32(decl), uint32(i))
			ctx.typeParams[tp.Name] = p
			ctx.paramList = append(ctx.paramList, p)
		}
	}
	return ctx
}

// lowerTypeExpr elaborates a surface type into an interned TypeID. Errors
// report once and return the error sentinel so dependent positions stay
// quiet.
func (c *checker) lowerTypeExpr(ctx *declContext, id ast.TypeExprID) types.TypeID {
	bl := c.in.Builtins()
	te := c.b.TypeExprs.Get(id)
	if te == nil {
		return bl.Unit
	}
	switch te.Kind {
	case ast.TypeExprUnit:
		return bl.Unit
	case ast.TypeExprSelf:
		if ctx.selfType == types.NoTypeID {
			c.errorf(diag.TypeNoSelfContext, te.Span, "Self is only allowed inside trait and impl declarations")
			return bl.Error
		}
		return ctx.selfType
	case ast.TypeExprRef:
		elem := c.lowerTypeExpr(ctx, c.b.TypeExprs.RefData(id).Elem)
		return c.in.Intern(types.MakeRef(elem))
	case ast.TypeExprTuple:
		data := c.b.TypeExprs.TupleData(id)
		elems := make([]types.TypeID, len(data.Elems))
		for i, e := range data.Elems {
			elems[i] = c.lowerTypeExpr(ctx, e)
		}
		return c.in.Tuple(elems)
	case ast.TypeExprArray:
		data := c.b.TypeExprs.ArrayData(id)
		elem := c.lowerTypeExpr(ctx, data.Elem)
		count := c.lowerArrayLength(ctx, data.Len)
		return c.in.Intern(types.MakeArray(elem, count))
	case ast.TypeExprNamed:
		return c.lowerNamed(ctx, id, te.Span)
	default:
		return bl.Error
	}
}

// lowerArrayLength evaluates the length expression as a constant context.
// A non-constant length reports and yields the unresolved marker so the
// array still unifies with correctly sized ones.
func (c *checker) lowerArrayLength(ctx *declContext, length ast.ExprID) uint32 {
	value, ok := c.evalConst(ctx, length)
	if !ok {
		sp := source.Span{}
		if e := c.b.Exprs.Get(length); e != nil {
			sp = e.Span
		}
		c.errorf(diag.ConstNonConstLen, sp, "array length must be a constant expression")
		return types.ArrayLengthUnresolved
	}
	if value > uint64(types.ArrayLengthUnresolved-1) {
		sp := c.b.Exprs.Get(length).Span
		c.errorf(diag.ConstRequired, sp, "array length %d is out of range", value)
		return types.ArrayLengthUnresolved
	}
	return uint32(value)
}

func (c *checker) lowerNamed(ctx *declContext, id ast.TypeExprID, sp source.Span) types.TypeID {
	bl := c.in.Builtins()
	data := c.b.TypeExprs.NamedData(id)

	// A bare name can be one of the declaration's own type parameters.
	if len(data.Path) == 1 && ctx.typeParams != nil {
		if p, ok := ctx.typeParams[data.Path[0]]; ok {
			if len(data.Args) > 0 {
				c.errorf(diag.TypeArgCount, sp, "type parameter %q takes no type arguments", c.name(data.Path[0]))
				return bl.Error
			}
			return p
		}
	}

	res := c.tbl.ResolvePath(ctx.scope, data.Path)
	switch res.Status {
	case namespace.ResolveNotFound:
		c.errorf(diag.NameNotFound, sp, "unknown type %q", c.pathName(data.Path))
		return bl.Error
	case namespace.ResolvePrivate:
		c.errorf(diag.NamePrivate, sp, "type %q is private", c.pathName(data.Path))
		return bl.Error
	}
	sym := c.tbl.Symbols.Get(res.Sym)
	if sym == nil || !sym.Kind.IsType() {
		c.errorf(diag.NameNotAType, sp, "%q is not a type", c.pathName(data.Path))
		return bl.Error
	}
	if len(res.Rest) > 0 {
		c.errorf(diag.NameNotAType, sp, "%q does not name a type", c.pathName(data.Path))
		return bl.Error
	}

	switch sym.Kind {
	case namespace.SymbolBuiltinType, namespace.SymbolTypeParam:
		if len(data.Args) > 0 {
			c.errorf(diag.TypeArgCount, sp, "%q takes no type arguments", c.pathName(data.Path))
			return bl.Error
		}
		return sym.Type
	}

	// Struct or enum: the symbol's type is the generic nominal; an
	// instance substitutes the declaration's parameters.
	generic := sym.Type
	if generic == types.NoTypeID {
		// Signature not elaborated yet: only possible for a
		// declaration trapped in a reported value cycle.
		return bl.Error
	}
	params := c.declParams[sym.Decl]
	if len(data.Args) == 0 && len(params) == 0 {
		return generic
	}
	args := make([]types.TypeID, len(params))
	if len(data.Args) == 0 {
		// Unwritten arguments become inference variables; the
		// surrounding unification pins them down.
		for i := range args {
			args[i] = c.in.FreshVar(sp)
		}
	} else {
		if len(data.Args) != len(params) {
			c.errorf(diag.TypeArgCount, sp, "%q expects %d type argument(s), found %d",
				c.pathName(data.Path), len(params), len(data.Args))
			return bl.Error
		}
		for i, arg := range data.Args {
			args[i] = c.lowerTypeExpr(ctx, arg)
		}
	}
	sub, err := types.MakeSubst(params, args)
	if err != nil {
		return bl.Error
	}
	return c.in.Apply(sub, generic)
}

func (c *checker) pathName(path []source.StringID) string {
	out := ""
	for i, seg := range path {
		if i > 0 {
			out += "::"
		}
		out += c.name(seg)
	}
	return out
}
