package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// inferExpr elaborates one expression and records its type in the side
// table. Error positions get the error sentinel so downstream unification
// stays quiet.
func (bc *bodyChecker) inferExpr(id ast.ExprID) types.TypeID {
	e := bc.b.Exprs.Get(id)
	if e == nil {
		return bc.in.Builtins().Error
	}
	t := bc.inferExprInner(id, e)
	bc.res.ExprTypes[id] = t
	return t
}

func (bc *bodyChecker) inferExprInner(id ast.ExprID, e *ast.Expr) types.TypeID {
	bl := bc.in.Builtins()
	switch e.Kind {
	case ast.ExprLit:
		return bc.inferLit(id, e.Span)
	case ast.ExprPath:
		return bc.inferPath(id, e.Span)
	case ast.ExprCall:
		return bc.inferCall(id, e.Span)
	case ast.ExprBinary:
		return bc.inferBinary(id, e.Span)
	case ast.ExprUnary:
		return bc.inferUnary(id, e.Span)
	case ast.ExprField:
		return bc.inferField(id, e.Span)
	case ast.ExprIndex:
		return bc.inferIndex(id, e.Span)
	case ast.ExprTuple:
		data := bc.b.Exprs.TupleData(id)
		elems := make([]types.TypeID, len(data.Elems))
		for i, el := range data.Elems {
			elems[i] = bc.inferExpr(el)
		}
		return bc.in.Tuple(elems)
	case ast.ExprArray:
		return bc.inferArray(id, e.Span)
	case ast.ExprStructLit:
		return bc.inferStructLit(id, e.Span)
	case ast.ExprIf:
		return bc.inferIf(id, e.Span)
	case ast.ExprMatch:
		return bc.inferMatch(id, e.Span)
	case ast.ExprBlock:
		return bc.inferBlock(id)
	case ast.ExprStorageAccess:
		return bc.inferStorageAccess(id, e.Span)
	default:
		return bl.Error
	}
}

func (bc *bodyChecker) inferLit(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	lit := bc.b.Exprs.LitData(id)
	switch lit.Kind {
	case ast.LitBool:
		return bl.Bool
	case ast.LitString:
		return bl.String
	case ast.LitUnit:
		return bl.Unit
	case ast.LitInt:
		if lit.Width != 0 {
			return bc.in.Intern(types.MakeNumeric(types.Width(lit.Width)))
		}
		// Width still open: a numeric inference variable that the
		// surrounding context narrows, or u64 at finalize.
		return bc.in.FreshNumericVar(sp)
	}
	return bl.Error
}

func (bc *bodyChecker) inferPath(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	path := bc.b.Exprs.PathData(id).Path
	if len(path) == 1 {
		if local, ok := bc.locals.lookup(path[0]); ok {
			return local.Type
		}
	}

	res := bc.tbl.ResolvePath(bc.ctx.scope, path)
	switch res.Status {
	case namespace.ResolveNotFound:
		bc.errorf(diag.NameNotFound, sp, "unknown name %q", bc.pathName(path))
		return bl.Error
	case namespace.ResolvePrivate:
		bc.errorf(diag.NamePrivate, sp, "%q is private", bc.pathName(path))
		return bl.Error
	}
	sym := bc.tbl.Symbols.Get(res.Sym)
	if sym == nil {
		return bl.Error
	}

	switch sym.Kind {
	case namespace.SymbolConst:
		return sym.Type
	case namespace.SymbolEnum:
		return bc.inferVariantValue(sym, res.Rest, sp)
	case namespace.SymbolFunction, namespace.SymbolBuiltinFn:
		bc.errorf(diag.NameNotCallable, sp, "function %q must be called", bc.pathName(path))
		return bl.Error
	case namespace.SymbolStruct, namespace.SymbolBuiltinType, namespace.SymbolTypeParam:
		bc.errorf(diag.TypeMismatch, sp, "type %q used as a value", bc.pathName(path))
		return bl.Error
	default:
		bc.errorf(diag.NameNotFound, sp, "%q cannot be used as a value", bc.pathName(path))
		return bl.Error
	}
}

// inferVariantValue types a bare enum variant reference: the enum
// instantiated with fresh arguments, legal only for payload-free
// variants.
func (bc *bodyChecker) inferVariantValue(sym *namespace.Symbol, rest []source.StringID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	if len(rest) != 1 {
		bc.errorf(diag.TypeMismatch, sp, "enum %q used as a value", bc.name(sym.Name))
		return bl.Error
	}
	inst := bc.instantiateNominal(sym, sp)
	variant, ok := bc.in.VariantNamed(inst, rest[0])
	if !ok {
		bc.errorf(diag.TypeFieldUnknown, sp, "enum %q has no variant %q",
			bc.name(sym.Name), bc.name(rest[0]))
		return bl.Error
	}
	if bc.in.Resolve(variant.Payload) != bl.Unit {
		bc.errorf(diag.TypeArgCount, sp, "variant %q carries a payload and must be called",
			bc.name(rest[0]))
		return bl.Error
	}
	return inst
}

// instantiateNominal builds an instance of a struct/enum declaration with
// fresh inference variables for its parameters.
func (bc *bodyChecker) instantiateNominal(sym *namespace.Symbol, sp source.Span) types.TypeID {
	params := bc.declParams[sym.Decl]
	if len(params) == 0 {
		return sym.Type
	}
	args := make([]types.TypeID, len(params))
	for i := range args {
		args[i] = bc.in.FreshVar(sp)
	}
	sub, err := types.MakeSubst(params, args)
	if err != nil {
		return bc.in.Builtins().Error
	}
	return bc.in.Apply(sub, sym.Type)
}

func (bc *bodyChecker) inferBinary(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	bin := bc.b.Exprs.BinaryData(id)
	left := bc.inferExpr(bin.Left)
	right := bc.inferExpr(bin.Right)

	if bin.Op.IsLogical() {
		bc.expect(left, bl.Bool, bc.spanOf(bin.Left), "logical operand")
		bc.expect(right, bl.Bool, bc.spanOf(bin.Right), "logical operand")
		return bl.Bool
	}

	if err := bc.in.Unify(left, right); err != nil {
		bc.errorf(diag.TypeMismatch, sp, "operands have mismatched types %s and %s",
			bc.format(left), bc.format(right))
		return bl.Error
	}
	if bin.Op.IsComparison() {
		return bl.Bool
	}
	// Arithmetic requires a numeric operand type.
	if err := bc.in.Unify(left, bc.in.FreshNumericVar(sp)); err != nil {
		bc.errorf(diag.TypeMismatch, sp, "arithmetic requires a numeric type, found %s", bc.format(left))
		return bl.Error
	}
	return left
}

func (bc *bodyChecker) inferUnary(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	un := bc.b.Exprs.UnaryData(id)
	operand := bc.inferExpr(un.Operand)
	switch un.Op {
	case ast.UnNot:
		bc.expect(operand, bl.Bool, sp, "operand of !")
		return bl.Bool
	case ast.UnRef:
		return bc.in.Intern(types.MakeRef(operand))
	case ast.UnDeref:
		elem := bc.in.FreshVar(sp)
		ref := bc.in.Intern(types.MakeRef(elem))
		if err := bc.in.Unify(operand, ref); err != nil {
			bc.errorf(diag.TypeMismatch, sp, "cannot dereference %s", bc.format(operand))
			return bl.Error
		}
		return elem
	}
	return bl.Error
}

func (bc *bodyChecker) inferField(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	data := bc.b.Exprs.FieldData(id)
	recv := bc.autoDeref(bc.inferExpr(data.Recv))
	if bc.in.IsError(recv) {
		return bl.Error
	}
	field, ok := bc.in.FieldNamed(recv, data.Name)
	if !ok {
		bc.errorf(diag.TypeFieldUnknown, sp, "%s has no field %q", bc.format(recv), bc.name(data.Name))
		return bl.Error
	}
	return field.Type
}

// autoDeref strips reference layers so field and index access work on
// borrowed values.
func (bc *bodyChecker) autoDeref(t types.TypeID) types.TypeID {
	for {
		t = bc.in.Resolve(t)
		tt, ok := bc.in.Lookup(t)
		if !ok || tt.Kind != types.KindRef {
			return t
		}
		t = tt.Elem
	}
}

func (bc *bodyChecker) inferIndex(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	data := bc.b.Exprs.IndexData(id)
	recv := bc.autoDeref(bc.inferExpr(data.Recv))
	index := bc.inferExpr(data.Index)
	bc.expect(index, bl.U64, bc.spanOf(data.Index), "array index")

	if bc.in.IsError(recv) {
		return bl.Error
	}
	tt, ok := bc.in.Lookup(recv)
	if !ok || tt.Kind != types.KindArray {
		bc.errorf(diag.TypeNotIndexable, sp, "%s cannot be indexed", bc.format(recv))
		return bl.Error
	}
	return tt.Elem
}

func (bc *bodyChecker) inferArray(id ast.ExprID, sp source.Span) types.TypeID {
	data := bc.b.Exprs.ArrayData(id)
	elem := bc.in.FreshVar(sp)
	for _, el := range data.Elems {
		t := bc.inferExpr(el)
		if err := bc.in.Unify(elem, t); err != nil {
			bc.errorf(diag.TypeMismatch, bc.spanOf(el),
				"array element has type %s, expected %s", bc.format(t), bc.format(elem))
		}
	}
	return bc.in.Intern(types.MakeArray(elem, uint32(len(data.Elems))))
}

func (bc *bodyChecker) inferStructLit(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	data := bc.b.Exprs.StructLitData(id)

	res := bc.tbl.ResolvePath(bc.ctx.scope, data.Path)
	if res.Status != namespace.ResolveOK {
		bc.errorf(diag.NameNotFound, sp, "unknown struct %q", bc.pathName(data.Path))
		return bl.Error
	}
	sym := bc.tbl.Symbols.Get(res.Sym)
	if sym == nil || sym.Kind != namespace.SymbolStruct {
		bc.errorf(diag.NameNotAType, sp, "%q is not a struct", bc.pathName(data.Path))
		return bl.Error
	}

	var inst types.TypeID
	params := bc.declParams[sym.Decl]
	if len(data.TypeArgs) > 0 {
		if len(data.TypeArgs) != len(params) {
			bc.errorf(diag.TypeArgCount, sp, "%q expects %d type argument(s), found %d",
				bc.name(sym.Name), len(params), len(data.TypeArgs))
			return bl.Error
		}
		args := make([]types.TypeID, len(params))
		for i, arg := range data.TypeArgs {
			args[i] = bc.lowerTypeExpr(bc.ctx, arg)
		}
		sub, err := types.MakeSubst(params, args)
		if err != nil {
			return bl.Error
		}
		inst = bc.in.Apply(sub, sym.Type)
	} else {
		inst = bc.instantiateNominal(sym, sp)
	}

	info, _ := bc.in.NominalInfo(inst)
	if info == nil {
		return bl.Error
	}
	covered := make(map[source.StringID]struct{}, len(data.Fields))
	for _, f := range data.Fields {
		field, ok := bc.in.FieldNamed(inst, f.Name)
		if !ok {
			bc.errorf(diag.TypeFieldUnknown, f.Span, "%q has no field %q",
				bc.name(sym.Name), bc.name(f.Name))
			bc.inferExpr(f.Value)
			continue
		}
		covered[f.Name] = struct{}{}
		got := bc.inferExpr(f.Value)
		if err := bc.in.Unify(got, field.Type); err != nil {
			bc.errorf(diag.TypeMismatch, f.Span, "field %q has type %s, found %s",
				bc.name(f.Name), bc.format(field.Type), bc.format(got))
		}
	}
	for _, field := range info.Fields {
		if _, ok := covered[field.Name]; !ok {
			bc.errorf(diag.TypeFieldMissing, sp, "missing field %q in struct literal",
				bc.name(field.Name))
		}
	}
	return inst
}

func (bc *bodyChecker) inferIf(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	data := bc.b.Exprs.IfData(id)
	cond := bc.inferExpr(data.Cond)
	if err := bc.in.Unify(cond, bl.Bool); err != nil {
		bc.errorf(diag.TypeCondNotBool, bc.spanOf(data.Cond),
			"if condition must be bool, found %s", bc.format(cond))
	}
	then := bc.inferExpr(data.Then)
	if !data.Else.IsValid() {
		bc.expect(then, bl.Unit, sp, "if without else")
		return bl.Unit
	}
	els := bc.inferExpr(data.Else)
	if err := bc.in.Unify(then, els); err != nil {
		bc.errorf(diag.TypeMismatch, sp, "if branches have mismatched types %s and %s",
			bc.format(then), bc.format(els))
		return bl.Error
	}
	return then
}

func (bc *bodyChecker) inferMatch(id ast.ExprID, sp source.Span) types.TypeID {
	data := bc.b.Exprs.MatchData(id)
	scrutinee := bc.inferExpr(data.Scrutinee)
	result := bc.in.FreshVar(sp)

	sawCatchAll := false
	for _, armID := range data.Arms {
		arm := bc.b.Exprs.Arm(armID)
		pat := bc.b.Patterns.Get(arm.Pattern)
		if pat == nil {
			continue
		}
		switch pat.Kind {
		case ast.PatternWildcard:
			if sawCatchAll {
				bc.report(diag.New(diag.SevWarning, diag.TypePatternMismatch, arm.Span,
					"unreachable match arm"))
			}
			sawCatchAll = true
		case ast.PatternExpr:
			if sawCatchAll {
				bc.report(diag.New(diag.SevWarning, diag.TypePatternMismatch, arm.Span,
					"unreachable match arm"))
			}
			got := bc.inferExpr(pat.Expr)
			if err := bc.in.Unify(got, scrutinee); err != nil {
				bc.errorf(diag.TypePatternMismatch, pat.Span,
					"pattern has type %s, scrutinee has type %s",
					bc.format(got), bc.format(scrutinee))
			}
		}
		body := bc.inferExpr(arm.Body)
		if err := bc.in.Unify(result, body); err != nil {
			bc.errorf(diag.TypeMismatch, arm.Span, "match arms have mismatched types %s and %s",
				bc.format(result), bc.format(body))
		}
	}
	if !sawCatchAll {
		bc.errorf(diag.TypePatternMismatch, sp, "non-exhaustive match, add a catch-all arm")
	}
	return result
}

func (bc *bodyChecker) inferBlock(id ast.ExprID) types.TypeID {
	bl := bc.in.Builtins()
	data := bc.b.Exprs.BlockData(id)
	bc.locals.push()
	defer bc.locals.pop()
	for _, stmtID := range data.Stmts {
		bc.checkStmt(stmtID)
	}
	if data.Tail.IsValid() {
		return bc.inferExpr(data.Tail)
	}
	return bl.Unit
}

func (bc *bodyChecker) inferStorageAccess(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	if bc.kind != ast.ProgramContract {
		bc.errorf(diag.ProgStorageContext, sp, "storage is only available in contracts")
	}
	data := bc.b.Exprs.StorageAccessData(id)
	if sym := bc.tbl.Symbols.Get(bc.tbl.StorageField(bc.module, data.Field)); sym != nil {
		return sym.Type
	}
	bc.errorf(diag.NameNotFound, sp, "no storage field %q", bc.name(data.Field))
	return bl.Error
}

func (bc *bodyChecker) checkStmt(id ast.StmtID) {
	bl := bc.in.Builtins()
	st := bc.b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtLet:
		let := bc.b.Stmts.LetData(id)
		got := bc.inferExpr(let.Value)
		bound := got
		if let.Type.IsValid() {
			declared := bc.lowerTypeExpr(bc.ctx, let.Type)
			if err := bc.in.Unify(got, declared); err != nil {
				bc.errorf(diag.TypeMismatch, st.Span, "let %q declared as %s, value has type %s",
					bc.name(let.Name), bc.format(declared), bc.format(got))
			}
			bound = declared
		}
		bc.locals.declare(let.Name, localBinding{Type: bound, Span: st.Span})
	case ast.StmtExpr:
		bc.inferExpr(bc.b.Stmts.ExprData(id).Expr)
	case ast.StmtReturn:
		ret := bc.b.Stmts.ReturnData(id)
		got := bl.Unit
		if ret.Value.IsValid() {
			got = bc.inferExpr(ret.Value)
		}
		if bc.ret != types.NoTypeID {
			if err := bc.in.Unify(got, bc.ret); err != nil {
				bc.errorf(diag.TypeMismatch, st.Span, "return type %s does not match %s",
					bc.format(got), bc.format(bc.ret))
			}
		}
	}
}

// expect unifies got against want and reports a mismatch with a role
// label.
func (bc *bodyChecker) expect(got, want types.TypeID, sp source.Span, role string) {
	if err := bc.in.Unify(got, want); err != nil {
		bc.errorf(diag.TypeMismatch, sp, "%s must be %s, found %s",
			role, bc.format(want), bc.format(got))
	}
}

func (bc *bodyChecker) spanOf(id ast.ExprID) source.Span {
	if e := bc.b.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}
