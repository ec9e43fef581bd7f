package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

func (bc *bodyChecker) inferCall(id ast.ExprID, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	data := bc.b.Exprs.CallData(id)

	callee := bc.b.Exprs.Get(data.Callee)
	if callee == nil {
		return bl.Error
	}
	switch callee.Kind {
	case ast.ExprPath:
		return bc.inferPathCall(data, callee.Span, sp)
	case ast.ExprField:
		return bc.inferMethodCall(data, callee.Span, sp)
	default:
		bc.errorf(diag.NameNotCallable, callee.Span, "expression is not callable")
		for _, arg := range data.Args {
			bc.inferExpr(arg)
		}
		return bl.Error
	}
}

func (bc *bodyChecker) inferPathCall(data *ast.ExprCallData, calleeSpan, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	path := bc.b.Exprs.PathData(data.Callee).Path
	// Mark the callee so finalize does not flag it untyped. Its "type"
	// is the call's result; paths to functions have no first-class type.
	defer func() {
		if t, ok := bc.res.ExprTypes[data.Callee]; !ok || t == types.NoTypeID {
			bc.res.ExprTypes[data.Callee] = bl.Unit
		}
	}()

	if len(path) == 1 {
		if _, ok := bc.locals.lookup(path[0]); ok {
			bc.errorf(diag.NameNotCallable, calleeSpan, "%q is a local value, not a function",
				bc.name(path[0]))
			bc.inferArgs(data.Args)
			return bl.Error
		}
	}

	res := bc.tbl.ResolvePath(bc.ctx.scope, path)
	switch res.Status {
	case namespace.ResolveNotFound:
		bc.errorf(diag.NameNotFound, calleeSpan, "unknown name %q", bc.pathName(path))
		bc.inferArgs(data.Args)
		return bl.Error
	case namespace.ResolvePrivate:
		bc.errorf(diag.NamePrivate, calleeSpan, "%q is private", bc.pathName(path))
		bc.inferArgs(data.Args)
		return bl.Error
	}

	sym := bc.tbl.Symbols.Get(res.Sym)
	if sym == nil {
		return bl.Error
	}
	switch sym.Kind {
	case namespace.SymbolFunction, namespace.SymbolBuiltinFn:
		return bc.inferFnCall(res, data, calleeSpan, sp)
	case namespace.SymbolEnum:
		return bc.inferVariantCall(sym, res.Rest, data, sp)
	case namespace.SymbolStruct:
		bc.errorf(diag.NameNotCallable, calleeSpan,
			"%q is a struct, construct it with a struct literal", bc.pathName(path))
		bc.inferArgs(data.Args)
		return bl.Error
	default:
		bc.errorf(diag.NameNotCallable, calleeSpan, "%q is not a function", bc.pathName(path))
		bc.inferArgs(data.Args)
		return bl.Error
	}
}

// inferFnCall picks the overload matching the argument count, freshens its
// type parameters, and unifies the arguments against the instantiated
// signature.
func (bc *bodyChecker) inferFnCall(res namespace.Resolution, data *ast.ExprCallData, calleeSpan, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()

	var chosen *namespace.Symbol
	var chosenID namespace.SymbolID
	for _, cand := range res.Candidates {
		sym := bc.tbl.Symbols.Get(cand)
		if sym == nil || sym.Sig == nil {
			continue
		}
		if sym.Kind != namespace.SymbolFunction && sym.Kind != namespace.SymbolBuiltinFn {
			continue
		}
		if len(sym.Sig.Params) == len(data.Args) {
			chosen = sym
			chosenID = cand
			break
		}
	}
	if chosen == nil {
		sym := bc.tbl.Symbols.Get(res.Sym)
		want := 0
		if sym != nil && sym.Sig != nil {
			want = len(sym.Sig.Params)
		}
		bc.errorf(diag.NameArityOverload, sp,
			"no overload of %q takes %d argument(s), nearest takes %d",
			bc.name(sym.Name), len(data.Args), want)
		bc.inferArgs(data.Args)
		return bl.Error
	}

	sig, args, ok := bc.instantiateSig(chosen.Sig, data.TypeArgs, sp)
	if !ok {
		bc.inferArgs(data.Args)
		return bl.Error
	}
	for i, argExpr := range data.Args {
		got := bc.inferExpr(argExpr)
		if err := bc.in.Unify(got, sig.Params[i]); err != nil {
			bc.errorf(diag.TypeMismatch, bc.spanOf(argExpr),
				"argument %d of %q has type %s, expected %s",
				i+1, bc.name(chosen.Name), bc.format(got), bc.format(sig.Params[i]))
		}
	}
	if len(args) > 0 {
		bc.pendInstantiation(chosenID, args, sp)
	}
	return sig.Result
}

// instantiateSig replaces the signature's type parameters: explicit type
// arguments when given, fresh inference variables otherwise. Returns the
// instantiated signature and the argument list used.
func (bc *bodyChecker) instantiateSig(sig *namespace.FnSignature, typeArgs []ast.TypeExprID, sp source.Span) (namespace.FnSignature, []types.TypeID, bool) {
	if len(sig.TypeParams) == 0 {
		if len(typeArgs) > 0 {
			bc.errorf(diag.TypeArgCount, sp, "function takes no type arguments")
			return namespace.FnSignature{}, nil, false
		}
		return *sig, nil, true
	}
	args := make([]types.TypeID, len(sig.TypeParams))
	if len(typeArgs) > 0 {
		if len(typeArgs) != len(sig.TypeParams) {
			bc.errorf(diag.TypeArgCount, sp, "function expects %d type argument(s), found %d",
				len(sig.TypeParams), len(typeArgs))
			return namespace.FnSignature{}, nil, false
		}
		for i, te := range typeArgs {
			args[i] = bc.lowerTypeExpr(bc.ctx, te)
		}
	} else {
		for i := range args {
			args[i] = bc.in.FreshVar(sp)
		}
	}
	sub, err := types.MakeSubst(sig.TypeParams, args)
	if err != nil {
		return namespace.FnSignature{}, nil, false
	}
	return sig.Instantiate(bc.in, sub), args, true
}

// inferVariantCall types Enum::Variant(payload).
func (bc *bodyChecker) inferVariantCall(sym *namespace.Symbol, rest []source.StringID, data *ast.ExprCallData, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	if len(rest) != 1 {
		bc.errorf(diag.NameNotCallable, sp, "enum %q is not callable", bc.name(sym.Name))
		bc.inferArgs(data.Args)
		return bl.Error
	}

	var inst types.TypeID
	params := bc.declParams[sym.Decl]
	if len(data.TypeArgs) > 0 {
		if len(data.TypeArgs) != len(params) {
			bc.errorf(diag.TypeArgCount, sp, "%q expects %d type argument(s), found %d",
				bc.name(sym.Name), len(params), len(data.TypeArgs))
			bc.inferArgs(data.Args)
			return bl.Error
		}
		args := make([]types.TypeID, len(params))
		for i, te := range data.TypeArgs {
			args[i] = bc.lowerTypeExpr(bc.ctx, te)
		}
		sub, err := types.MakeSubst(params, args)
		if err != nil {
			return bl.Error
		}
		inst = bc.in.Apply(sub, sym.Type)
	} else {
		inst = bc.instantiateNominal(sym, sp)
	}

	variant, ok := bc.in.VariantNamed(inst, rest[0])
	if !ok {
		bc.errorf(diag.TypeFieldUnknown, sp, "enum %q has no variant %q",
			bc.name(sym.Name), bc.name(rest[0]))
		bc.inferArgs(data.Args)
		return bl.Error
	}
	if len(data.Args) != 1 {
		bc.errorf(diag.TypeArityMismatch, sp, "variant %q takes one payload argument, found %d",
			bc.name(rest[0]), len(data.Args))
		bc.inferArgs(data.Args)
		return inst
	}
	got := bc.inferExpr(data.Args[0])
	if err := bc.in.Unify(got, variant.Payload); err != nil {
		bc.errorf(diag.TypeMismatch, bc.spanOf(data.Args[0]),
			"variant %q carries %s, found %s",
			bc.name(rest[0]), bc.format(variant.Payload), bc.format(got))
	}
	return inst
}

// inferMethodCall dispatches recv.name(args) through the impl table. The
// impl match binds the impl's type parameters; the method's own parameters
// get fresh variables.
func (bc *bodyChecker) inferMethodCall(data *ast.ExprCallData, calleeSpan, sp source.Span) types.TypeID {
	bl := bc.in.Builtins()
	field := bc.b.Exprs.FieldData(data.Callee)
	recv := bc.autoDeref(bc.inferExpr(field.Recv))
	bc.res.ExprTypes[data.Callee] = bl.Unit
	if bc.in.IsError(recv) {
		bc.inferArgs(data.Args)
		return bl.Error
	}

	matches := bc.tbl.Impls.ResolveAny(bc.in, recv)
	symID, implSub := bc.methodIn(matches, field.Name)
	if !symID.IsValid() {
		bc.errorf(diag.NameNotFound, calleeSpan, "%s has no method %q",
			bc.format(recv), bc.name(field.Name))
		bc.inferArgs(data.Args)
		return bl.Error
	}
	sym := bc.tbl.Symbols.Get(symID)
	if sym == nil || sym.Sig == nil {
		return bl.Error
	}

	// Combine the impl binding with fresh variables for the method's own
	// parameters. Impl parameters lead the method's TypeParams list.
	args := make([]types.TypeID, len(sym.Sig.TypeParams))
	sub := types.NewSubst()
	for i, p := range sym.Sig.TypeParams {
		if bound, ok := implSub.Lookup(p); ok {
			args[i] = bound
		} else {
			args[i] = bc.in.FreshVar(sp)
		}
		if err := sub.Bind(p, args[i]); err != nil {
			return bl.Error
		}
	}
	sig := sym.Sig.Instantiate(bc.in, sub)

	params := sig.Params
	if sig.HasSelf {
		if len(params) > 0 {
			if err := bc.in.Unify(recv, params[0]); err != nil {
				bc.errorf(diag.TypeMismatch, calleeSpan, "receiver has type %s, method expects %s",
					bc.format(recv), bc.format(params[0]))
			}
			params = params[1:]
		}
	}
	if len(data.Args) != len(params) {
		bc.errorf(diag.NameArityOverload, sp, "method %q takes %d argument(s), found %d",
			bc.name(field.Name), len(params), len(data.Args))
		bc.inferArgs(data.Args)
		return sig.Result
	}
	for i, argExpr := range data.Args {
		got := bc.inferExpr(argExpr)
		if err := bc.in.Unify(got, params[i]); err != nil {
			bc.errorf(diag.TypeMismatch, bc.spanOf(argExpr),
				"argument %d of %q has type %s, expected %s",
				i+1, bc.name(field.Name), bc.format(got), bc.format(params[i]))
		}
	}
	if len(args) > 0 {
		bc.pendInstantiation(symID, args, sp)
	}
	return sig.Result
}

// methodIn searches the matched impls for a method. More than one
// provider for the same name is the ambiguity that overlap checking
// reports at registration; here the first wins so checking continues.
func (bc *bodyChecker) methodIn(matches []namespace.ImplMatch, name source.StringID) (namespace.SymbolID, *types.Subst) {
	for _, m := range matches {
		entry := bc.tbl.Impls.Get(m.ID)
		if entry == nil {
			continue
		}
		if symID, ok := entry.Methods[name]; ok {
			return symID, m.Subst
		}
	}
	return namespace.NoSymbolID, nil
}

func (bc *bodyChecker) inferArgs(args []ast.ExprID) {
	for _, arg := range args {
		bc.inferExpr(arg)
	}
}

// pendInstantiation defers the recorder callback until finalize, when
// inference variables in the argument list have settled.
func (bc *bodyChecker) pendInstantiation(sym namespace.SymbolID, args []types.TypeID, sp source.Span) {
	if bc.recorder == nil {
		return
	}
	bc.pendingInsts = append(bc.pendingInsts, pendingInst{
		Sym: sym, Args: args, At: sp, Caller: bc.self,
	})
}

type pendingInst struct {
	Sym    namespace.SymbolID
	Args   []types.TypeID
	At     source.Span
	Caller namespace.SymbolID
}
