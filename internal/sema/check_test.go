package sema

import (
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// fixture assembles one module and runs Check over it.
type fixture struct {
	t   *testing.T
	b   *ast.Builder
	mod ast.ModuleID
	bag *diag.Bag
	at  uint32
}

func newFixture(t *testing.T, kind ast.ProgramKind) *fixture {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, nil)
	f := &fixture{t: t, b: b, bag: diag.NewBag(64)}
	f.mod = b.NewModule(kind, "main", f.span())
	return f
}

func (f *fixture) span() source.Span {
	f.at += 10
	return source.Span{File: 1, Start: f.at, End: f.at + 5}
}

func (f *fixture) named(name string, args ...ast.TypeExprID) ast.TypeExprID {
	return f.b.TypeExprs.NewNamed(f.span(), []source.StringID{f.b.Intern(name)}, args)
}

func (f *fixture) intLit(v uint64) ast.ExprID {
	return f.b.Exprs.NewIntLit(f.span(), v, 0)
}

func (f *fixture) block(stmts []ast.StmtID, tail ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewBlock(f.span(), stmts, tail)
}

func (f *fixture) addFn(name string, params [][2]any, ret ast.TypeExprID, body ast.ExprID) ast.DeclID {
	var pids []ast.ParamID
	for _, p := range params {
		pids = append(pids, f.b.Decls.NewParam(f.span(), f.b.Intern(p[0].(string)), p[1].(ast.TypeExprID)))
	}
	sp := f.span()
	decl := f.b.Decls.NewFn(sp, ast.FnDecl{
		Name:     f.b.Intern(name),
		NameSpan: sp,
		Public:   true,
		Params:   pids,
		Return:   ret,
		Body:     body,
	})
	f.b.PushDecl(f.mod, decl)
	return decl
}

func (f *fixture) addStruct(name string, fields ...[2]any) ast.DeclID {
	var fids []ast.FieldID
	for _, fl := range fields {
		fids = append(fids, f.b.Decls.NewStructField(f.span(), f.b.Intern(fl[0].(string)), fl[1].(ast.TypeExprID)))
	}
	sp := f.span()
	decl := f.b.Decls.NewStruct(sp, ast.StructDecl{
		Name: f.b.Intern(name), NameSpan: sp, Public: true, Fields: fids,
	})
	f.b.PushDecl(f.mod, decl)
	return decl
}

func (f *fixture) addConst(name string, typ ast.TypeExprID, value ast.ExprID) ast.DeclID {
	sp := f.span()
	decl := f.b.Decls.NewConst(sp, ast.ConstDecl{
		Name: f.b.Intern(name), NameSpan: sp, Public: true, Type: typ, Value: value,
	})
	f.b.PushDecl(f.mod, decl)
	return decl
}

func (f *fixture) check() Result {
	f.t.Helper()
	return Check(f.b, []ast.ModuleID{f.mod}, Options{
		Reporter: diag.BagReporter{Bag: f.bag},
	})
}

func (f *fixture) wantErrors(n int) {
	f.t.Helper()
	if got := f.bag.ErrorCount(); got != n {
		f.t.Fatalf("error count = %d, want %d; diagnostics: %v", got, n, f.bag.Items())
	}
}

func (f *fixture) wantCode(code diag.Code) {
	f.t.Helper()
	for _, d := range f.bag.Items() {
		if d.Code == code {
			return
		}
	}
	f.t.Fatalf("no diagnostic with code %s; got %v", code, f.bag.Items())
}

func TestFnBodyTypeChecks(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn double(x: u64) -> u64 { x + x }
	x := f.b.Intern("x")
	body := f.block(nil, f.b.Exprs.NewBinary(f.span(), ast.BinAdd,
		f.b.Exprs.NewPath(f.span(), x),
		f.b.Exprs.NewPath(f.span(), x)))
	f.addFn("double", [][2]any{{"x", f.named("u64")}}, f.named("u64"), body)

	res := f.check()
	f.wantErrors(0)
	got, ok := res.TypeOf(body)
	if !ok {
		t.Fatal("body has no recorded type")
	}
	if res.Types.Resolve(got) != res.Types.Builtins().U64 {
		t.Fatalf("body type = %s, want u64", res.Types.Format(f.b.Strings, got))
	}
}

func TestFnBodyReturnMismatch(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn wrong() -> u64 { true }
	tail := f.b.Exprs.NewBoolLit(f.span(), true)
	body := f.block(nil, tail)
	f.addFn("wrong", nil, f.named("u64"), body)

	f.check()
	f.wantErrors(1)
	f.wantCode(diag.TypeMismatch)
	// The mismatch points at the tail expression, not the whole block.
	want := f.b.Exprs.Get(tail).Span
	for _, d := range f.bag.Items() {
		if d.Code == diag.TypeMismatch && d.Primary != want {
			t.Fatalf("mismatch span = %v, want the tail expression at %v", d.Primary, want)
		}
	}
}

func TestNumericLiteralDefaultsToU64(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn answer() -> u64 { let n = 42; n }
	n := f.b.Intern("n")
	let := f.b.Stmts.NewLet(f.span(), n, ast.NoTypeExprID, f.intLit(42))
	tail := f.b.Exprs.NewPath(f.span(), n)
	f.addFn("answer", nil, f.named("u64"), f.block([]ast.StmtID{let}, tail))

	res := f.check()
	f.wantErrors(0)
	got, _ := res.TypeOf(tail)
	if got != res.Types.Builtins().U64 {
		t.Fatalf("defaulted literal type = %s, want u64", res.Types.Format(f.b.Strings, got))
	}
}

func TestLiteralNarrowedByAnnotation(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn small() -> u8 { let n: u8 = 7; n }
	n := f.b.Intern("n")
	let := f.b.Stmts.NewLet(f.span(), n, f.named("u8"), f.intLit(7))
	tail := f.b.Exprs.NewPath(f.span(), n)
	f.addFn("small", nil, f.named("u8"), f.block([]ast.StmtID{let}, tail))

	res := f.check()
	f.wantErrors(0)
	got, _ := res.TypeOf(tail)
	if got != res.Types.Builtins().U8 {
		t.Fatalf("narrowed literal type = %s, want u8", res.Types.Format(f.b.Strings, got))
	}
}

func TestSelfContainingStructReportsOnce(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// struct Node { next: Node }
	f.addStruct("Node", [2]any{"next", f.named("Node")})

	f.check()
	f.wantErrors(1)
	f.wantCode(diag.RecursionValueCycle)
}

func TestRefBreaksStructCycle(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// struct Node { next: &Node }
	ref := f.b.TypeExprs.NewRef(f.span(), f.named("Node"))
	f.addStruct("Node", [2]any{"next", ref})

	f.check()
	f.wantErrors(0)
}

func TestConstArrayLength(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// const N: u64 = 4; fn zeros() -> [u64; N] { ... }
	f.addConst("N", f.named("u64"), f.intLit(4))
	arr := f.b.TypeExprs.NewArray(f.span(), f.named("u64"),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("N")))
	elems := []ast.ExprID{f.intLit(0), f.intLit(0), f.intLit(0), f.intLit(0)}
	body := f.block(nil, f.b.Exprs.NewArray(f.span(), elems))
	f.addFn("zeros", nil, arr, body)

	res := f.check()
	f.wantErrors(0)
	if v, ok := res.ConstValues[f.b.Modules.Get(f.mod).Decls[0]]; !ok || v != 4 {
		t.Fatalf("const N value = %d (ok=%v), want 4", v, ok)
	}
}

func TestNonConstArrayLengthRejected(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn bad(n: u64) -> [u64; n] is ill-formed: n is not a constant.
	n := f.b.Intern("n")
	arr := f.b.TypeExprs.NewArray(f.span(), f.named("u64"),
		f.b.Exprs.NewPath(f.span(), n))
	body := f.block(nil, f.b.Exprs.NewArray(f.span(), nil))
	f.addFn("bad", [][2]any{{"n", f.named("u64")}}, arr, body)

	f.check()
	f.wantCode(diag.ConstNonConstLen)
}

func TestStructLitMissingField(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	f.addStruct("Point",
		[2]any{"x", f.named("u64")},
		[2]any{"y", f.named("u64")})
	lit := f.b.Exprs.NewStructLit(f.span(), []source.StringID{f.b.Intern("Point")}, nil,
		[]ast.FieldInit{{Name: f.b.Intern("x"), Value: f.intLit(1), Span: f.span()}})
	f.addFn("make", nil, f.named("Point"), f.block(nil, lit))

	f.check()
	f.wantErrors(1)
	f.wantCode(diag.TypeFieldMissing)
}

func TestStructLitUnknownField(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	f.addStruct("Point", [2]any{"x", f.named("u64")})
	lit := f.b.Exprs.NewStructLit(f.span(), []source.StringID{f.b.Intern("Point")}, nil,
		[]ast.FieldInit{
			{Name: f.b.Intern("x"), Value: f.intLit(1), Span: f.span()},
			{Name: f.b.Intern("z"), Value: f.intLit(2), Span: f.span()},
		})
	f.addFn("make", nil, f.named("Point"), f.block(nil, lit))

	f.check()
	f.wantCode(diag.TypeFieldUnknown)
}

func TestFieldAccessThroughRef(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	f.addStruct("Point", [2]any{"x", f.named("u64")})
	// fn read(p: &Point) -> u64 { p.x }
	ref := f.b.TypeExprs.NewRef(f.span(), f.named("Point"))
	p := f.b.Intern("p")
	body := f.block(nil, f.b.Exprs.NewField(f.span(), f.b.Exprs.NewPath(f.span(), p), f.b.Intern("x")))
	f.addFn("read", [][2]any{{"p", ref}}, f.named("u64"), body)

	f.check()
	f.wantErrors(0)
}

func TestIfBranchesMustAgree(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	cond := f.b.Exprs.NewBoolLit(f.span(), true)
	then := f.block(nil, f.intLit(1))
	els := f.block(nil, f.b.Exprs.NewBoolLit(f.span(), false))
	ife := f.b.Exprs.NewIf(f.span(), cond, then, els)
	f.addFn("pick", nil, f.named("u64"), f.block(nil, ife))

	f.check()
	f.wantCode(diag.TypeMismatch)
}

func TestIfConditionMustBeBool(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	ife := f.b.Exprs.NewIf(f.span(), f.intLit(1),
		f.block(nil, ast.NoExprID), ast.NoExprID)
	f.addFn("oops", nil, ast.NoTypeExprID, f.block(nil, ife))

	f.check()
	f.wantCode(diag.TypeCondNotBool)
}

func TestMatchNeedsCatchAll(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	x := f.b.Intern("x")
	arm := f.b.Exprs.NewArm(f.span(),
		f.b.Patterns.NewExpr(f.span(), f.intLit(0)),
		f.intLit(1))
	m := f.b.Exprs.NewMatch(f.span(), f.b.Exprs.NewPath(f.span(), x), []ast.ArmID{arm})
	f.addFn("classify", [][2]any{{"x", f.named("u64")}}, f.named("u64"), f.block(nil, m))

	f.check()
	f.wantCode(diag.TypePatternMismatch)
}

func TestMatchWithCatchAll(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	x := f.b.Intern("x")
	lit := f.b.Exprs.NewArm(f.span(),
		f.b.Patterns.NewExpr(f.span(), f.intLit(0)),
		f.intLit(1))
	wild := f.b.Exprs.NewArm(f.span(),
		f.b.Patterns.NewWildcard(f.span()),
		f.intLit(2))
	m := f.b.Exprs.NewMatch(f.span(), f.b.Exprs.NewPath(f.span(), x), []ast.ArmID{lit, wild})
	f.addFn("classify", [][2]any{{"x", f.named("u64")}}, f.named("u64"), f.block(nil, m))

	f.check()
	f.wantErrors(0)
}

func TestMatchPatternTypeMismatch(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// A bool literal pattern against a u64 scrutinee: exactly one
	// mismatch, reported at the pattern.
	x := f.b.Intern("x")
	patSpan := f.span()
	bad := f.b.Exprs.NewArm(f.span(),
		f.b.Patterns.NewExpr(patSpan, f.b.Exprs.NewBoolLit(f.span(), true)),
		f.intLit(1))
	wild := f.b.Exprs.NewArm(f.span(),
		f.b.Patterns.NewWildcard(f.span()),
		f.intLit(2))
	m := f.b.Exprs.NewMatch(f.span(), f.b.Exprs.NewPath(f.span(), x), []ast.ArmID{bad, wild})
	f.addFn("classify", [][2]any{{"x", f.named("u64")}}, f.named("u64"), f.block(nil, m))

	f.check()
	f.wantErrors(1)
	found := 0
	for _, d := range f.bag.Items() {
		if d.Code == diag.TypePatternMismatch {
			found++
			if d.Primary != patSpan {
				t.Fatalf("mismatch span = %v, want the pattern at %v", d.Primary, patSpan)
			}
		}
	}
	if found != 1 {
		t.Fatalf("pattern mismatch reported %d times, want 1", found)
	}
}

func TestRevertClosesAnyBranch(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn guard(ok: bool) -> u64 { if ok { 1 } else { revert(9) } }
	ok := f.b.Intern("ok")
	call := f.b.Exprs.NewCall(f.span(),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("revert")),
		nil, []ast.ExprID{f.intLit(9)})
	ife := f.b.Exprs.NewIf(f.span(),
		f.b.Exprs.NewPath(f.span(), ok),
		f.block(nil, f.intLit(1)),
		f.block(nil, call))
	f.addFn("guard", [][2]any{{"ok", f.named("bool")}}, f.named("u64"), f.block(nil, ife))

	f.check()
	f.wantErrors(0)
}

func TestUnknownNameInBody(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	body := f.block(nil, f.b.Exprs.NewPath(f.span(), f.b.Intern("ghost")))
	f.addFn("haunted", nil, ast.NoTypeExprID, body)

	f.check()
	f.wantCode(diag.NameNotFound)
}

func TestCallArgumentMismatch(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	f.addFn("takes", [][2]any{{"b", f.named("bool")}}, ast.NoTypeExprID,
		f.block(nil, ast.NoExprID))
	call := f.b.Exprs.NewCall(f.span(),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("takes")),
		nil, []ast.ExprID{f.intLit(3)})
	f.addFn("caller", nil, ast.NoTypeExprID, f.block([]ast.StmtID{
		f.b.Stmts.NewExpr(f.span(), call),
	}, ast.NoExprID))

	f.check()
	f.wantCode(diag.TypeMismatch)
}

func TestOverloadPickedByArity(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// Two fns named pack, one and two params; a two-arg call picks the
	// second.
	f.addFn("pack", [][2]any{{"a", f.named("u64")}}, f.named("u64"),
		f.block(nil, f.b.Exprs.NewPath(f.span(), f.b.Intern("a"))))
	f.addFn("pack", [][2]any{{"a", f.named("u64")}, {"b", f.named("u64")}}, f.named("u64"),
		f.block(nil, f.b.Exprs.NewPath(f.span(), f.b.Intern("a"))))
	call := f.b.Exprs.NewCall(f.span(),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("pack")),
		nil, []ast.ExprID{f.intLit(1), f.intLit(2)})
	f.addFn("caller", nil, f.named("u64"), f.block(nil, call))

	f.check()
	f.wantErrors(0)
}

func TestMutualRecursionLegal(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// fn ping(n: u64) -> u64 { pong(n) }   fn pong(n: u64) -> u64 { ping(n) }
	n := f.b.Intern("n")
	callPong := f.b.Exprs.NewCall(f.span(),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("pong")),
		nil, []ast.ExprID{f.b.Exprs.NewPath(f.span(), n)})
	f.addFn("ping", [][2]any{{"n", f.named("u64")}}, f.named("u64"), f.block(nil, callPong))
	callPing := f.b.Exprs.NewCall(f.span(),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("ping")),
		nil, []ast.ExprID{f.b.Exprs.NewPath(f.span(), n)})
	f.addFn("pong", [][2]any{{"n", f.named("u64")}}, f.named("u64"), f.block(nil, callPing))

	f.check()
	f.wantErrors(0)
}

func TestConstInitializerMustBeConstant(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	f.addFn("runtime", nil, f.named("u64"), f.block(nil, f.intLit(5)))
	call := f.b.Exprs.NewCall(f.span(),
		f.b.Exprs.NewPath(f.span(), f.b.Intern("runtime")), nil, nil)
	f.addConst("BAD", f.named("u64"), call)

	f.check()
	f.wantCode(diag.ConstRequired)
}

func TestConstFolding(t *testing.T) {
	f := newFixture(t, ast.ProgramLibrary)
	// const A: u64 = 6; const B: u64 = A * 7;
	a := f.addConst("A", f.named("u64"), f.intLit(6))
	b := f.addConst("B", f.named("u64"),
		f.b.Exprs.NewBinary(f.span(), ast.BinMul,
			f.b.Exprs.NewPath(f.span(), f.b.Intern("A")),
			f.intLit(7)))

	res := f.check()
	f.wantErrors(0)
	if res.ConstValues[a] != 6 || res.ConstValues[b] != 42 {
		t.Fatalf("const values A=%d B=%d, want 6 and 42", res.ConstValues[a], res.ConstValues[b])
	}
}
