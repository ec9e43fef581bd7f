package mono

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/sema"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// harness builds one module, runs sema with a recorder, and schedules.
type harness struct {
	t   *testing.T
	b   *ast.Builder
	mod ast.ModuleID
	bag *diag.Bag
	at  uint32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, nil)
	h := &harness{t: t, b: b, bag: diag.NewBag(64)}
	h.mod = b.NewModule(ast.ProgramLibrary, "main", h.span())
	return h
}

func (h *harness) span() source.Span {
	h.at += 10
	return source.Span{File: 1, Start: h.at, End: h.at + 5}
}

func (h *harness) named(name string, args ...ast.TypeExprID) ast.TypeExprID {
	return h.b.TypeExprs.NewNamed(h.span(), []source.StringID{h.b.Intern(name)}, args)
}

func (h *harness) fn(name string, typeParams []string, params [][2]any, ret ast.TypeExprID, body ast.ExprID) ast.DeclID {
	var tps []ast.TypeParamID
	for _, tp := range typeParams {
		tps = append(tps, h.b.Decls.NewTypeParam(h.span(), h.b.Intern(tp)))
	}
	var pids []ast.ParamID
	for _, p := range params {
		pids = append(pids, h.b.Decls.NewParam(h.span(), h.b.Intern(p[0].(string)), p[1].(ast.TypeExprID)))
	}
	sp := h.span()
	decl := h.b.Decls.NewFn(sp, ast.FnDecl{
		Name: h.b.Intern(name), NameSpan: sp, Public: true,
		TypeParams: tps, Params: pids, Return: ret, Body: body,
	})
	h.b.PushDecl(h.mod, decl)
	return decl
}

func (h *harness) call(name string, args ...ast.ExprID) ast.ExprID {
	return h.b.Exprs.NewCall(h.span(),
		h.b.Exprs.NewPath(h.span(), h.b.Intern(name)), nil, args)
}

func (h *harness) path(name string) ast.ExprID {
	return h.b.Exprs.NewPath(h.span(), h.b.Intern(name))
}

func (h *harness) block(tail ast.ExprID) ast.ExprID {
	return h.b.Exprs.NewBlock(h.span(), nil, tail)
}

func (h *harness) schedule(maxDepth int) (*Program, sema.Result, *InstantiationMap) {
	h.t.Helper()
	m := NewInstantiationMap()
	res := sema.Check(h.b, []ast.ModuleID{h.mod}, sema.Options{
		Reporter: diag.BagReporter{Bag: h.bag},
		Recorder: NewRecorder(m),
	})
	if h.bag.HasErrors() {
		h.t.Fatalf("sema reported errors: %v", h.bag.Items())
	}
	prog := Schedule(&res, m, Options{
		MaxDepth: maxDepth,
		Reporter: diag.BagReporter{Bag: h.bag},
	})
	return prog, res, m
}

func (h *harness) addIdentity() {
	h.fn("identity", []string{"T"},
		[][2]any{{"x", h.named("T")}}, h.named("T"),
		h.block(h.path("x")))
}

func TestScheduleRootInstances(t *testing.T) {
	h := newHarness(t)
	h.addIdentity()
	// Two distinct argument types from a non-generic caller give two
	// instances.
	callU64 := h.call("identity", h.b.Exprs.NewIntLit(h.span(), 1, 64))
	callBool := h.call("identity", h.b.Exprs.NewBoolLit(h.span(), true))
	h.fn("use_both", nil, nil, ast.NoTypeExprID,
		h.b.Exprs.NewBlock(h.span(), []ast.StmtID{
			h.b.Stmts.NewExpr(h.span(), callU64),
			h.b.Stmts.NewExpr(h.span(), callBool),
		}, ast.NoExprID))

	prog, res, _ := h.schedule(0)
	if prog.Len() != 2 {
		t.Fatalf("scheduled %d instances, want 2", prog.Len())
	}
	bl := res.Types.Builtins()
	seen := map[string]bool{}
	for _, key := range prog.Order {
		inst := prog.Get(key)
		if len(inst.Args) != 1 {
			t.Fatalf("instance has %d args, want 1", len(inst.Args))
		}
		switch inst.Args[0] {
		case bl.U64, bl.Bool:
			seen[res.Types.Format(h.b.Strings, inst.Args[0])] = true
		default:
			t.Fatalf("unexpected instance arg %s", res.Types.Format(h.b.Strings, inst.Args[0]))
		}
	}
	if !seen["u64"] || !seen["bool"] {
		t.Fatalf("instances = %v, want u64 and bool", seen)
	}
}

func TestScheduleDedupesRepeatedDemand(t *testing.T) {
	h := newHarness(t)
	h.addIdentity()
	a := h.call("identity", h.b.Exprs.NewIntLit(h.span(), 1, 64))
	b := h.call("identity", h.b.Exprs.NewIntLit(h.span(), 2, 64))
	h.fn("twice", nil, nil, ast.NoTypeExprID,
		h.b.Exprs.NewBlock(h.span(), []ast.StmtID{
			h.b.Stmts.NewExpr(h.span(), a),
			h.b.Stmts.NewExpr(h.span(), b),
		}, ast.NoExprID))

	prog, _, _ := h.schedule(0)
	if prog.Len() != 1 {
		t.Fatalf("scheduled %d instances, want 1", prog.Len())
	}
	inst := prog.Get(prog.Order[0])
	if len(inst.Sites) != 2 {
		t.Fatalf("instance has %d sites, want 2", len(inst.Sites))
	}
}

func TestScheduleTransitiveExpansion(t *testing.T) {
	h := newHarness(t)
	h.addIdentity()
	// fn outer<T>(x: T) -> T { identity(x) } demands identity<T>; the
	// concrete demand appears only when outer itself is instantiated.
	h.fn("outer", []string{"T"},
		[][2]any{{"x", h.named("T")}}, h.named("T"),
		h.block(h.call("identity", h.path("x"))))
	root := h.call("outer", h.b.Exprs.NewBoolLit(h.span(), true))
	h.fn("main_like", nil, nil, h.named("bool"), h.block(root))

	prog, res, _ := h.schedule(0)
	if prog.Len() != 2 {
		t.Fatalf("scheduled %d instances, want outer<bool> and identity<bool>", prog.Len())
	}
	bl := res.Types.Builtins()
	// Emit order is callee-first: the transitive identity<bool> precedes
	// the outer<bool> instance that requires it.
	child := prog.Get(prog.Order[0])
	if child == nil || child.Args[0] != bl.Bool || child.Depth != 2 {
		t.Fatalf("first emitted instance = %+v, want identity<bool> at depth 2", child)
	}
	outer := prog.Get(prog.Order[1])
	if outer.Args[0] != bl.Bool || outer.Depth != 1 {
		t.Fatalf("root instance arg = %s, want bool at depth 1", res.Types.Format(h.b.Strings, outer.Args[0]))
	}
	if len(outer.Requires) != 1 || outer.Requires[0] != child.Key {
		t.Fatalf("root requires %v, want the identity<bool> instance", outer.Requires)
	}
}

func TestScheduleEmitOrderCalleeFirst(t *testing.T) {
	h := newHarness(t)
	h.addIdentity()
	// A three-deep chain: wrap<T> calls outer<T> calls identity<T>. Each
	// instance must be emitted after the instance it requires.
	h.fn("outer", []string{"T"},
		[][2]any{{"x", h.named("T")}}, h.named("T"),
		h.block(h.call("identity", h.path("x"))))
	h.fn("wrap", []string{"T"},
		[][2]any{{"x", h.named("T")}}, h.named("T"),
		h.block(h.call("outer", h.path("x"))))
	root := h.call("wrap", h.b.Exprs.NewIntLit(h.span(), 7, 64))
	h.fn("main_like", nil, nil, h.named("u64"), h.block(root))

	prog, _, _ := h.schedule(0)
	if prog.Len() != 3 {
		t.Fatalf("scheduled %d instances, want 3", prog.Len())
	}
	pos := make(map[InstKey]int, prog.Len())
	for i, key := range prog.Order {
		pos[key] = i
	}
	for _, key := range prog.Order {
		inst := prog.Get(key)
		for _, req := range inst.Requires {
			if req == key {
				continue
			}
			if pos[req] >= pos[key] {
				t.Fatalf("instance %v emitted before its requirement %v", key, req)
			}
		}
	}
}

func TestScheduleUnboundedRecursionReported(t *testing.T) {
	h := newHarness(t)
	// fn grow<T>(x: T) -> () { grow((x, x)) } demands itself at an ever
	// larger tuple; the depth bound must cut this off.
	pair := h.b.Exprs.NewTuple(h.span(), []ast.ExprID{h.path("x"), h.path("x")})
	h.fn("grow", []string{"T"},
		[][2]any{{"x", h.named("T")}}, ast.NoTypeExprID,
		h.b.Exprs.NewBlock(h.span(), []ast.StmtID{
			h.b.Stmts.NewExpr(h.span(), h.b.Exprs.NewCall(h.span(),
				h.path("grow"), nil, []ast.ExprID{pair})),
		}, ast.NoExprID))
	seed := h.call("grow", h.b.Exprs.NewIntLit(h.span(), 1, 64))
	h.fn("kick", nil, nil, ast.NoTypeExprID,
		h.b.Exprs.NewBlock(h.span(), []ast.StmtID{
			h.b.Stmts.NewExpr(h.span(), seed),
		}, ast.NoExprID))

	m := NewInstantiationMap()
	res := sema.Check(h.b, []ast.ModuleID{h.mod}, sema.Options{
		Reporter: diag.BagReporter{Bag: h.bag},
		Recorder: NewRecorder(m),
	})
	if h.bag.HasErrors() {
		t.Fatalf("sema reported errors: %v", h.bag.Items())
	}
	prog := Schedule(&res, m, Options{
		MaxDepth: 8,
		Reporter: diag.BagReporter{Bag: h.bag},
	})

	found := false
	for _, d := range h.bag.Items() {
		if d.Code == diag.RecursionUnboundInst {
			found = true
		}
	}
	if !found {
		t.Fatalf("no RecursionUnboundInst diagnostic; scheduled %d instances", prog.Len())
	}
	if prog.Len() > 8 {
		t.Fatalf("scheduled %d instances past the depth bound", prog.Len())
	}
}

func TestScheduleIgnoresOpenArgs(t *testing.T) {
	h := newHarness(t)
	h.addIdentity()
	// Inside a generic caller the demand stays parameterized; with no
	// concrete instantiation of the caller nothing is scheduled.
	h.fn("outer", []string{"T"},
		[][2]any{{"x", h.named("T")}}, h.named("T"),
		h.block(h.call("identity", h.path("x"))))

	prog, _, m := h.schedule(0)
	if m.Len() != 1 {
		t.Fatalf("recorded %d entries, want the parameterized demand", m.Len())
	}
	if prog.Len() != 0 {
		t.Fatalf("scheduled %d instances, want 0", prog.Len())
	}
}

func TestManifestDump(t *testing.T) {
	h := newHarness(t)
	h.addIdentity()
	call := h.call("identity", h.b.Exprs.NewBoolLit(h.span(), true))
	h.fn("use_it", nil, nil, h.named("bool"), h.block(call))

	prog, res, _ := h.schedule(0)

	var buf bytes.Buffer
	fs := source.NewFileSet()
	// Harness spans use file ID 1; ID 0 is taken by a placeholder.
	fs.AddVirtual("lib.sw", nil)
	fs.AddVirtual("main.sw", bytes.Repeat([]byte("x\n"), 512))
	if err := Dump(&buf, prog, &res, fs, DumpOptions{Mangled: true}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "fn identity<bool>") {
		t.Fatalf("manifest missing instance line:\n%s", out)
	}
	if !strings.Contains(out, "caller=use_it") {
		t.Fatalf("manifest missing caller attribution:\n%s", out)
	}
	if !strings.Contains(out, "mangle ") {
		t.Fatalf("manifest missing mangled name:\n%s", out)
	}
}
