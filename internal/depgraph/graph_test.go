package depgraph

import (
	"slices"
	"strings"
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

type fixture struct {
	b   *ast.Builder
	in  *types.Interner
	tbl *namespace.Table
	mod ast.ModuleID
	at  uint32
}

func newFixture() *fixture {
	b := ast.NewBuilder(ast.Hints{}, nil)
	in := types.NewInterner()
	tbl := namespace.NewTable(namespace.Hints{}, b.Strings, in)
	f := &fixture{b: b, in: in, tbl: tbl}
	f.mod = b.NewModule(ast.ProgramLibrary, "lib", f.span())
	return f
}

func (f *fixture) span() source.Span {
	f.at += 10
	return source.Span{File: 1, Start: f.at, End: f.at + 5}
}

func (f *fixture) named(path ...string) ast.TypeExprID {
	ids := make([]source.StringID, len(path))
	for i, seg := range path {
		ids[i] = f.b.Intern(seg)
	}
	return f.b.TypeExprs.NewNamed(f.span(), ids, nil)
}

func (f *fixture) addStruct(name string, fields ...[2]any) ast.DeclID {
	fieldIDs := make([]ast.FieldID, 0, len(fields))
	for _, fd := range fields {
		fieldIDs = append(fieldIDs,
			f.b.Decls.NewStructField(f.span(), f.b.Intern(fd[0].(string)), fd[1].(ast.TypeExprID)))
	}
	decl := f.b.Decls.NewStruct(f.span(), ast.StructDecl{
		Name:     f.b.Intern(name),
		NameSpan: f.span(),
		Fields:   fieldIDs,
	})
	f.b.PushDecl(f.mod, decl)
	return decl
}

func (f *fixture) addConst(name string, value ast.ExprID) ast.DeclID {
	decl := f.b.Decls.NewConst(f.span(), ast.ConstDecl{
		Name:     f.b.Intern(name),
		NameSpan: f.span(),
		Type:     f.named("u64"),
		Value:    value,
	})
	f.b.PushDecl(f.mod, decl)
	return decl
}

func (f *fixture) addFn(name string, body ast.ExprID) ast.DeclID {
	decl := f.b.Decls.NewFn(f.span(), ast.FnDecl{
		Name:     f.b.Intern(name),
		NameSpan: f.span(),
		Body:     body,
	})
	f.b.PushDecl(f.mod, decl)
	return decl
}

func (f *fixture) build(t *testing.T) (*Graph, *Topo, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(20)
	rep := diag.BagReporter{Bag: bag}
	namespace.DeclareModules(f.b, f.tbl, []ast.ModuleID{f.mod}, rep)
	if bag.HasErrors() {
		t.Fatalf("declare pass failed: %+v", bag.Items())
	}
	g := Build(f.b, f.tbl, []ast.ModuleID{f.mod})
	topo := Toposort(g)
	ReportCycles(g, topo, f.b.Strings, rep)
	return g, topo, bag
}

func TestSelfContainmentByValue(t *testing.T) {
	f := newFixture()
	f.addStruct("Node", [2]any{"next", f.named("Node")})

	_, topo, bag := f.build(t)
	if !topo.Cyclic {
		t.Fatal("self-containing struct must form a value cycle")
	}
	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", bag.ErrorCount())
	}
	d := bag.Items()[0]
	if d.Code != diag.RecursionValueCycle {
		t.Fatalf("code = %v, want RecursionValueCycle", d.Code)
	}
	if !strings.Contains(d.Message, "Node") {
		t.Fatalf("message must name the struct: %q", d.Message)
	}
}

func TestReferenceBreaksCycle(t *testing.T) {
	f := newFixture()
	ref := f.b.TypeExprs.NewRef(f.span(), f.named("Node"))
	f.addStruct("Node", [2]any{"next", ref})

	g, topo, bag := f.build(t)
	if topo.Cyclic {
		t.Fatal("self-reference behind a ref must not be a value cycle")
	}
	if bag.ErrorCount() != 0 {
		t.Fatalf("errors = %d, want 0", bag.ErrorCount())
	}
	if len(topo.Order) != g.Len() {
		t.Fatal("every node must be scheduled")
	}
}

func TestMutualValueCycleNamesBothSides(t *testing.T) {
	f := newFixture()
	f.addStruct("Alpha", [2]any{"b", f.named("Beta")})
	f.addStruct("Beta", [2]any{"a", f.named("Alpha")})

	_, topo, bag := f.build(t)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("cycles = %v, want both structs", topo.Cycles)
	}
	if bag.ErrorCount() != 2 {
		t.Fatalf("errors = %d, want 2", bag.ErrorCount())
	}
	msg := bag.Items()[0].Message
	if !strings.Contains(msg, "Alpha") || !strings.Contains(msg, "Beta") {
		t.Fatalf("cycle summary must name both: %q", msg)
	}
}

func TestDisjointValueCyclesReportOwnMembers(t *testing.T) {
	f := newFixture()
	f.addStruct("Alpha", [2]any{"b", f.named("Beta")})
	f.addStruct("Beta", [2]any{"a", f.named("Alpha")})
	f.addStruct("Gamma", [2]any{"d", f.named("Delta")})
	f.addStruct("Delta", [2]any{"g", f.named("Gamma")})

	_, topo, bag := f.build(t)
	if !topo.Cyclic || len(topo.Cycles) != 4 {
		t.Fatalf("cycles = %v, want all four structs", topo.Cycles)
	}
	if bag.ErrorCount() != 4 {
		t.Fatalf("errors = %d, want 4", bag.ErrorCount())
	}
	// Every message names exactly its own cycle, never the other one.
	for _, d := range bag.Items() {
		first := strings.Contains(d.Message, "Alpha")
		second := strings.Contains(d.Message, "Gamma")
		if first == second {
			t.Fatalf("message mixes disjoint cycles: %q", d.Message)
		}
	}
}

func TestScheduleOrdersValueDependenciesFirst(t *testing.T) {
	f := newFixture()
	// Declared consumer-first; the schedule must still put Inner before
	// Outer.
	outer := f.addStruct("Outer", [2]any{"i", f.named("Inner")})
	inner := f.addStruct("Inner", [2]any{"x", f.named("u64")})

	g, topo, bag := f.build(t)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	outerNode, _ := g.NodeFor(outer)
	innerNode, _ := g.NodeFor(inner)
	oi := slices.Index(topo.Order, outerNode)
	ii := slices.Index(topo.Order, innerNode)
	if ii < 0 || oi < 0 || ii > oi {
		t.Fatalf("order = %v, Inner(%d) must precede Outer(%d)", topo.Order, innerNode, outerNode)
	}
}

func TestConstInitializerOrdering(t *testing.T) {
	f := newFixture()
	limit := f.addConst("LIMIT", f.b.Exprs.NewIntLit(f.span(), 100, 0))
	capacity := f.addConst("CAPACITY", f.b.Exprs.NewBinary(f.span(), ast.BinAdd,
		f.b.Exprs.NewPath(f.span(), f.b.Intern("LIMIT")),
		f.b.Exprs.NewIntLit(f.span(), 1, 0)))

	g, topo, bag := f.build(t)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	ln, _ := g.NodeFor(limit)
	cn, _ := g.NodeFor(capacity)
	if slices.Index(topo.Order, ln) > slices.Index(topo.Order, cn) {
		t.Fatal("LIMIT must be scheduled before CAPACITY")
	}
	if len(g.ValueEdges(cn)) != 1 {
		t.Fatalf("CAPACITY value edges = %v, want exactly the LIMIT edge", g.ValueEdges(cn))
	}
}

func TestMutualCallsAreLegal(t *testing.T) {
	f := newFixture()
	callTo := func(name string) ast.ExprID {
		call := f.b.Exprs.NewCall(f.span(), f.b.Exprs.NewPath(f.span(), f.b.Intern(name)), nil, nil)
		return f.b.Exprs.NewBlock(f.span(), nil, call)
	}
	ping := f.addFn("ping", callTo("pong"))
	pong := f.addFn("pong", callTo("ping"))

	g, topo, bag := f.build(t)
	if topo.Cyclic {
		t.Fatal("mutual calls are indirect and never a value cycle")
	}
	if bag.ErrorCount() != 0 {
		t.Fatalf("errors = %d, want 0", bag.ErrorCount())
	}
	pn, _ := g.NodeFor(ping)
	qn, _ := g.NodeFor(pong)
	if len(g.IndirectEdges(pn)) != 1 || len(g.IndirectEdges(qn)) != 1 {
		t.Fatal("both calls must be recorded as indirect edges")
	}
}

func TestBatchesGroupIndependentDecls(t *testing.T) {
	f := newFixture()
	f.addStruct("A", [2]any{"x", f.named("u64")})
	f.addStruct("B", [2]any{"x", f.named("bool")})
	f.addStruct("C", [2]any{"a", f.named("A")})

	_, topo, bag := f.build(t)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if len(topo.Batches) != 2 {
		t.Fatalf("batches = %d, want 2 (A and B together, then C)", len(topo.Batches))
	}
	if len(topo.Batches[0]) != 2 {
		t.Fatalf("first batch = %v, want the two independent structs", topo.Batches[0])
	}
}
