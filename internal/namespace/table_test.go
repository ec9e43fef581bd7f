package namespace

import (
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

func newTestTable() (*Table, *types.Interner) {
	in := types.NewInterner()
	return NewTable(Hints{}, nil, in), in
}

func sp(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

func TestPreludeBuiltins(t *testing.T) {
	tbl, in := newTestTable()
	bl := in.Builtins()

	cases := []struct {
		name string
		typ  types.TypeID
	}{
		{"u8", bl.U8},
		{"u64", bl.U64},
		{"bool", bl.Bool},
		{"str", bl.String},
	}
	for _, tc := range cases {
		res := tbl.ResolvePath(tbl.Prelude(), []source.StringID{tbl.Strings.Intern(tc.name)})
		if res.Status != ResolveOK {
			t.Fatalf("builtin %q not resolved", tc.name)
		}
		sym := tbl.Symbols.Get(res.Sym)
		if sym.Kind != SymbolBuiltinType {
			t.Fatalf("builtin %q kind = %v", tc.name, sym.Kind)
		}
		if sym.Type != tc.typ {
			t.Fatalf("builtin %q type = %d, want %d", tc.name, sym.Type, tc.typ)
		}
	}

	res := tbl.ResolvePath(tbl.Prelude(), []source.StringID{tbl.Strings.Intern("revert")})
	if res.Status != ResolveOK {
		t.Fatal("revert not in prelude")
	}
	sym := tbl.Symbols.Get(res.Sym)
	if sym.Sig == nil || sym.Sig.Result != bl.Never {
		t.Fatal("revert must return never")
	}
}

func TestDeclareCollision(t *testing.T) {
	tbl, _ := newTestTable()
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	root := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 100))
	name := tbl.Strings.Intern("Point")

	first, ok := tbl.Declare(root, Symbol{Name: name, Kind: SymbolStruct, Span: sp(1, 6)}, rep)
	if !ok || !first.IsValid() {
		t.Fatal("first declaration must succeed")
	}
	second, ok := tbl.Declare(root, Symbol{Name: name, Kind: SymbolConst, Span: sp(20, 25)}, rep)
	if ok || second.IsValid() {
		t.Fatal("colliding declaration must fail")
	}
	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", bag.ErrorCount())
	}
	d := bag.Items()[0]
	if d.Code != diag.NameCollision {
		t.Fatalf("code = %v, want NameCollision", d.Code)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != sp(1, 6) {
		t.Fatal("collision note must point at the previous declaration")
	}
}

func TestDeclareFunctionOverload(t *testing.T) {
	tbl, _ := newTestTable()
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	root := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 100))
	name := tbl.Strings.Intern("transfer")

	if _, ok := tbl.Declare(root, Symbol{Name: name, Kind: SymbolFunction, Arity: 1, Span: sp(1, 9)}, rep); !ok {
		t.Fatal("arity-1 declaration failed")
	}
	if _, ok := tbl.Declare(root, Symbol{Name: name, Kind: SymbolFunction, Arity: 2, Span: sp(30, 38)}, rep); !ok {
		t.Fatal("arity-2 overload must be legal")
	}
	if _, ok := tbl.Declare(root, Symbol{Name: name, Kind: SymbolFunction, Arity: 1, Span: sp(60, 68)}, rep); ok {
		t.Fatal("duplicate arity must collide")
	}
	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", bag.ErrorCount())
	}

	res := tbl.ResolvePath(root, []source.StringID{name})
	if res.Status != ResolveOK {
		t.Fatal("overload set not resolved")
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(res.Candidates))
	}
}

func TestModuleRootStable(t *testing.T) {
	tbl, _ := newTestTable()
	a := tbl.ModuleRoot(ast.ModuleID(3), sp(0, 10))
	b := tbl.ModuleRoot(ast.ModuleID(3), sp(0, 10))
	if a != b {
		t.Fatal("module root must be created once")
	}
	if tbl.Scopes.Get(a).Parent != tbl.Prelude() {
		t.Fatal("module roots chain to the prelude")
	}
}
