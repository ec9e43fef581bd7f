package namespace

import (
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

func TestResolveScopeChain(t *testing.T) {
	tbl, _ := newTestTable()
	rep := diag.NopReporter{}
	root := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 200))
	inner := tbl.DeclScope(root, ast.ModuleID(1), sp(10, 80))

	outerName := tbl.Strings.Intern("LIMIT")
	outerSym, _ := tbl.Declare(root, Symbol{Name: outerName, Kind: SymbolConst, Span: sp(1, 6)}, rep)

	res := tbl.ResolvePath(inner, []source.StringID{outerName})
	if res.Status != ResolveOK || res.Sym != outerSym {
		t.Fatal("inner scope must see outer const")
	}

	// Shadowing in the inner scope wins over the chain.
	shadow, _ := tbl.Declare(inner, Symbol{Name: outerName, Kind: SymbolTypeParam, Span: sp(12, 17)}, rep)
	res = tbl.ResolvePath(inner, []source.StringID{outerName})
	if res.Sym != shadow {
		t.Fatal("inner declaration must shadow the outer one")
	}
	res = tbl.ResolvePath(root, []source.StringID{outerName})
	if res.Sym != outerSym {
		t.Fatal("outer scope must be unaffected by inner shadow")
	}
}

func TestResolveNotFound(t *testing.T) {
	tbl, _ := newTestTable()
	root := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 10))
	res := tbl.ResolvePath(root, []source.StringID{tbl.Strings.Intern("missing")})
	if res.Status != ResolveNotFound {
		t.Fatalf("status = %v, want ResolveNotFound", res.Status)
	}
	res = tbl.ResolvePath(root, nil)
	if res.Status != ResolveNotFound {
		t.Fatal("empty path must not resolve")
	}
}

func TestResolveRestSegments(t *testing.T) {
	tbl, _ := newTestTable()
	rep := diag.NopReporter{}
	root := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 100))
	enum := tbl.Strings.Intern("Option")
	variant := tbl.Strings.Intern("Some")

	sym, _ := tbl.Declare(root, Symbol{Name: enum, Kind: SymbolEnum, Span: sp(1, 7)}, rep)
	res := tbl.ResolvePath(root, []source.StringID{enum, variant})
	if res.Status != ResolveOK || res.Sym != sym {
		t.Fatal("enum head must resolve")
	}
	if len(res.Rest) != 1 || res.Rest[0] != variant {
		t.Fatal("variant segment must be left for the caller")
	}
}

func TestImportForwardsAndVisibility(t *testing.T) {
	tbl, _ := newTestTable()
	rep := diag.NopReporter{}
	libRoot := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 100))
	appRoot := tbl.ModuleRoot(ast.ModuleID(2), sp(0, 100))

	pubName := tbl.Strings.Intern("Token")
	privName := tbl.Strings.Intern("ledger")
	pubSym, _ := tbl.Declare(libRoot, Symbol{
		Name: pubName, Kind: SymbolStruct, Span: sp(1, 6),
		Flags: SymbolFlagPublic, Module: ast.ModuleID(1),
	}, rep)
	privSym, _ := tbl.Declare(libRoot, Symbol{
		Name: privName, Kind: SymbolConst, Span: sp(20, 26),
		Module: ast.ModuleID(1),
	}, rep)

	tbl.AddImport(appRoot, pubName, pubSym, sp(2, 7))
	tbl.AddImport(appRoot, privName, privSym, sp(9, 15))

	res := tbl.ResolvePath(appRoot, []source.StringID{pubName})
	if res.Status != ResolveOK || res.Sym != pubSym {
		t.Fatal("public import must forward to the target symbol")
	}
	res = tbl.ResolvePath(appRoot, []source.StringID{privName})
	if res.Status != ResolvePrivate {
		t.Fatalf("status = %v, want ResolvePrivate", res.Status)
	}
	// The owning module still sees its own private symbol.
	res = tbl.ResolvePath(libRoot, []source.StringID{privName})
	if res.Status != ResolveOK || res.Sym != privSym {
		t.Fatal("private symbol must resolve inside its module")
	}
}

func TestImportChain(t *testing.T) {
	tbl, _ := newTestTable()
	rep := diag.NopReporter{}
	m1 := tbl.ModuleRoot(ast.ModuleID(1), sp(0, 100))
	m2 := tbl.ModuleRoot(ast.ModuleID(2), sp(0, 100))
	m3 := tbl.ModuleRoot(ast.ModuleID(3), sp(0, 100))

	name := tbl.Strings.Intern("Asset")
	target, _ := tbl.Declare(m1, Symbol{
		Name: name, Kind: SymbolStruct, Span: sp(1, 6),
		Flags: SymbolFlagPublic, Module: ast.ModuleID(1),
	}, rep)
	hop := tbl.AddImport(m2, name, target, sp(2, 7))
	tbl.AddImport(m3, name, hop, sp(2, 7))

	res := tbl.ResolvePath(m3, []source.StringID{name})
	if res.Status != ResolveOK || res.Sym != target {
		t.Fatal("re-export chain must land on the original symbol")
	}
}
