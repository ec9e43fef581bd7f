package namespace

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// Hints provide optional capacity suggestions for the namespace arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates the namespace arenas and shared resources of one
// compilation. It is never shared between compilations.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	Impls   *ImplTable

	prelude ScopeID
	modRoot map[ast.ModuleID]ScopeID
	// storage is the per-module storage-field namespace. Storage fields
	// are reachable only through storage.<field>, so they never collide
	// with value names in the module scope.
	storage map[ast.ModuleID]map[source.StringID]SymbolID
}

// NewTable builds a fresh table with the prelude seeded from the type
// interner's builtins. If strings is nil a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner, in *types.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
		Impls:   NewImplTable(),
		modRoot: make(map[ast.ModuleID]ScopeID),
		storage: make(map[ast.ModuleID]map[source.StringID]SymbolID),
	}
	t.prelude = t.Scopes.New(ScopePrelude, NoScopeID, ast.NoModuleID, source.Span{})
	if in != nil {
		t.seedPrelude(in)
	}
	return t
}

// Prelude returns the implicit outermost scope.
func (t *Table) Prelude() ScopeID {
	return t.prelude
}

// ModuleRoot returns (and creates if needed) the root scope of a module.
// Module roots chain to the prelude so built-ins resolve everywhere.
func (t *Table) ModuleRoot(module ast.ModuleID, span source.Span) ScopeID {
	if scope, ok := t.modRoot[module]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopeModule, t.prelude, module, span)
	t.modRoot[module] = scope
	return scope
}

// DeclScope allocates a scope for one declaration's generic parameters.
func (t *Table) DeclScope(parent ScopeID, module ast.ModuleID, span source.Span) ScopeID {
	return t.Scopes.New(ScopeDecl, parent, module, span)
}

// insert registers the symbol under its name in the scope's index.
func (t *Table) insert(scope ScopeID, id SymbolID) {
	sc := t.Scopes.Get(scope)
	sym := t.Symbols.Get(id)
	if sc == nil || sym == nil {
		return
	}
	sym.Scope = scope
	sc.NameIndex[sym.Name] = append(sc.NameIndex[sym.Name], id)
	sc.Symbols = append(sc.Symbols, id)
}

// DeclareStorageField declares a field into the module's storage
// namespace. Only another storage field of the same name collides; value
// names in the module scope are a separate namespace.
func (t *Table) DeclareStorageField(module ast.ModuleID, sym Symbol, reporter diag.Reporter) (SymbolID, bool) {
	fields := t.storage[module]
	if fields == nil {
		fields = make(map[source.StringID]SymbolID)
		t.storage[module] = fields
	}
	if prevID, ok := fields[sym.Name]; ok {
		if prev := t.Symbols.Get(prevID); prev != nil {
			t.reportCollision(reporter, &sym, prev,
				fmt.Sprintf("storage field %q is already declared", t.name(sym.Name)))
		}
		return NoSymbolID, false
	}
	id := t.Symbols.New(sym)
	fields[sym.Name] = id
	return id, true
}

// StorageField looks a field up in the module's storage namespace.
func (t *Table) StorageField(module ast.ModuleID, name source.StringID) SymbolID {
	if id, ok := t.storage[module][name]; ok {
		return id
	}
	return NoSymbolID
}

// LookupLocal returns the symbols named name in exactly this scope.
func (t *Table) LookupLocal(scope ScopeID, name source.StringID) []SymbolID {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return nil
	}
	return sc.NameIndex[name]
}
