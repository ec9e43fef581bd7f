package namespace

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// ResolveStatus classifies the outcome of a path lookup.
type ResolveStatus uint8

const (
	ResolveOK ResolveStatus = iota
	ResolveNotFound
	// ResolvePrivate means the name exists but is not visible from the
	// requesting module.
	ResolvePrivate
)

// Resolution is the result of ResolvePath. Rest holds trailing path
// segments the namespace does not interpret (enum variants, associated
// names); the typed-tree builder consumes them against the resolved
// symbol's type.
type Resolution struct {
	Status ResolveStatus
	Sym    SymbolID
	Rest   []source.StringID
	// Candidates lists every overload when the head of the path names an
	// overloaded function; Sym holds the first.
	Candidates []SymbolID
}

// ResolvePath walks a qualified path starting from scope: the local scope
// chain first, then imports recorded in the chain, then the prelude (which
// is the chain's root). Imports forward to their target; visibility is
// checked when the target lives in a different module than the requester.
func (t *Table) ResolvePath(scope ScopeID, path []source.StringID) Resolution {
	if len(path) == 0 {
		return Resolution{Status: ResolveNotFound}
	}
	head := path[0]
	fromModule := t.moduleOf(scope)

	for sc := scope; sc.IsValid(); sc = t.parentOf(sc) {
		ids := t.LookupLocal(sc, head)
		if len(ids) == 0 {
			continue
		}
		resolved := make([]SymbolID, 0, len(ids))
		for _, id := range ids {
			target, visible := t.followImport(id, fromModule)
			if !visible {
				return Resolution{Status: ResolvePrivate, Sym: target}
			}
			resolved = append(resolved, target)
		}
		return Resolution{
			Status:     ResolveOK,
			Sym:        resolved[0],
			Rest:       path[1:],
			Candidates: resolved,
		}
	}
	return Resolution{Status: ResolveNotFound}
}

// followImport chases import symbols to their target and checks that the
// final symbol is visible from the requesting module.
func (t *Table) followImport(id SymbolID, fromModule moduleKey) (SymbolID, bool) {
	for {
		sym := t.Symbols.Get(id)
		if sym == nil {
			return id, true
		}
		if sym.Kind == SymbolImport {
			id = sym.Target
			continue
		}
		if fromModule != moduleKey(sym.Module) && sym.Module != 0 && !sym.IsPublic() {
			return id, false
		}
		return id, true
	}
}

type moduleKey uint32

func (t *Table) moduleOf(scope ScopeID) moduleKey {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return 0
	}
	return moduleKey(sc.Module)
}

func (t *Table) parentOf(scope ScopeID) ScopeID {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return NoScopeID
	}
	return sc.Parent
}

// AddImport declares an aliasing symbol in scope that forwards to target.
// The namespace does not copy the target; imports are lookup-time
// indirections.
func (t *Table) AddImport(scope ScopeID, name source.StringID, target SymbolID, span source.Span) SymbolID {
	sc := t.Scopes.Get(scope)
	id := t.Symbols.New(Symbol{
		Name:   name,
		Kind:   SymbolImport,
		Span:   span,
		Flags:  SymbolFlagImported,
		Target: target,
		Module: sc.Module,
	})
	t.insert(scope, id)
	return id
}
