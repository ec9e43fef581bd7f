package namespace

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// ImplEntry is one registered implementation: a trait (or nothing, for
// inherent impls) applied to a target type pattern. The target may contain
// the impl's own type parameters; a bare parameter target is a blanket
// impl.
type ImplEntry struct {
	Impl       ast.DeclID
	Trait      SymbolID // NoSymbolID for inherent impls
	Target     types.TypeID
	TypeParams []types.TypeID
	Methods    map[source.StringID]SymbolID
	Span       source.Span
}

// ImplTable indexes every impl of one compilation.
type ImplTable struct {
	entries []ImplEntry
}

func NewImplTable() *ImplTable {
	return &ImplTable{
		entries: make([]ImplEntry, 1), // slot 0 reserved for NoImplID
	}
}

// Register stores the entry and returns its handle.
func (it *ImplTable) Register(e ImplEntry) ImplID {
	n, err := safecast.Conv[uint32](len(it.entries))
	if err != nil {
		panic(fmt.Errorf("impl table overflow: %w", err))
	}
	it.entries = append(it.entries, e)
	return ImplID(n)
}

// Get returns the entry pointer or nil for an invalid ID.
func (it *ImplTable) Get(id ImplID) *ImplEntry {
	if !id.IsValid() || int(id) >= len(it.entries) {
		return nil
	}
	return &it.entries[id]
}

// Len reports the number of registered impls.
func (it *ImplTable) Len() int { return len(it.entries) - 1 }

// ImplMatch is one applicable impl with the substitution that makes its
// target pattern equal the queried type.
type ImplMatch struct {
	ID    ImplID
	Subst *types.Subst
}

// Resolve finds every impl whose target pattern matches the concrete type
// for the given trait (NoSymbolID queries inherent impls). Two or more
// matches are an ambiguity; the caller reports that as a hard error rather
// than picking one.
func (it *ImplTable) Resolve(in *types.Interner, target types.TypeID, trait SymbolID) []ImplMatch {
	var matches []ImplMatch
	for i := 1; i < len(it.entries); i++ {
		e := &it.entries[i]
		if e.Trait != trait {
			continue
		}
		sub := types.NewSubst()
		if matchType(in, paramSet(e.TypeParams), e.Target, target, sub) {
			matches = append(matches, ImplMatch{ID: ImplID(uint32(i)), Subst: sub})
		}
	}
	return matches
}

// ResolveAny matches the target against every impl regardless of trait.
// Method dispatch uses this; a name found in two matching impls is the
// ambiguity the overlap check already reported.
func (it *ImplTable) ResolveAny(in *types.Interner, target types.TypeID) []ImplMatch {
	var matches []ImplMatch
	for i := 1; i < len(it.entries); i++ {
		e := &it.entries[i]
		sub := types.NewSubst()
		if matchType(in, paramSet(e.TypeParams), e.Target, target, sub) {
			matches = append(matches, ImplMatch{ID: ImplID(uint32(i)), Subst: sub})
		}
	}
	return matches
}

// MethodOn resolves a method name against the inherent impls of a type.
func (it *ImplTable) MethodOn(in *types.Interner, target types.TypeID, name source.StringID) (SymbolID, *types.Subst, bool) {
	for _, m := range it.Resolve(in, target, NoSymbolID) {
		e := it.Get(m.ID)
		if sym, ok := e.Methods[name]; ok {
			return sym, m.Subst, true
		}
	}
	return NoSymbolID, nil, false
}

func paramSet(params []types.TypeID) map[types.TypeID]struct{} {
	if len(params) == 0 {
		return nil
	}
	set := make(map[types.TypeID]struct{}, len(params))
	for _, p := range params {
		set[p] = struct{}{}
	}
	return set
}

// matchType unifies a target pattern against a concrete type, binding the
// impl's type parameters as wildcards. Purely structural; no inference
// variables are created or bound.
func matchType(in *types.Interner, wild map[types.TypeID]struct{}, pattern, concrete types.TypeID, sub *types.Subst) bool {
	pattern = in.Resolve(pattern)
	concrete = in.Resolve(concrete)

	if _, isWild := wild[pattern]; isWild {
		if bound, ok := sub.Lookup(pattern); ok {
			return in.Resolve(bound) == concrete
		}
		return sub.Bind(pattern, concrete) == nil
	}
	if pattern == concrete {
		return true
	}

	pt, okP := in.Lookup(pattern)
	ct, okC := in.Lookup(concrete)
	if !okP || !okC || pt.Kind != ct.Kind {
		return false
	}
	switch pt.Kind {
	case types.KindArray:
		return pt.Count == ct.Count && matchType(in, wild, pt.Elem, ct.Elem, sub)
	case types.KindRef:
		return matchType(in, wild, pt.Elem, ct.Elem, sub)
	case types.KindTuple:
		pi, _ := in.TupleInfo(pattern)
		ci, _ := in.TupleInfo(concrete)
		if pi == nil || ci == nil || len(pi.Elems) != len(ci.Elems) {
			return false
		}
		for i := range pi.Elems {
			if !matchType(in, wild, pi.Elems[i], ci.Elems[i], sub) {
				return false
			}
		}
		return true
	case types.KindNominal:
		pi, _ := in.NominalInfo(pattern)
		ci, _ := in.NominalInfo(concrete)
		if pi == nil || ci == nil || pi.Owner != ci.Owner || len(pi.Args) != len(ci.Args) {
			return false
		}
		for i := range pi.Args {
			if !matchType(in, wild, pi.Args[i], ci.Args[i], sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
