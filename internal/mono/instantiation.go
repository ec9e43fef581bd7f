package mono

import (
	"slices"
	"strconv"
	"strings"

	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// InstKey is a comparable key for one instantiation of a generic symbol.
// Maps cannot key on slices, so the argument list is flattened to a
// stable string; the typed arguments live on the entry.
type InstKey struct {
	Sym     namespace.SymbolID
	ArgsKey string
}

// UseSite is one location where the instantiation was demanded. Caller is
// the enclosing function symbol, NoSymbolID for constant and storage
// initializers.
type UseSite struct {
	Span   source.Span
	Caller namespace.SymbolID
}

// InstEntry collects every use of one (symbol, type arguments) pair.
type InstEntry struct {
	Key      InstKey
	TypeArgs []types.TypeID
	UseSites []UseSite
}

// InstantiationMap accumulates generic instantiations across a program.
// The sema body pass fills it through Recorder; the scheduler drains it.
type InstantiationMap struct {
	Entries map[InstKey]*InstEntry
}

func NewInstantiationMap() *InstantiationMap {
	return &InstantiationMap{Entries: make(map[InstKey]*InstEntry)}
}

// Record registers one instantiation at a site. Duplicate sites collapse.
func (m *InstantiationMap) Record(sym namespace.SymbolID, typeArgs []types.TypeID, site source.Span, caller namespace.SymbolID) {
	if m == nil || !sym.IsValid() || len(typeArgs) == 0 {
		return
	}
	if m.Entries == nil {
		m.Entries = make(map[InstKey]*InstEntry)
	}
	args := slices.Clone(typeArgs)
	key := InstKey{Sym: sym, ArgsKey: typeArgsKey(args)}
	entry := m.Entries[key]
	if entry == nil {
		entry = &InstEntry{Key: key, TypeArgs: args}
		m.Entries[key] = entry
	}
	if site == (source.Span{}) {
		return
	}
	us := UseSite{Span: site, Caller: caller}
	for _, existing := range entry.UseSites {
		if existing == us {
			return
		}
	}
	entry.UseSites = append(entry.UseSites, us)
}

func (m *InstantiationMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// sortedEntries returns the entries in a stable order independent of map
// iteration.
func (m *InstantiationMap) sortedEntries() []*InstEntry {
	if m == nil {
		return nil
	}
	entries := make([]*InstEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, e)
	}
	slices.SortStableFunc(entries, func(a, b *InstEntry) int {
		if a.Key.Sym != b.Key.Sym {
			if a.Key.Sym < b.Key.Sym {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Key.ArgsKey, b.Key.ArgsKey)
	})
	return entries
}

func typeArgsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}
