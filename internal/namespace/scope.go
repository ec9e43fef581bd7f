package namespace

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopePrelude
	ScopeModule
	ScopeDecl // generic parameters of one declaration
)

func (k ScopeKind) String() string {
	switch k {
	case ScopePrelude:
		return "prelude"
	case ScopeModule:
		return "module"
	case ScopeDecl:
		return "decl"
	default:
		return "invalid"
	}
}

// Scope models one level of the namespace tree. Lookups may traverse to
// the parent but never mutate it.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Module    ast.ModuleID
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
