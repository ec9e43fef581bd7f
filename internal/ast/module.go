package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// ProgramKind distinguishes the four program forms of the language. The
// kind gates which declarations are legal and which functions become
// monomorphization entry points.
type ProgramKind uint8

const (
	ProgramLibrary ProgramKind = iota
	ProgramContract
	ProgramScript
	ProgramPredicate
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramLibrary:
		return "library"
	case ProgramContract:
		return "contract"
	case ProgramScript:
		return "script"
	case ProgramPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Module is one compilation unit: a program-kind header plus its top-level
// declarations in source order.
type Module struct {
	Span  source.Span
	Kind  ProgramKind
	Name  source.StringID
	Decls []DeclID
}

type Modules struct {
	Arena *Arena[Module]
}

func NewModules(capHint uint) *Modules {
	return &Modules{
		Arena: NewArena[Module](capHint),
	}
}

func (m *Modules) New(kind ProgramKind, name source.StringID, sp source.Span) ModuleID {
	return ModuleID(m.Arena.Allocate(Module{
		Span: sp,
		Kind: kind,
		Name: name,
	}))
}

func (m *Modules) Get(id ModuleID) *Module {
	return m.Arena.Get(uint32(id))
}
