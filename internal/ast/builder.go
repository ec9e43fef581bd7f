package ast

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

type Hints struct{ Modules, Decls, Stmts, Exprs uint }

// Builder aggregates every arena of one untyped tree. The parser (an
// external collaborator) or the interchange loader fills it; semantic
// passes only read it.
type Builder struct {
	Modules   *Modules
	Decls     *Decls
	Stmts     *Stmts
	Exprs     *Exprs
	Patterns  *Patterns
	TypeExprs *TypeExprs
	Strings   *source.Interner
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Modules == 0 {
		hints.Modules = 1 << 3
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Modules:   NewModules(hints.Modules),
		Decls:     NewDecls(hints.Decls),
		Stmts:     NewStmts(hints.Stmts),
		Exprs:     NewExprs(hints.Exprs),
		Patterns:  NewPatterns(hints.Exprs),
		TypeExprs: NewTypeExprs(hints.Decls),
		Strings:   strings,
	}
}

// NewModule allocates a module header.
func (b *Builder) NewModule(kind ProgramKind, name string, sp source.Span) ModuleID {
	return b.Modules.New(kind, b.Strings.Intern(name), sp)
}

// PushDecl appends a declaration to the module in source order.
func (b *Builder) PushDecl(module ModuleID, decl DeclID) {
	m := b.Modules.Get(module)
	if m == nil {
		return
	}
	m.Decls = append(m.Decls, decl)
}

// Intern is a shorthand for interning through the builder's string table.
func (b *Builder) Intern(s string) source.StringID {
	return b.Strings.Intern(s)
}
