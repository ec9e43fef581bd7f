package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// validatePrograms enforces what each program kind must and must not
// contain, and collects the monomorphization entry points: script and
// predicate main, public contract functions.
func (c *checker) validatePrograms() {
	mainName := c.b.Intern("main")
	bl := c.in.Builtins()

	for _, mod := range c.modules {
		m := c.b.Modules.Get(mod)
		if m == nil {
			continue
		}
		scope := c.tbl.ModuleRoot(mod, m.Span)

		if m.Kind != ast.ProgramContract && c.storageMods[mod] {
			for _, decl := range m.Decls {
				d := c.b.Decls.Get(decl)
				if d != nil && d.Kind == ast.DeclStorage {
					c.errorf(diag.ProgStorageContext, d.Span,
						"storage declarations are only legal in contracts")
				}
			}
		}

		switch m.Kind {
		case ast.ProgramScript, ast.ProgramPredicate:
			symID := c.fnNamed(scope, mainName)
			if !symID.IsValid() {
				c.errorf(diag.ProgMissingMain, m.Span, "%s has no main function", m.Kind)
				continue
			}
			sym := c.tbl.Symbols.Get(symID)
			if m.Kind == ast.ProgramPredicate && sym.Sig != nil {
				if c.in.Resolve(sym.Sig.Result) != bl.Bool {
					c.errorf(diag.ProgPredicateBool, sym.Span,
						"predicate main must return bool, returns %s", c.format(sym.Sig.Result))
				}
			}
			c.res.EntryPoints = append(c.res.EntryPoints, EntryPoint{
				Sym: symID, Module: mod, Kind: m.Kind,
			})
		case ast.ProgramContract:
			for _, decl := range m.Decls {
				d := c.b.Decls.Get(decl)
				if d == nil || d.Kind != ast.DeclFn {
					continue
				}
				fn := c.b.Decls.Fn(decl)
				if fn == nil || !fn.Public {
					continue
				}
				if symID, ok := c.declSyms[decl]; ok {
					c.res.EntryPoints = append(c.res.EntryPoints, EntryPoint{
						Sym: symID, Module: mod, Kind: m.Kind,
					})
				}
			}
		}
	}
}

func (c *checker) fnNamed(scope namespace.ScopeID, name source.StringID) namespace.SymbolID {
	for _, symID := range c.tbl.LookupLocal(scope, name) {
		sym := c.tbl.Symbols.Get(symID)
		if sym != nil && sym.Kind == namespace.SymbolFunction {
			return symID
		}
	}
	return namespace.NoSymbolID
}
