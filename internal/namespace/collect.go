package namespace

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// DeclareModules walks every module's top-level declarations and fills the
// table with name stubs. Types and signatures stay empty here; the
// signature pass completes them once the elaboration order is known. Use
// declarations become import symbols immediately so later modules resolve
// through them.
func DeclareModules(b *ast.Builder, tbl *Table, modules []ast.ModuleID, reporter diag.Reporter) {
	// Two passes: names first so use declarations can target symbols of
	// modules declared later in the list.
	for _, mod := range modules {
		m := b.Modules.Get(mod)
		if m == nil {
			continue
		}
		scope := tbl.ModuleRoot(mod, m.Span)
		for _, decl := range m.Decls {
			declareOne(b, tbl, scope, mod, decl, reporter)
		}
	}
	byName := make(map[source.StringID]ast.ModuleID, len(modules))
	for _, mod := range modules {
		if m := b.Modules.Get(mod); m != nil {
			byName[m.Name] = mod
		}
	}
	for _, mod := range modules {
		m := b.Modules.Get(mod)
		if m == nil {
			continue
		}
		scope := tbl.ModuleRoot(mod, m.Span)
		for _, decl := range m.Decls {
			declareUse(b, tbl, scope, mod, byName, decl, reporter)
		}
	}
}

func declareOne(b *ast.Builder, tbl *Table, scope ScopeID, mod ast.ModuleID, decl ast.DeclID, reporter diag.Reporter) {
	d := b.Decls.Get(decl)
	if d == nil {
		return
	}
	switch d.Kind {
	case ast.DeclFn:
		fn := b.Decls.Fn(decl)
		tbl.Declare(scope, Symbol{
			Name:   fn.Name,
			Kind:   SymbolFunction,
			Span:   fn.NameSpan,
			Flags:  publicFlag(fn.Public),
			Decl:   decl,
			Module: mod,
			Arity:  len(fn.Params),
		}, reporter)
	case ast.DeclStruct:
		st := b.Decls.Struct(decl)
		tbl.Declare(scope, Symbol{
			Name:   st.Name,
			Kind:   SymbolStruct,
			Span:   st.NameSpan,
			Flags:  publicFlag(st.Public),
			Decl:   decl,
			Module: mod,
		}, reporter)
	case ast.DeclEnum:
		en := b.Decls.Enum(decl)
		tbl.Declare(scope, Symbol{
			Name:   en.Name,
			Kind:   SymbolEnum,
			Span:   en.NameSpan,
			Flags:  publicFlag(en.Public),
			Decl:   decl,
			Module: mod,
		}, reporter)
	case ast.DeclTrait:
		tr := b.Decls.Trait(decl)
		tbl.Declare(scope, Symbol{
			Name:   tr.Name,
			Kind:   SymbolTrait,
			Span:   tr.NameSpan,
			Flags:  publicFlag(tr.Public),
			Decl:   decl,
			Module: mod,
		}, reporter)
	case ast.DeclConst:
		c := b.Decls.Const(decl)
		tbl.Declare(scope, Symbol{
			Name:   c.Name,
			Kind:   SymbolConst,
			Span:   c.NameSpan,
			Flags:  publicFlag(c.Public),
			Decl:   decl,
			Module: mod,
		}, reporter)
	case ast.DeclStorage:
		st := b.Decls.Storage(decl)
		for _, fid := range st.Fields {
			f := b.Decls.StorageFields.Get(uint32(fid))
			tbl.DeclareStorageField(mod, Symbol{
				Name:   f.Name,
				Kind:   SymbolStorageField,
				Span:   f.Span,
				Decl:   decl,
				Module: mod,
			}, reporter)
		}
	case ast.DeclImpl, ast.DeclUse:
		// Impl methods are resolved through the impl table; use
		// declarations run in the second pass.
	}
}

// declareUse resolves one use declaration. The first path segment names a
// module; the remainder resolves inside that module's root scope. A
// single-segment path is resolved locally (re-export of an existing
// import or prelude name).
func declareUse(b *ast.Builder, tbl *Table, scope ScopeID, mod ast.ModuleID, byName map[source.StringID]ast.ModuleID, decl ast.DeclID, reporter diag.Reporter) {
	d := b.Decls.Get(decl)
	if d == nil || d.Kind != ast.DeclUse {
		return
	}
	u := b.Decls.Use(decl)
	if len(u.Path) == 0 {
		return
	}

	from := scope
	path := u.Path
	if len(path) > 1 {
		target, ok := byName[path[0]]
		if !ok {
			diag.Error(reporter, diag.NameNotFound, u.Span,
				"unresolved import "+pathString(tbl.Strings, u.Path))
			return
		}
		from = tbl.ModuleRoot(target, source.Span{})
		path = path[1:]
	}

	res := tbl.ResolvePath(from, path)
	switch res.Status {
	case ResolveNotFound:
		diag.Error(reporter, diag.NameNotFound, u.Span, "unresolved import "+pathString(tbl.Strings, u.Path))
		return
	case ResolvePrivate:
		diag.Error(reporter, diag.NamePrivate, u.Span, pathString(tbl.Strings, u.Path)+" is private")
		return
	}
	// Resolution above ran inside the target module's scope where its
	// own private names are visible; re-check as the importer.
	if sym := tbl.Symbols.Get(res.Sym); sym != nil && sym.Module != mod && sym.Module != 0 && !sym.IsPublic() {
		diag.Error(reporter, diag.NamePrivate, u.Span, pathString(tbl.Strings, u.Path)+" is private")
		return
	}
	alias := u.Alias
	if alias == source.NoStringID {
		alias = u.Path[len(u.Path)-1]
	}
	tbl.AddImport(scope, alias, res.Sym, u.Span)
}

func publicFlag(public bool) SymbolFlags {
	if public {
		return SymbolFlagPublic
	}
	return 0
}

func pathString(strs *source.Interner, path []source.StringID) string {
	out := ""
	for i, seg := range path {
		s, _ := strs.Lookup(seg)
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}
