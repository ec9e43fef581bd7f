package sema

import (
	"fmt"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/depgraph"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// Options configure a semantic pass over a set of modules.
type Options struct {
	Reporter diag.Reporter
	Types    *types.Interner
	Table    *namespace.Table
	// Recorder observes every generic instantiation found while checking
	// bodies; the monomorphization scheduler implements it. Optional.
	Recorder InstantiationRecorder
}

// EntryPoint is a function the program kind exposes to the outside:
// script/predicate main, or a public contract function.
type EntryPoint struct {
	Sym    namespace.SymbolID
	Module ast.ModuleID
	Kind   ast.ProgramKind
}

// Result stores the semantic artefacts. The typed tree is the untyped
// tree plus these side tables, keyed by the arena IDs.
type Result struct {
	Types    *types.Interner
	Table    *namespace.Table
	Graph    *depgraph.Graph
	Schedule *depgraph.Topo

	ExprTypes   map[ast.ExprID]types.TypeID
	DeclTypes   map[ast.DeclID]types.TypeID
	ConstValues map[ast.DeclID]uint64
	EntryPoints []EntryPoint
}

// TypeOf returns the elaborated type of an expression.
func (r *Result) TypeOf(id ast.ExprID) (types.TypeID, bool) {
	t, ok := r.ExprTypes[id]
	return t, ok
}

// Check runs the full semantic pipeline over the modules: declare, order,
// signatures, impls, bodies, finalize, program-kind validation. It never
// stops at the first error; the reporter collects everything.
func Check(b *ast.Builder, modules []ast.ModuleID, opts Options) Result {
	res := Result{
		ExprTypes:   make(map[ast.ExprID]types.TypeID),
		DeclTypes:   make(map[ast.DeclID]types.TypeID),
		ConstValues: make(map[ast.DeclID]uint64),
	}
	res.Types = opts.Types
	if res.Types == nil {
		res.Types = types.NewInterner()
	}
	res.Table = opts.Table
	if res.Table == nil {
		res.Table = namespace.NewTable(namespace.Hints{}, b.Strings, res.Types)
	}
	if b == nil || len(modules) == 0 {
		return res
	}

	namespace.DeclareModules(b, res.Table, modules, opts.Reporter)

	res.Graph = depgraph.Build(b, res.Table, modules)
	res.Schedule = depgraph.Toposort(res.Graph)
	depgraph.ReportCycles(res.Graph, res.Schedule, b.Strings, opts.Reporter)

	c := &checker{
		b:        b,
		in:       res.Types,
		tbl:      res.Table,
		reporter: opts.Reporter,
		recorder: opts.Recorder,
		res:      &res,
		modules:  modules,
		declMod:    make(map[ast.DeclID]ast.ModuleID),
		declSyms:   make(map[ast.DeclID]namespace.SymbolID),
		cyclic:       make(map[ast.DeclID]struct{}),
		declParams:   make(map[ast.DeclID][]types.TypeID),
		implMethods:  make(map[ast.DeclID]ast.DeclID),
		methodCtx:    make(map[ast.DeclID]*methodState),
		traitMethods: make(map[ast.DeclID]traitSpec),
		constVisit:   make(map[ast.DeclID]bool),
	}
	for _, id := range res.Schedule.Cycles {
		c.cyclic[res.Graph.Nodes[id].Decl] = struct{}{}
	}
	c.indexDecls()

	c.signaturePass()
	c.registerImpls()
	c.bodyPass()
	c.finalize()
	c.validatePrograms()

	return res
}

// checker carries the state of one Check run.
type checker struct {
	b        *ast.Builder
	in       *types.Interner
	tbl      *namespace.Table
	reporter diag.Reporter
	recorder InstantiationRecorder
	res      *Result
	modules  []ast.ModuleID

	declMod  map[ast.DeclID]ast.ModuleID
	declSyms map[ast.DeclID]namespace.SymbolID
	// cyclic declarations already carry a recursion diagnostic; their
	// types collapse to the error sentinel instead of producing a
	// cascade.
	cyclic map[ast.DeclID]struct{}

	// declParams records the rigid parameter types of each generic
	// declaration, in declaration order.
	declParams map[ast.DeclID][]types.TypeID
	// implMethods maps method declarations to their enclosing impl.
	implMethods map[ast.DeclID]ast.DeclID
	// methodCtx keeps the lowering context and symbol of each impl
	// method between the impl registration and the body pass.
	methodCtx    map[ast.DeclID]*methodState
	traitMethods map[ast.DeclID]traitSpec

	impls       []implInfo
	storageMods map[ast.ModuleID]bool
	constVisit  map[ast.DeclID]bool

	// pendingInsts holds generic call sites until finalize canonicalizes
	// their argument lists for the recorder.
	pendingInsts []pendingInst
}

// methodState is a registered impl method awaiting its body pass.
type methodState struct {
	Sym namespace.SymbolID
	Ctx *declContext
}

// traitSpec is a trait's elaborated method surface.
type traitSpec struct {
	Methods map[source.StringID]*namespace.FnSignature
	Order   []source.StringID
}

// implInfo links an impl declaration to its registered table entry for the
// conformance and overlap checks that run after registration.
type implInfo struct {
	Decl  ast.DeclID
	ID    namespace.ImplID
	Trait namespace.SymbolID
}

// indexDecls maps declarations (impl methods included) to their module and
// their table symbol.
func (c *checker) indexDecls() {
	c.storageMods = make(map[ast.ModuleID]bool)
	for _, mod := range c.modules {
		m := c.b.Modules.Get(mod)
		if m == nil {
			continue
		}
		scope := c.tbl.ModuleRoot(mod, m.Span)
		for _, decl := range m.Decls {
			c.declMod[decl] = mod
			d := c.b.Decls.Get(decl)
			if d == nil {
				continue
			}
			if d.Kind == ast.DeclStorage {
				c.storageMods[mod] = true
			}
			if d.Kind == ast.DeclImpl {
				for _, method := range c.b.Decls.Impl(decl).Methods {
					c.declMod[method] = mod
					c.implMethods[method] = decl
				}
				continue
			}
			name := c.b.Decls.Name(decl)
			if name == source.NoStringID {
				continue
			}
			for _, symID := range c.tbl.LookupLocal(scope, name) {
				sym := c.tbl.Symbols.Get(symID)
				if sym != nil && sym.Decl == decl {
					c.declSyms[decl] = symID
					break
				}
			}
		}
	}
}

func (c *checker) moduleScope(decl ast.DeclID) namespace.ScopeID {
	mod := c.declMod[decl]
	m := c.b.Modules.Get(mod)
	if m == nil {
		return namespace.NoScopeID
	}
	return c.tbl.ModuleRoot(mod, m.Span)
}

func (c *checker) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	if c.reporter == nil {
		return
	}
	c.reporter.Report(diag.NewError(code, sp, fmt.Sprintf(format, args...)))
}

func (c *checker) name(id source.StringID) string {
	s, _ := c.b.Strings.Lookup(id)
	return s
}

// format renders a type for diagnostics.
func (c *checker) format(id types.TypeID) string {
	return c.in.Format(c.b.Strings, id)
}
