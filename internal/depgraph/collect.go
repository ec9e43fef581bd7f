package depgraph

import (
	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// collector walks declarations and records name-level edges. It resolves
// paths through the namespace table built by the declare pass and is
// deliberately conservative: an unresolved name produces no edge, the
// resolution pass owns that diagnostic.
type collector struct {
	b   *ast.Builder
	tbl *namespace.Table
	g   *Graph

	module ast.ModuleID
	scope  namespace.ScopeID
	from   NodeID
	locals map[source.StringID]struct{}
}

// Build collects the dependency graph over every top-level declaration of
// the given modules. Impl methods are nodes of their own; use
// declarations contribute nothing.
func Build(b *ast.Builder, tbl *namespace.Table, modules []ast.ModuleID) *Graph {
	c := &collector{b: b, tbl: tbl, g: NewGraph(64)}

	for _, mod := range modules {
		m := b.Modules.Get(mod)
		if m == nil {
			continue
		}
		for _, decl := range m.Decls {
			c.addNodes(mod, decl)
		}
	}
	for _, mod := range modules {
		m := b.Modules.Get(mod)
		if m == nil {
			continue
		}
		c.module = mod
		c.scope = tbl.ModuleRoot(mod, m.Span)
		for _, decl := range m.Decls {
			c.collectDecl(decl)
		}
	}
	return c.g
}

func (c *collector) addNodes(mod ast.ModuleID, decl ast.DeclID) {
	d := c.b.Decls.Get(decl)
	if d == nil {
		return
	}
	switch d.Kind {
	case ast.DeclUse:
		return
	case ast.DeclImpl:
		im := c.b.Decls.Impl(decl)
		for _, method := range im.Methods {
			c.addNodes(mod, method)
		}
		return
	case ast.DeclStorage:
		c.g.AddNode(Node{Decl: decl, Module: mod, Name: c.b.Intern("storage"), Span: d.Span})
		return
	case ast.DeclTrait:
		c.g.AddNode(Node{Decl: decl, Module: mod, Name: c.b.Decls.Name(decl), Span: d.Span})
		return
	}
	c.g.AddNode(Node{Decl: decl, Module: mod, Name: c.b.Decls.Name(decl), Span: d.Span})
}

func (c *collector) collectDecl(decl ast.DeclID) {
	d := c.b.Decls.Get(decl)
	if d == nil {
		return
	}
	switch d.Kind {
	case ast.DeclStruct:
		st := c.b.Decls.Struct(decl)
		c.begin(decl, st.TypeParams)
		for _, fid := range st.Fields {
			f := c.b.Decls.Fields.Get(uint32(fid))
			c.walkType(f.Type, EdgeValue)
		}
	case ast.DeclEnum:
		en := c.b.Decls.Enum(decl)
		c.begin(decl, en.TypeParams)
		for _, vid := range en.Variants {
			v := c.b.Decls.Variants.Get(uint32(vid))
			if v.Payload.IsValid() {
				c.walkType(v.Payload, EdgeValue)
			}
		}
	case ast.DeclConst:
		cd := c.b.Decls.Const(decl)
		c.begin(decl, nil)
		c.walkType(cd.Type, EdgeValue)
		c.walkExpr(cd.Value, EdgeValue)
	case ast.DeclFn:
		c.collectFn(decl)
	case ast.DeclTrait:
		tr := c.b.Decls.Trait(decl)
		c.begin(decl, nil)
		for _, method := range tr.Methods {
			fn := c.b.Decls.Fn(method)
			if fn == nil {
				continue
			}
			for _, pid := range fn.Params {
				p := c.b.Decls.Params.Get(uint32(pid))
				c.walkType(p.Type, EdgeIndirect)
			}
			if fn.Return.IsValid() {
				c.walkType(fn.Return, EdgeIndirect)
			}
		}
	case ast.DeclImpl:
		im := c.b.Decls.Impl(decl)
		for _, method := range im.Methods {
			c.collectFn(method)
		}
	case ast.DeclStorage:
		st := c.b.Decls.Storage(decl)
		c.begin(decl, nil)
		for _, fid := range st.Fields {
			f := c.b.Decls.StorageFields.Get(uint32(fid))
			c.walkType(f.Type, EdgeValue)
			if f.Init.IsValid() {
				c.walkExpr(f.Init, EdgeValue)
			}
		}
	}
}

func (c *collector) collectFn(decl ast.DeclID) {
	fn := c.b.Decls.Fn(decl)
	if fn == nil {
		return
	}
	c.begin(decl, fn.TypeParams)
	for _, pid := range fn.Params {
		p := c.b.Decls.Params.Get(uint32(pid))
		c.locals[p.Name] = struct{}{}
		c.walkType(p.Type, EdgeIndirect)
	}
	if fn.Return.IsValid() {
		c.walkType(fn.Return, EdgeIndirect)
	}
	if fn.Body.IsValid() {
		c.walkExpr(fn.Body, EdgeIndirect)
	}
}

// begin resets per-declaration state: the edge source and the local name
// set that shadows module-level declarations.
func (c *collector) begin(decl ast.DeclID, typeParams []ast.TypeParamID) {
	c.from, _ = c.g.NodeFor(decl)
	c.locals = make(map[source.StringID]struct{}, len(typeParams)+4)
	for _, tpID := range typeParams {
		tp := c.b.Decls.TypeParams.Get(uint32(tpID))
		c.locals[tp.Name] = struct{}{}
	}
}

// edgeTo resolves a path against the module scope and, if it lands on a
// registered declaration, records an edge of the given kind.
func (c *collector) edgeTo(path []source.StringID, kind EdgeKind) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		if _, shadowed := c.locals[path[0]]; shadowed {
			return
		}
	}
	res := c.tbl.ResolvePath(c.scope, path)
	if res.Status != namespace.ResolveOK {
		return
	}
	for _, candidate := range res.Candidates {
		sym := c.tbl.Symbols.Get(candidate)
		if sym == nil || !sym.Decl.IsValid() {
			continue
		}
		if to, ok := c.g.NodeFor(sym.Decl); ok {
			c.g.AddEdge(kind, c.from, to)
		}
	}
}

func (c *collector) walkType(id ast.TypeExprID, kind EdgeKind) {
	te := c.b.TypeExprs.Get(id)
	if te == nil {
		return
	}
	switch te.Kind {
	case ast.TypeExprNamed:
		named := c.b.TypeExprs.NamedData(id)
		c.edgeTo(named.Path, kind)
		for _, arg := range named.Args {
			c.walkType(arg, kind)
		}
	case ast.TypeExprTuple:
		for _, elem := range c.b.TypeExprs.TupleData(id).Elems {
			c.walkType(elem, kind)
		}
	case ast.TypeExprArray:
		arr := c.b.TypeExprs.ArrayData(id)
		c.walkType(arr.Elem, kind)
		// Array lengths are constant contexts; a referenced constant
		// must be evaluated first.
		c.walkExpr(arr.Len, EdgeValue)
	case ast.TypeExprRef:
		// Behind a reference the referent only needs to be declared,
		// not complete.
		c.walkType(c.b.TypeExprs.RefData(id).Elem, EdgeIndirect)
	}
}

func (c *collector) walkExpr(id ast.ExprID, kind EdgeKind) {
	e := c.b.Exprs.Get(id)
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprPath:
		c.edgeTo(c.b.Exprs.PathData(id).Path, kind)
	case ast.ExprCall:
		call := c.b.Exprs.CallData(id)
		// A call never needs the callee's body complete before this
		// declaration elaborates.
		c.walkExpr(call.Callee, EdgeIndirect)
		for _, arg := range call.TypeArgs {
			c.walkType(arg, kind)
		}
		for _, arg := range call.Args {
			c.walkExpr(arg, kind)
		}
	case ast.ExprBinary:
		bin := c.b.Exprs.BinaryData(id)
		c.walkExpr(bin.Left, kind)
		c.walkExpr(bin.Right, kind)
	case ast.ExprUnary:
		c.walkExpr(c.b.Exprs.UnaryData(id).Operand, kind)
	case ast.ExprField:
		c.walkExpr(c.b.Exprs.FieldData(id).Recv, kind)
	case ast.ExprIndex:
		idx := c.b.Exprs.IndexData(id)
		c.walkExpr(idx.Recv, kind)
		c.walkExpr(idx.Index, kind)
	case ast.ExprTuple:
		for _, elem := range c.b.Exprs.TupleData(id).Elems {
			c.walkExpr(elem, kind)
		}
	case ast.ExprArray:
		for _, elem := range c.b.Exprs.ArrayData(id).Elems {
			c.walkExpr(elem, kind)
		}
	case ast.ExprStructLit:
		lit := c.b.Exprs.StructLitData(id)
		c.edgeTo(lit.Path, EdgeIndirect)
		for _, arg := range lit.TypeArgs {
			c.walkType(arg, kind)
		}
		for _, f := range lit.Fields {
			c.walkExpr(f.Value, kind)
		}
	case ast.ExprIf:
		ifd := c.b.Exprs.IfData(id)
		c.walkExpr(ifd.Cond, kind)
		c.walkExpr(ifd.Then, kind)
		if ifd.Else.IsValid() {
			c.walkExpr(ifd.Else, kind)
		}
	case ast.ExprMatch:
		m := c.b.Exprs.MatchData(id)
		c.walkExpr(m.Scrutinee, kind)
		for _, armID := range m.Arms {
			arm := c.b.Exprs.Arm(armID)
			pat := c.b.Patterns.Get(arm.Pattern)
			if pat != nil && pat.Kind == ast.PatternExpr {
				c.walkExpr(pat.Expr, kind)
			}
			c.walkExpr(arm.Body, kind)
		}
	case ast.ExprBlock:
		blk := c.b.Exprs.BlockData(id)
		for _, stmtID := range blk.Stmts {
			c.walkStmt(stmtID, kind)
		}
		if blk.Tail.IsValid() {
			c.walkExpr(blk.Tail, kind)
		}
	}
}

func (c *collector) walkStmt(id ast.StmtID, kind EdgeKind) {
	st := c.b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtLet:
		let := c.b.Stmts.LetData(id)
		if let.Type.IsValid() {
			c.walkType(let.Type, EdgeIndirect)
		}
		c.walkExpr(let.Value, kind)
		c.locals[let.Name] = struct{}{}
	case ast.StmtExpr:
		c.walkExpr(c.b.Stmts.ExprData(id).Expr, kind)
	case ast.StmtReturn:
		ret := c.b.Stmts.ReturnData(id)
		if ret.Value.IsValid() {
			c.walkExpr(ret.Value, kind)
		}
	}
}
