// Package astio decodes the *.ast.json interchange format into the ast
// arenas. The parser runs upstream and hands the checker a finished
// untyped tree; this package is the input adapter, not a parser.
package astio

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// FormatVersion is the interchange schema this decoder accepts.
const FormatVersion = 1

// Tree is the top level of one interchange file: one module with its
// original source text carried along for diagnostics.
type Tree struct {
	Format int        `json:"format"`
	Name   string     `json:"name"`
	Kind   string     `json:"kind"`
	File   string     `json:"file"`
	Source string     `json:"source"`
	Span   spanJSON   `json:"span"`
	Decls  []declJSON `json:"decls"`
}

type spanJSON [2]uint32

type declJSON struct {
	Node       string      `json:"node"`
	Span       spanJSON    `json:"span"`
	Name       string      `json:"name,omitempty"`
	NameSpan   spanJSON    `json:"name_span,omitempty"`
	Public     bool        `json:"public,omitempty"`
	TypeParams []tparJSON  `json:"type_params,omitempty"`
	Params     []paramJSON `json:"params,omitempty"`
	Return     *typeJSON   `json:"return,omitempty"`
	Body       *exprJSON   `json:"body,omitempty"`
	Fields     []fieldJSON `json:"fields,omitempty"`
	Variants   []variJSON  `json:"variants,omitempty"`
	Methods    []declJSON  `json:"methods,omitempty"`
	TraitPath  []string    `json:"trait_path,omitempty"`
	Target     *typeJSON   `json:"target,omitempty"`
	Type       *typeJSON   `json:"type,omitempty"`
	Value      *exprJSON   `json:"value,omitempty"`
	Slots      []slotJSON  `json:"slots,omitempty"`
	Path       []string    `json:"path,omitempty"`
	Alias      string      `json:"alias,omitempty"`
}

type tparJSON struct {
	Name string   `json:"name"`
	Span spanJSON `json:"span"`
}

type paramJSON struct {
	Name string   `json:"name"`
	Span spanJSON `json:"span"`
	Type typeJSON `json:"type"`
}

type fieldJSON struct {
	Name string   `json:"name"`
	Span spanJSON `json:"span"`
	Type typeJSON `json:"type"`
}

type variJSON struct {
	Name    string    `json:"name"`
	Span    spanJSON  `json:"span"`
	Payload *typeJSON `json:"payload,omitempty"`
}

type slotJSON struct {
	Name string   `json:"name"`
	Span spanJSON `json:"span"`
	Type typeJSON `json:"type"`
	Init exprJSON `json:"init"`
}

type typeJSON struct {
	Node  string     `json:"node"` // named, tuple, array, ref, self, unit
	Span  spanJSON   `json:"span"`
	Path  []string   `json:"path,omitempty"`
	Args  []typeJSON `json:"args,omitempty"`
	Elems []typeJSON `json:"elems,omitempty"`
	Elem  *typeJSON  `json:"elem,omitempty"`
	Len   *exprJSON  `json:"len,omitempty"`
}

type exprJSON struct {
	Node     string         `json:"node"`
	Span     spanJSON       `json:"span"`
	Int      uint64         `json:"int,omitempty"`
	Width    uint8          `json:"width,omitempty"`
	Bool     bool           `json:"bool,omitempty"`
	Str      string         `json:"str,omitempty"`
	Path     []string       `json:"path,omitempty"`
	Op       string         `json:"op,omitempty"`
	Left     *exprJSON      `json:"left,omitempty"`
	Right    *exprJSON      `json:"right,omitempty"`
	Operand  *exprJSON      `json:"operand,omitempty"`
	Callee   *exprJSON      `json:"callee,omitempty"`
	TypeArgs []typeJSON     `json:"type_args,omitempty"`
	Args     []exprJSON     `json:"args,omitempty"`
	Recv     *exprJSON      `json:"recv,omitempty"`
	Name     string         `json:"name,omitempty"`
	Index    *exprJSON      `json:"index,omitempty"`
	Elems    []exprJSON     `json:"elems,omitempty"`
	Fields   []fieldInitJSON `json:"fields,omitempty"`
	Cond     *exprJSON      `json:"cond,omitempty"`
	Then     *exprJSON      `json:"then,omitempty"`
	Else     *exprJSON      `json:"else,omitempty"`
	Scrut    *exprJSON      `json:"scrutinee,omitempty"`
	Arms     []armJSON      `json:"arms,omitempty"`
	Stmts    []stmtJSON     `json:"stmts,omitempty"`
	Tail     *exprJSON      `json:"tail,omitempty"`
}

type fieldInitJSON struct {
	Name  string   `json:"name"`
	Span  spanJSON `json:"span"`
	Value exprJSON `json:"value"`
}

type armJSON struct {
	Span    spanJSON  `json:"span"`
	Pattern patJSON   `json:"pattern"`
	Body    exprJSON  `json:"body"`
}

type patJSON struct {
	Node string    `json:"node"` // wildcard, expr
	Span spanJSON  `json:"span"`
	Expr *exprJSON `json:"expr,omitempty"`
}

type stmtJSON struct {
	Node  string    `json:"node"` // let, expr, return
	Span  spanJSON  `json:"span"`
	Name  string    `json:"name,omitempty"`
	Type  *typeJSON `json:"type,omitempty"`
	Value *exprJSON `json:"value,omitempty"`
	Expr  *exprJSON `json:"expr,omitempty"`
}

// LoadFile reads one interchange file, registers its embedded source
// text in fs, and decodes the module into b.
func LoadFile(b *ast.Builder, fs *source.FileSet, path string) (ast.ModuleID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return 0, fmt.Errorf("%s: invalid interchange JSON: %w", path, err)
	}
	mod, err := Decode(b, fs, &tree)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// Decode materializes tree into b's arenas. The embedded source is
// added to fs so spans in the tree resolve to real lines.
func Decode(b *ast.Builder, fs *source.FileSet, tree *Tree) (ast.ModuleID, error) {
	if tree.Format != FormatVersion {
		return 0, fmt.Errorf("unsupported interchange format %d (want %d)", tree.Format, FormatVersion)
	}
	kind, err := programKind(tree.Kind)
	if err != nil {
		return 0, err
	}
	name := tree.File
	if name == "" {
		name = tree.Name + ".sw"
	}
	d := &decoder{
		b:    b,
		file: fs.AddVirtual(name, []byte(tree.Source)),
	}
	mod := b.NewModule(kind, ident(tree.Name), d.span(tree.Span))
	for i := range tree.Decls {
		id, err := d.decl(&tree.Decls[i])
		if err != nil {
			return 0, err
		}
		b.PushDecl(mod, id)
	}
	return mod, nil
}

func programKind(s string) (ast.ProgramKind, error) {
	switch s {
	case "script":
		return ast.ProgramScript, nil
	case "contract":
		return ast.ProgramContract, nil
	case "predicate":
		return ast.ProgramPredicate, nil
	case "library":
		return ast.ProgramLibrary, nil
	default:
		return 0, fmt.Errorf("unknown program kind %q", s)
	}
}

// ident normalizes an identifier to NFC so visually identical names
// compare equal after interning.
func ident(s string) string {
	return norm.NFC.String(s)
}

type decoder struct {
	b    *ast.Builder
	file source.FileID
}

func (d *decoder) span(sp spanJSON) source.Span {
	return source.Span{File: d.file, Start: sp[0], End: sp[1]}
}

func (d *decoder) name(s string) source.StringID {
	return d.b.Intern(ident(s))
}

func (d *decoder) path(segments []string) []source.StringID {
	out := make([]source.StringID, len(segments))
	for i, s := range segments {
		out[i] = d.name(s)
	}
	return out
}

func (d *decoder) decl(j *declJSON) (ast.DeclID, error) {
	switch j.Node {
	case "fn":
		return d.fnDecl(j)
	case "struct":
		fields := make([]ast.FieldID, len(j.Fields))
		for i, f := range j.Fields {
			typ, err := d.typeExpr(&f.Type)
			if err != nil {
				return 0, err
			}
			fields[i] = d.b.Decls.NewStructField(d.span(f.Span), d.name(f.Name), typ)
		}
		tps := d.typeParams(j.TypeParams)
		return d.b.Decls.NewStruct(d.span(j.Span), ast.StructDecl{
			Name: d.name(j.Name), NameSpan: d.span(j.NameSpan),
			Public: j.Public, TypeParams: tps, Fields: fields,
		}), nil
	case "enum":
		variants := make([]ast.VariantID, len(j.Variants))
		for i, v := range j.Variants {
			payload := ast.NoTypeExprID
			if v.Payload != nil {
				var err error
				if payload, err = d.typeExpr(v.Payload); err != nil {
					return 0, err
				}
			}
			variants[i] = d.b.Decls.NewVariant(d.span(v.Span), d.name(v.Name), payload)
		}
		tps := d.typeParams(j.TypeParams)
		return d.b.Decls.NewEnum(d.span(j.Span), ast.EnumDecl{
			Name: d.name(j.Name), NameSpan: d.span(j.NameSpan),
			Public: j.Public, TypeParams: tps, Variants: variants,
		}), nil
	case "trait":
		methods, err := d.methodDecls(j.Methods)
		if err != nil {
			return 0, err
		}
		return d.b.Decls.NewTrait(d.span(j.Span), ast.TraitDecl{
			Name: d.name(j.Name), NameSpan: d.span(j.NameSpan),
			Public: j.Public, Methods: methods,
		}), nil
	case "impl":
		if j.Target == nil {
			return 0, fmt.Errorf("impl without target at %v", j.Span)
		}
		target, err := d.typeExpr(j.Target)
		if err != nil {
			return 0, err
		}
		methods, err := d.methodDecls(j.Methods)
		if err != nil {
			return 0, err
		}
		return d.b.Decls.NewImpl(d.span(j.Span), ast.ImplDecl{
			TraitPath:  d.path(j.TraitPath),
			Target:     target,
			TypeParams: d.typeParams(j.TypeParams),
			Methods:    methods,
			Span:       d.span(j.Span),
		}), nil
	case "const":
		typ := ast.NoTypeExprID
		if j.Type != nil {
			var err error
			if typ, err = d.typeExpr(j.Type); err != nil {
				return 0, err
			}
		}
		if j.Value == nil {
			return 0, fmt.Errorf("const %q without value", j.Name)
		}
		value, err := d.expr(j.Value)
		if err != nil {
			return 0, err
		}
		return d.b.Decls.NewConst(d.span(j.Span), ast.ConstDecl{
			Name: d.name(j.Name), NameSpan: d.span(j.NameSpan),
			Public: j.Public, Type: typ, Value: value,
		}), nil
	case "storage":
		slots := make([]ast.StorageFieldID, len(j.Slots))
		for i, s := range j.Slots {
			typ, err := d.typeExpr(&s.Type)
			if err != nil {
				return 0, err
			}
			init, err := d.expr(&s.Init)
			if err != nil {
				return 0, err
			}
			slots[i] = d.b.Decls.NewStorageField(d.span(s.Span), d.name(s.Name), typ, init)
		}
		return d.b.Decls.NewStorage(d.span(j.Span), ast.StorageDecl{Fields: slots}), nil
	case "use":
		alias := source.NoStringID
		if j.Alias != "" {
			alias = d.name(j.Alias)
		}
		return d.b.Decls.NewUse(d.span(j.Span), ast.UseDecl{
			Path: d.path(j.Path), Alias: alias, Span: d.span(j.Span),
		}), nil
	default:
		return 0, fmt.Errorf("unknown decl node %q", j.Node)
	}
}

func (d *decoder) fnDecl(j *declJSON) (ast.DeclID, error) {
	params := make([]ast.ParamID, len(j.Params))
	for i, p := range j.Params {
		typ, err := d.typeExpr(&p.Type)
		if err != nil {
			return 0, err
		}
		params[i] = d.b.Decls.NewParam(d.span(p.Span), d.name(p.Name), typ)
	}
	ret := ast.NoTypeExprID
	if j.Return != nil {
		var err error
		if ret, err = d.typeExpr(j.Return); err != nil {
			return 0, err
		}
	}
	body := ast.NoExprID
	if j.Body != nil {
		var err error
		if body, err = d.expr(j.Body); err != nil {
			return 0, err
		}
	}
	return d.b.Decls.NewFn(d.span(j.Span), ast.FnDecl{
		Name:       d.name(j.Name),
		NameSpan:   d.span(j.NameSpan),
		Public:     j.Public,
		TypeParams: d.typeParams(j.TypeParams),
		Params:     params,
		Return:     ret,
		Body:       body,
	}), nil
}

func (d *decoder) methodDecls(methods []declJSON) ([]ast.DeclID, error) {
	out := make([]ast.DeclID, len(methods))
	for i := range methods {
		if methods[i].Node != "fn" {
			return nil, fmt.Errorf("method list holds %q, want fn", methods[i].Node)
		}
		id, err := d.fnDecl(&methods[i])
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (d *decoder) typeParams(tps []tparJSON) []ast.TypeParamID {
	if len(tps) == 0 {
		return nil
	}
	out := make([]ast.TypeParamID, len(tps))
	for i, tp := range tps {
		out[i] = d.b.Decls.NewTypeParam(d.span(tp.Span), d.name(tp.Name))
	}
	return out
}

func (d *decoder) typeExpr(j *typeJSON) (ast.TypeExprID, error) {
	sp := d.span(j.Span)
	switch j.Node {
	case "named":
		if len(j.Path) == 0 {
			return 0, fmt.Errorf("named type without path at %v", j.Span)
		}
		args, err := d.typeList(j.Args)
		if err != nil {
			return 0, err
		}
		return d.b.TypeExprs.NewNamed(sp, d.path(j.Path), args), nil
	case "tuple":
		elems, err := d.typeList(j.Elems)
		if err != nil {
			return 0, err
		}
		return d.b.TypeExprs.NewTuple(sp, elems), nil
	case "array":
		if j.Elem == nil || j.Len == nil {
			return 0, fmt.Errorf("array type needs elem and len at %v", j.Span)
		}
		elem, err := d.typeExpr(j.Elem)
		if err != nil {
			return 0, err
		}
		length, err := d.expr(j.Len)
		if err != nil {
			return 0, err
		}
		return d.b.TypeExprs.NewArray(sp, elem, length), nil
	case "ref":
		if j.Elem == nil {
			return 0, fmt.Errorf("ref type without elem at %v", j.Span)
		}
		elem, err := d.typeExpr(j.Elem)
		if err != nil {
			return 0, err
		}
		return d.b.TypeExprs.NewRef(sp, elem), nil
	case "self":
		return d.b.TypeExprs.NewSelf(sp), nil
	case "unit":
		return d.b.TypeExprs.NewUnit(sp), nil
	default:
		return 0, fmt.Errorf("unknown type node %q", j.Node)
	}
}

func (d *decoder) typeList(js []typeJSON) ([]ast.TypeExprID, error) {
	if len(js) == 0 {
		return nil, nil
	}
	out := make([]ast.TypeExprID, len(js))
	for i := range js {
		id, err := d.typeExpr(&js[i])
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

var binaryOps = map[string]ast.BinaryOp{
	"add": ast.BinAdd, "sub": ast.BinSub, "mul": ast.BinMul, "div": ast.BinDiv,
	"eq": ast.BinEq, "ne": ast.BinNe,
	"lt": ast.BinLt, "le": ast.BinLe, "gt": ast.BinGt, "ge": ast.BinGe,
	"and": ast.BinAnd, "or": ast.BinOr,
}

var unaryOps = map[string]ast.UnaryOp{
	"not": ast.UnNot, "ref": ast.UnRef, "deref": ast.UnDeref,
}

func (d *decoder) expr(j *exprJSON) (ast.ExprID, error) {
	sp := d.span(j.Span)
	switch j.Node {
	case "int":
		return d.b.Exprs.NewIntLit(sp, j.Int, j.Width), nil
	case "bool":
		return d.b.Exprs.NewBoolLit(sp, j.Bool), nil
	case "string":
		return d.b.Exprs.NewStringLit(sp, d.b.Intern(j.Str)), nil
	case "unit":
		return d.b.Exprs.NewUnitLit(sp), nil
	case "path":
		if len(j.Path) == 0 {
			return 0, fmt.Errorf("path expr without segments at %v", j.Span)
		}
		return d.b.Exprs.NewPath(sp, d.path(j.Path)...), nil
	case "call":
		if j.Callee == nil {
			return 0, fmt.Errorf("call without callee at %v", j.Span)
		}
		callee, err := d.expr(j.Callee)
		if err != nil {
			return 0, err
		}
		typeArgs, err := d.typeList(j.TypeArgs)
		if err != nil {
			return 0, err
		}
		args, err := d.exprList(j.Args)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewCall(sp, callee, typeArgs, args), nil
	case "binary":
		op, ok := binaryOps[j.Op]
		if !ok {
			return 0, fmt.Errorf("unknown binary op %q", j.Op)
		}
		if j.Left == nil || j.Right == nil {
			return 0, fmt.Errorf("binary %q needs left and right at %v", j.Op, j.Span)
		}
		left, err := d.expr(j.Left)
		if err != nil {
			return 0, err
		}
		right, err := d.expr(j.Right)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewBinary(sp, op, left, right), nil
	case "unary":
		op, ok := unaryOps[j.Op]
		if !ok {
			return 0, fmt.Errorf("unknown unary op %q", j.Op)
		}
		if j.Operand == nil {
			return 0, fmt.Errorf("unary %q without operand at %v", j.Op, j.Span)
		}
		operand, err := d.expr(j.Operand)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewUnary(sp, op, operand), nil
	case "field":
		if j.Recv == nil {
			return 0, fmt.Errorf("field access without receiver at %v", j.Span)
		}
		recv, err := d.expr(j.Recv)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewField(sp, recv, d.name(j.Name)), nil
	case "index":
		if j.Recv == nil || j.Index == nil {
			return 0, fmt.Errorf("index needs recv and index at %v", j.Span)
		}
		recv, err := d.expr(j.Recv)
		if err != nil {
			return 0, err
		}
		index, err := d.expr(j.Index)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewIndex(sp, recv, index), nil
	case "tuple":
		elems, err := d.exprList(j.Elems)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewTuple(sp, elems), nil
	case "array":
		elems, err := d.exprList(j.Elems)
		if err != nil {
			return 0, err
		}
		return d.b.Exprs.NewArray(sp, elems), nil
	case "struct":
		if len(j.Path) == 0 {
			return 0, fmt.Errorf("struct literal without path at %v", j.Span)
		}
		typeArgs, err := d.typeList(j.TypeArgs)
		if err != nil {
			return 0, err
		}
		fields := make([]ast.FieldInit, len(j.Fields))
		for i, f := range j.Fields {
			value, err := d.expr(&f.Value)
			if err != nil {
				return 0, err
			}
			fields[i] = ast.FieldInit{Name: d.name(f.Name), Value: value, Span: d.span(f.Span)}
		}
		return d.b.Exprs.NewStructLit(sp, d.path(j.Path), typeArgs, fields), nil
	case "if":
		if j.Cond == nil || j.Then == nil {
			return 0, fmt.Errorf("if needs cond and then at %v", j.Span)
		}
		cond, err := d.expr(j.Cond)
		if err != nil {
			return 0, err
		}
		then, err := d.expr(j.Then)
		if err != nil {
			return 0, err
		}
		els := ast.NoExprID
		if j.Else != nil {
			if els, err = d.expr(j.Else); err != nil {
				return 0, err
			}
		}
		return d.b.Exprs.NewIf(sp, cond, then, els), nil
	case "match":
		if j.Scrut == nil {
			return 0, fmt.Errorf("match without scrutinee at %v", j.Span)
		}
		scrut, err := d.expr(j.Scrut)
		if err != nil {
			return 0, err
		}
		arms := make([]ast.ArmID, len(j.Arms))
		for i, a := range j.Arms {
			pat, err := d.pattern(&a.Pattern)
			if err != nil {
				return 0, err
			}
			body, err := d.expr(&a.Body)
			if err != nil {
				return 0, err
			}
			arms[i] = d.b.Exprs.NewArm(d.span(a.Span), pat, body)
		}
		return d.b.Exprs.NewMatch(sp, scrut, arms), nil
	case "block":
		stmts := make([]ast.StmtID, len(j.Stmts))
		for i := range j.Stmts {
			id, err := d.stmt(&j.Stmts[i])
			if err != nil {
				return 0, err
			}
			stmts[i] = id
		}
		tail := ast.NoExprID
		if j.Tail != nil {
			var err error
			if tail, err = d.expr(j.Tail); err != nil {
				return 0, err
			}
		}
		return d.b.Exprs.NewBlock(sp, stmts, tail), nil
	case "storage_access":
		return d.b.Exprs.NewStorageAccess(sp, d.name(j.Name)), nil
	default:
		return 0, fmt.Errorf("unknown expr node %q", j.Node)
	}
}

func (d *decoder) exprList(js []exprJSON) ([]ast.ExprID, error) {
	if len(js) == 0 {
		return nil, nil
	}
	out := make([]ast.ExprID, len(js))
	for i := range js {
		id, err := d.expr(&js[i])
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (d *decoder) pattern(j *patJSON) (ast.PatternID, error) {
	sp := d.span(j.Span)
	switch j.Node {
	case "wildcard":
		return d.b.Patterns.NewWildcard(sp), nil
	case "expr":
		if j.Expr == nil {
			return 0, fmt.Errorf("expr pattern without expr at %v", j.Span)
		}
		e, err := d.expr(j.Expr)
		if err != nil {
			return 0, err
		}
		return d.b.Patterns.NewExpr(sp, e), nil
	default:
		return 0, fmt.Errorf("unknown pattern node %q", j.Node)
	}
}

func (d *decoder) stmt(j *stmtJSON) (ast.StmtID, error) {
	sp := d.span(j.Span)
	switch j.Node {
	case "let":
		typ := ast.NoTypeExprID
		if j.Type != nil {
			var err error
			if typ, err = d.typeExpr(j.Type); err != nil {
				return 0, err
			}
		}
		if j.Value == nil {
			return 0, fmt.Errorf("let %q without value at %v", j.Name, j.Span)
		}
		value, err := d.expr(j.Value)
		if err != nil {
			return 0, err
		}
		return d.b.Stmts.NewLet(sp, d.name(j.Name), typ, value), nil
	case "expr":
		if j.Expr == nil {
			return 0, fmt.Errorf("expr stmt without expr at %v", j.Span)
		}
		e, err := d.expr(j.Expr)
		if err != nil {
			return 0, err
		}
		return d.b.Stmts.NewExpr(sp, e), nil
	case "return":
		value := ast.NoExprID
		if j.Value != nil {
			var err error
			if value, err = d.expr(j.Value); err != nil {
				return 0, err
			}
		}
		return d.b.Stmts.NewReturn(sp, value), nil
	default:
		return 0, fmt.Errorf("unknown stmt node %q", j.Node)
	}
}
