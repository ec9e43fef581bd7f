package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// finalize settles what inference left open: numeric variables without a
// narrowing context default to u64, everything else unbound is an error.
// Expression types are canonicalized so the side tables hold no dangling
// variable chains, and deferred generic call sites reach the recorder
// with settled argument lists.
func (c *checker) finalize() {
	seen := make(map[types.TypeID]struct{})
	for id, t := range c.res.ExprTypes {
		if t == types.NoTypeID {
			sp := c.b.Exprs.Get(id).Span
			c.errorf(diag.InternalUntypedNode, sp, "expression was never typed")
			c.res.ExprTypes[id] = c.in.Builtins().Error
			continue
		}
		c.defaultNumerics(t, seen)
	}

	for id, t := range c.res.ExprTypes {
		canon := c.in.Canonical(t)
		c.res.ExprTypes[id] = canon
		if v := c.unboundVar(canon, seen); v != types.NoTypeID {
			info, _ := c.in.VarInfo(v)
			sp := c.b.Exprs.Get(id).Span
			if info != nil && info.Origin.File != 0 {
				sp = info.Origin
			}
			c.errorf(diag.TypeCannotInfer, sp,
				"cannot infer the type here, add an annotation")
			// Bind so one unsolved variable yields one diagnostic.
			c.in.Unify(v, c.in.Builtins().Error)
		}
	}

	if c.recorder != nil {
		for _, p := range c.pendingInsts {
			args := make([]types.TypeID, len(p.Args))
			for i, a := range p.Args {
				c.in.DefaultNumeric(a)
				args[i] = c.in.Canonical(a)
			}
			c.recorder.RecordInstantiation(p.Sym, args, p.At, p.Caller)
		}
	}
}

// defaultNumerics walks a type and binds every unbound numeric variable
// inside it to u64. The seen set keeps recursion through nominal
// instances finite.
func (c *checker) defaultNumerics(id types.TypeID, seen map[types.TypeID]struct{}) {
	id = c.in.Resolve(id)
	if _, done := seen[id]; done {
		return
	}
	seen[id] = struct{}{}
	defer delete(seen, id)

	if c.in.DefaultNumeric(id) {
		return
	}
	tt, ok := c.in.Lookup(id)
	if !ok {
		return
	}
	switch tt.Kind {
	case types.KindArray, types.KindRef:
		c.defaultNumerics(tt.Elem, seen)
	case types.KindTuple:
		if info, ok := c.in.TupleInfo(id); ok {
			for _, el := range info.Elems {
				c.defaultNumerics(el, seen)
			}
		}
	case types.KindNominal:
		if info, ok := c.in.NominalInfo(id); ok {
			for _, arg := range info.Args {
				c.defaultNumerics(arg, seen)
			}
		}
	}
}

// unboundVar returns the first unsolved inference variable inside the
// type, NoTypeID when the type is closed.
func (c *checker) unboundVar(id types.TypeID, seen map[types.TypeID]struct{}) types.TypeID {
	id = c.in.Resolve(id)
	if _, done := seen[id]; done {
		return types.NoTypeID
	}
	seen[id] = struct{}{}
	defer delete(seen, id)

	tt, ok := c.in.Lookup(id)
	if !ok {
		return types.NoTypeID
	}
	switch tt.Kind {
	case types.KindVar:
		return id
	case types.KindArray, types.KindRef:
		return c.unboundVar(tt.Elem, seen)
	case types.KindTuple:
		if info, ok := c.in.TupleInfo(id); ok {
			for _, el := range info.Elems {
				if v := c.unboundVar(el, seen); v != types.NoTypeID {
					return v
				}
			}
		}
	case types.KindNominal:
		if info, ok := c.in.NominalInfo(id); ok {
			for _, arg := range info.Args {
				if v := c.unboundVar(arg, seen); v != types.NoTypeID {
					return v
				}
			}
		}
	}
	return types.NoTypeID
}
