package types

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/FuelLabs/sway-sub019/internal/source"
)

// ParamInfo stores metadata about a generic type parameter. Owner is the
// opaque declaration handle; Index is the position in the parameter list.
type ParamInfo struct {
	Name  source.StringID
	Owner uint32
	Index uint32
}

// RegisterParam allocates (or finds) the rigid type for a generic parameter.
func (in *Interner) RegisterParam(name source.StringID, owner, index uint32) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindParam {
			continue
		}
		info := in.params[tt.Payload]
		if info.Owner == owner && info.Index == index {
			return id
		}
	}
	in.params = append(in.params, ParamInfo{Name: name, Owner: owner, Index: index})
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("param info overflow: %w", err))
	}
	return in.internRaw(Type{Kind: KindParam, Payload: slot})
}

// ParamInfo returns metadata for a generic parameter TypeID.
func (in *Interner) ParamInfo(id TypeID) (*ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindParam {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

// VarInfo stores the state of one inference variable.
type VarInfo struct {
	Origin source.Span
	Bound  TypeID
	// Numeric restricts the variable to numeric types; introduced by
	// integer literals whose width is still open.
	Numeric bool
}

// FreshVar allocates an unbound inference variable. Each call yields a
// distinct TypeID; variables never deduplicate.
func (in *Interner) FreshVar(origin source.Span) TypeID {
	return in.freshVar(origin, false)
}

// FreshNumericVar allocates an inference variable that may only resolve to a
// numeric type.
func (in *Interner) FreshNumericVar(origin source.Span) TypeID {
	return in.freshVar(origin, true)
}

func (in *Interner) freshVar(origin source.Span, numeric bool) TypeID {
	in.vars = append(in.vars, VarInfo{Origin: origin, Numeric: numeric})
	slot, err := safecast.Conv[uint32](len(in.vars) - 1)
	if err != nil {
		panic(fmt.Errorf("var info overflow: %w", err))
	}
	return in.internRaw(Type{Kind: KindVar, Payload: slot})
}

// VarInfo returns the state of an inference variable TypeID.
func (in *Interner) VarInfo(id TypeID) (*VarInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindVar {
		return nil, false
	}
	return &in.vars[tt.Payload], true
}

// DefaultNumeric binds an unbound numeric variable to u64, the native
// word. Non-variables and non-numeric variables are left alone. Reports
// whether a binding happened.
func (in *Interner) DefaultNumeric(id TypeID) bool {
	resolved := in.Resolve(id)
	tt, ok := in.Lookup(resolved)
	if !ok || tt.Kind != KindVar {
		return false
	}
	info := &in.vars[tt.Payload]
	if info.Bound != NoTypeID || !info.Numeric {
		return false
	}
	info.Bound = in.builtins.U64
	return true
}

// MakeSelf returns the Self marker. With a known target the marker forwards
// to it during Resolve; without one it stays rigid.
func (in *Interner) MakeSelf(target TypeID) TypeID {
	return in.Intern(Type{Kind: KindSelf, Elem: target})
}

// bindVar forwards an unbound variable to target. Binding twice is a bug in
// the unifier, not a user error.
func (in *Interner) bindVar(id, target TypeID) {
	tt := in.MustLookup(id)
	if tt.Kind != KindVar {
		panic("types: bindVar on non-variable")
	}
	info := &in.vars[tt.Payload]
	if info.Bound != NoTypeID {
		panic("types: inference variable bound twice")
	}
	info.Bound = target
}

// occurs reports whether the variable occurs inside t (after resolution).
// Binding a variable to a type containing itself would create an infinite
// type.
func (in *Interner) occurs(varID, t TypeID) bool {
	t = in.Resolve(t)
	if t == varID {
		return true
	}
	tt, ok := in.Lookup(t)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindArray, KindRef:
		return in.occurs(varID, tt.Elem)
	case KindTuple:
		for _, elem := range in.tuples[tt.Payload].Elems {
			if in.occurs(varID, elem) {
				return true
			}
		}
	case KindNominal:
		for _, arg := range in.nominals[tt.Payload].Args {
			if in.occurs(varID, arg) {
				return true
			}
		}
	}
	return false
}
