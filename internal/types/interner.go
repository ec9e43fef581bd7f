package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for types every pass needs at hand.
type Builtins struct {
	Error   TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	String  TypeID
	Numeric TypeID // unconstrained width
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
}

// Interner owns the type table of one compilation. It is passed by
// reference everywhere and never shared between compilations; concurrent
// mutation requires external synchronization (the driver partitions work so
// none happens).
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	nominals []NominalInfo
	tuples   []TupleInfo
	params   []ParamInfo
	vars     []VarInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// Slot 0 of every side table is a reserved invalid sentinel.
	in.nominals = append(in.nominals, NominalInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.params = append(in.params, ParamInfo{})
	in.vars = append(in.vars, VarInfo{})

	in.types = append(in.types, Type{Kind: KindInvalid}) // NoTypeID
	in.builtins.Error = in.internRaw(Type{Kind: KindError})
	in.builtins.Unit = in.internRaw(Type{Kind: KindUnit})
	in.builtins.Never = in.internRaw(Type{Kind: KindNever})
	in.builtins.Bool = in.internRaw(Type{Kind: KindBool})
	in.builtins.String = in.internRaw(Type{Kind: KindString})
	in.builtins.Numeric = in.internRaw(MakeNumeric(WidthAny))
	in.builtins.U8 = in.internRaw(MakeNumeric(Width8))
	in.builtins.U16 = in.internRaw(MakeNumeric(Width16))
	in.builtins.U32 = in.internRaw(MakeNumeric(Width32))
	in.builtins.U64 = in.internRaw(MakeNumeric(Width64))
	return in
}

// Builtins returns TypeIDs for the primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the descriptor has a stable TypeID. Structurally identical
// descriptors always yield the same ID; inference variables are exempt (use
// FreshVar) because each must stay distinct until bound.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if t.Kind == KindVar {
		panic("types: inference variables are allocated with FreshVar")
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw appends the descriptor without consulting the dedup map.
func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("type table overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	if t.Kind != KindVar {
		in.index[typeKey(t)] = id
	}
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of entries including builtins and the sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

// Resolve follows forwarding chains: a bound inference variable forwards to
// its binding, a Self marker with a known target forwards to the target.
// Unbound variables and everything else resolve to themselves.
func (in *Interner) Resolve(id TypeID) TypeID {
	for {
		tt, ok := in.Lookup(id)
		if !ok {
			return id
		}
		switch tt.Kind {
		case KindVar:
			bound := in.vars[tt.Payload].Bound
			if bound == NoTypeID {
				return id
			}
			id = bound
		case KindSelf:
			if tt.Elem == NoTypeID {
				return id
			}
			id = tt.Elem
		default:
			return id
		}
	}
}

// IsError reports whether the resolved type is the error-recovery sentinel.
func (in *Interner) IsError(id TypeID) bool {
	tt, ok := in.Lookup(in.Resolve(id))
	return ok && tt.Kind == KindError
}

// IsConcrete reports whether the resolved type contains no inference
// variables, generic parameters, unresolved Self markers, or the error
// sentinel. Every node of a successfully typed tree must be concrete.
func (in *Interner) IsConcrete(id TypeID) bool {
	id = in.Resolve(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindError, KindVar, KindParam, KindInvalid:
		return false
	case KindSelf:
		return false
	case KindArray:
		if tt.Count == ArrayLengthUnresolved {
			return false
		}
		return in.IsConcrete(tt.Elem)
	case KindRef:
		return in.IsConcrete(tt.Elem)
	case KindTuple:
		for _, elem := range in.tuples[tt.Payload].Elems {
			if !in.IsConcrete(elem) {
				return false
			}
		}
		return true
	case KindNominal:
		for _, arg := range in.nominals[tt.Payload].Args {
			if !in.IsConcrete(arg) {
				return false
			}
		}
		return true
	case KindNumeric:
		return tt.Width != WidthAny
	default:
		return true
	}
}

type typeKey struct {
	Kind    Kind
	Width   Width
	Elem    TypeID
	Count   uint32
	Payload uint32
}
