package types

import (
	"fmt"
	"slices"
)

// Subst is an ordered mapping from generic-parameter TypeIDs to concrete
// TypeIDs, scoped to one declaration instantiation.
type Subst struct {
	params []TypeID
	args   []TypeID
	index  map[TypeID]TypeID
}

func NewSubst() *Subst {
	return &Subst{index: make(map[TypeID]TypeID, 4)}
}

// MakeSubst pairs params with args positionally.
func MakeSubst(params, args []TypeID) (*Subst, error) {
	if len(params) != len(args) {
		return nil, fmt.Errorf("substitution arity mismatch: %d parameters, %d arguments", len(params), len(args))
	}
	s := NewSubst()
	for i := range params {
		if err := s.Bind(params[i], args[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Bind adds one parameter mapping. Domain entries must be distinct.
func (s *Subst) Bind(param, arg TypeID) error {
	if _, dup := s.index[param]; dup {
		return fmt.Errorf("substitution already binds parameter %d", param)
	}
	s.params = append(s.params, param)
	s.args = append(s.args, arg)
	s.index[param] = arg
	return nil
}

// Lookup returns the mapping for param, if any.
func (s *Subst) Lookup(param TypeID) (TypeID, bool) {
	if s == nil {
		return NoTypeID, false
	}
	arg, ok := s.index[param]
	return arg, ok
}

// Len reports the number of bindings.
func (s *Subst) Len() int {
	if s == nil {
		return 0
	}
	return len(s.params)
}

// Args returns the arguments in binding order.
func (s *Subst) Args() []TypeID {
	if s == nil {
		return nil
	}
	return slices.Clone(s.args)
}

// Params returns the domain in binding order.
func (s *Subst) Params() []TypeID {
	if s == nil {
		return nil
	}
	return slices.Clone(s.params)
}

// Apply produces a structural copy of id with every parameter in the
// substitution's domain replaced, recursively. Bound inference variables are
// chased, so the result is also fully resolved. Used both for scoped
// call-site copies and for permanent monomorphized copies.
func (in *Interner) Apply(s *Subst, id TypeID) TypeID {
	id = in.Resolve(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindParam:
		if arg, ok := s.Lookup(id); ok {
			return in.Resolve(arg)
		}
		return id
	case KindSelf:
		if tt.Elem != NoTypeID {
			return in.Apply(s, tt.Elem)
		}
		return id
	case KindArray:
		elem := in.Apply(s, tt.Elem)
		if elem == tt.Elem {
			return id
		}
		return in.Intern(MakeArray(elem, tt.Count))
	case KindRef:
		elem := in.Apply(s, tt.Elem)
		if elem == tt.Elem {
			return id
		}
		return in.Intern(MakeRef(elem))
	case KindTuple:
		elems := in.tuples[tt.Payload].Elems
		out := make([]TypeID, len(elems))
		changed := false
		for i, e := range elems {
			out[i] = in.Apply(s, e)
			if out[i] != e {
				changed = true
			}
		}
		if !changed {
			return id
		}
		return in.Tuple(out)
	case KindNominal:
		return in.applyNominal(s, id, tt)
	default:
		return id
	}
}

// applyNominal substitutes through a nominal instance. The new instance is
// registered before its fields are substituted so recursive types (through
// references) terminate.
func (in *Interner) applyNominal(s *Subst, id TypeID, tt Type) TypeID {
	info := in.nominals[tt.Payload]
	args := make([]TypeID, len(info.Args))
	changed := false
	for i, a := range info.Args {
		args[i] = in.Apply(s, a)
		if args[i] != a {
			changed = true
		}
	}
	if !changed {
		return id
	}
	if existing, ok := in.FindNominal(info.Owner, args); ok {
		return existing
	}
	inst := in.RegisterNominal(info.Kind, info.Name, info.Owner, info.Decl, args)

	if len(info.Fields) > 0 {
		fields := make([]Field, len(info.Fields))
		copy(fields, info.Fields)
		for i := range fields {
			fields[i].Type = in.Apply(s, fields[i].Type)
		}
		in.SetFields(inst, fields)
	}
	if len(info.Variants) > 0 {
		variants := make([]Variant, len(info.Variants))
		copy(variants, info.Variants)
		for i := range variants {
			variants[i].Payload = in.Apply(s, variants[i].Payload)
		}
		in.SetVariants(inst, variants)
	}
	return inst
}

var emptySubst = NewSubst()

// Canonical deeply resolves id, chasing variable bindings inside aggregates,
// and re-interns the result. Monomorphization keys on canonical IDs so that
// two spellings of the same type collapse to one instantiation.
func (in *Interner) Canonical(id TypeID) TypeID {
	return in.Apply(emptySubst, id)
}
