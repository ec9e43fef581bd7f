package types

// UnifyErrorKind classifies why unification failed.
type UnifyErrorKind uint8

const (
	// UnifyMismatch means the two types cannot denote the same type.
	UnifyMismatch UnifyErrorKind = iota
	// UnifyInfinite means the occurs check fired: binding would create a
	// type containing itself.
	UnifyInfinite
	// UnifyArity means two instances of the same nominal declaration
	// carry different numbers of type arguments.
	UnifyArity
	// UnifyLength means two arrays of the same element type have
	// different known lengths.
	UnifyLength
	// UnifyNumeric means a numeric-only variable met a non-numeric type.
	UnifyNumeric
)

// UnifyError reports a failed unification. Left and Right are the resolved
// types at the point of failure (possibly components of the original pair).
type UnifyError struct {
	Kind  UnifyErrorKind
	Left  TypeID
	Right TypeID
}

// Unify attempts to make a and b denote the same type, binding inference
// variables as needed. The outcome is symmetric in its arguments; only the
// expected/found roles in rendered messages depend on order.
func (in *Interner) Unify(a, b TypeID) *UnifyError {
	a = in.Resolve(a)
	b = in.Resolve(b)
	if a == b {
		return nil
	}
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB {
		return &UnifyError{Kind: UnifyMismatch, Left: a, Right: b}
	}

	// The error sentinel unifies with everything: the position already has
	// a diagnostic and must not spawn derived ones.
	if ta.Kind == KindError || tb.Kind == KindError {
		return nil
	}

	if ta.Kind == KindVar {
		return in.bindChecked(a, b, tb)
	}
	if tb.Kind == KindVar {
		return in.bindChecked(b, a, ta)
	}

	// never is the type of diverging expressions; it meets any
	// expectation.
	if ta.Kind == KindNever || tb.Kind == KindNever {
		return nil
	}

	switch {
	case ta.Kind == KindNumeric && tb.Kind == KindNumeric:
		// Same width was caught by a == b; an unconstrained side
		// narrows to the constrained one.
		if ta.Width == WidthAny || tb.Width == WidthAny {
			return nil
		}
		return &UnifyError{Kind: UnifyMismatch, Left: a, Right: b}

	case ta.Kind == KindNominal && tb.Kind == KindNominal:
		ia := &in.nominals[ta.Payload]
		ib := &in.nominals[tb.Payload]
		if ia.Owner != ib.Owner {
			return &UnifyError{Kind: UnifyMismatch, Left: a, Right: b}
		}
		if len(ia.Args) != len(ib.Args) {
			return &UnifyError{Kind: UnifyArity, Left: a, Right: b}
		}
		for i := range ia.Args {
			if err := in.Unify(ia.Args[i], ib.Args[i]); err != nil {
				return err
			}
		}
		return nil

	case ta.Kind == KindTuple && tb.Kind == KindTuple:
		ea := in.tuples[ta.Payload].Elems
		eb := in.tuples[tb.Payload].Elems
		if len(ea) != len(eb) {
			return &UnifyError{Kind: UnifyMismatch, Left: a, Right: b}
		}
		for i := range ea {
			if err := in.Unify(ea[i], eb[i]); err != nil {
				return err
			}
		}
		return nil

	case ta.Kind == KindArray && tb.Kind == KindArray:
		if ta.Count != tb.Count &&
			ta.Count != ArrayLengthUnresolved && tb.Count != ArrayLengthUnresolved {
			return &UnifyError{Kind: UnifyLength, Left: a, Right: b}
		}
		return in.Unify(ta.Elem, tb.Elem)

	case ta.Kind == KindRef && tb.Kind == KindRef:
		return in.Unify(ta.Elem, tb.Elem)

	default:
		return &UnifyError{Kind: UnifyMismatch, Left: a, Right: b}
	}
}

// bindChecked forwards the unbound variable varID to target after the
// occurs check and the numeric-only restriction.
func (in *Interner) bindChecked(varID, target TypeID, targetType Type) *UnifyError {
	if in.occurs(varID, target) {
		return &UnifyError{Kind: UnifyInfinite, Left: varID, Right: target}
	}
	varTT := in.MustLookup(varID)
	info := &in.vars[varTT.Payload]
	if info.Numeric {
		switch targetType.Kind {
		case KindNumeric, KindNever:
			// ok
		case KindVar:
			// Propagate the restriction to the representative.
			other := &in.vars[targetType.Payload]
			other.Numeric = true
		default:
			return &UnifyError{Kind: UnifyNumeric, Left: varID, Right: target}
		}
	}
	in.bindVar(varID, target)
	return nil
}
