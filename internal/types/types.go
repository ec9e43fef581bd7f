package types

import "fmt"

// TypeID uniquely identifies a type inside the interner. Handles are opaque:
// two IDs denote the same type only after Resolve/Unify says so.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of type entries.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the error-recovery sentinel: a previous diagnostic
	// already covers this position, so unification against it always
	// succeeds. Distinct from "no information".
	KindError
	KindUnit
	KindNever
	KindBool
	KindString
	// KindNumeric is an unsigned integer; WidthAny means the width is
	// still pending inference.
	KindNumeric
	KindTuple
	KindArray
	KindRef
	// KindNominal is a struct or enum declaration instantiated with type
	// arguments; identity is declaration identity plus argument identity.
	KindNominal
	// KindParam is a rigid generic type parameter; replaced only through
	// an explicit substitution.
	KindParam
	// KindVar is an inference variable; bound at most once per
	// unification, forwarding to its binding afterwards.
	KindVar
	// KindSelf is the receiver marker inside trait and impl bodies; it
	// forwards to the impl target once that is known.
	KindSelf
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindNumeric:
		return "numeric"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindRef:
		return "ref"
	case KindNominal:
		return "nominal"
	case KindParam:
		return "param"
	case KindVar:
		return "var"
	case KindSelf:
		return "Self"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of numeric types.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

func (w Width) String() string {
	if w == WidthAny {
		return "{integer}"
	}
	return fmt.Sprintf("u%d", uint8(w))
}

// ArrayLengthUnresolved marks an array whose length expression has not been
// evaluated yet (or could not be, after an error).
const ArrayLengthUnresolved = ^uint32(0)

// Type is a compact descriptor for any type entry. Aggregate kinds keep
// their metadata in side tables addressed through Payload.
type Type struct {
	Kind    Kind
	Width   Width  // numeric width
	Elem    TypeID // array/ref element, Self target
	Count   uint32 // array length
	Payload uint32 // slot into nominal/tuple/param/var side tables
}

// MakeNumeric describes an unsigned integer of the given width (WidthAny for
// a literal whose width is still open).
func MakeNumeric(width Width) Type {
	return Type{Kind: KindNumeric, Width: width}
}

// MakeArray describes [elem; count].
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeRef describes a reference to elem. References are the indirection that
// makes recursive nominal types legal.
func MakeRef(elem TypeID) Type {
	return Type{Kind: KindRef, Elem: elem}
}
