package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. Codes are banded by the pass that
// produces them so renderers and tests can filter by family.
type Code uint16

const (
	UnknownCode Code = 0

	// Name resolution (3000-3999).
	NameInfo          Code = 3000
	NameNotFound      Code = 3001
	NameCollision     Code = 3002
	NamePrivate       Code = 3003
	NameAmbiguous     Code = 3004
	NameAmbiguousImpl Code = 3005
	NameNotAType      Code = 3006
	NameNotCallable   Code = 3007
	NameArityOverload Code = 3008
	NameUnusedImport  Code = 3009

	// Type checking (4000-4999).
	TypeInfo             Code = 4000
	TypeMismatch         Code = 4001
	TypeArityMismatch    Code = 4002
	TypeInfinite         Code = 4003
	TypePatternMismatch  Code = 4004
	TypeArgCount         Code = 4005
	TypeFieldUnknown     Code = 4006
	TypeFieldMissing     Code = 4007
	TypeNotIndexable     Code = 4008
	TypeCondNotBool      Code = 4009
	TypeNumericAmbiguous Code = 4010
	TypeNoSelfContext    Code = 4011
	TypeCannotInfer      Code = 4012

	// Recursion / dependency cycles (5000-5999).
	RecursionInfo        Code = 5000
	RecursionValueCycle  Code = 5001
	RecursionUnboundInst Code = 5002
	RecursionDepth       Code = 5003

	// Constant contexts (6000-6999).
	ConstInfo        Code = 6000
	ConstRequired    Code = 6001
	ConstNonConstLen Code = 6002
	ConstStorageInit Code = 6003

	// Program-kind validation (7000-7999).
	ProgInfo           Code = 7000
	ProgMissingMain    Code = 7001
	ProgPredicateBool  Code = 7002
	ProgStorageContext Code = 7003

	// Internal consistency (9000-9999). These are compiler bugs, never
	// ordinary user errors; the driver aborts when one is reported.
	InternalInfo           Code = 9000
	InternalUntypedNode    Code = 9001
	InternalDanglingHandle Code = 9002
)

// Family returns the thousand-band prefix for grouping.
func (c Code) Family() Code {
	return c / 1000 * 1000
}

// IsInternal reports whether the code signals an internal-consistency bug.
func (c Code) IsInternal() bool {
	return c >= 9000
}

func (c Code) String() string {
	return fmt.Sprintf("SW%04d", uint16(c))
}
