package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// InstantiationRecorder observes generic function instantiations as the
// body pass discovers them. Args are the canonical type arguments in
// declaration order; at is the call site; caller is the function whose
// body contains the site (NoSymbolID for const and storage
// initializers). Inside a generic caller the arguments may still contain
// that caller's rigid parameters; the scheduler substitutes them when the
// caller itself is instantiated.
type InstantiationRecorder interface {
	RecordInstantiation(sym namespace.SymbolID, args []types.TypeID, at source.Span, caller namespace.SymbolID)
}

// NopRecorder discards instantiations; used when only diagnostics are
// wanted.
type NopRecorder struct{}

func (NopRecorder) RecordInstantiation(namespace.SymbolID, []types.TypeID, source.Span, namespace.SymbolID) {
}
