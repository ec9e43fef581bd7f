package mono

import (
	"github.com/FuelLabs/sway-sub019/internal/namespace"
	"github.com/FuelLabs/sway-sub019/internal/sema"
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// Recorder implements sema.InstantiationRecorder on top of an
// InstantiationMap.
type Recorder struct {
	Map *InstantiationMap
}

var _ sema.InstantiationRecorder = (*Recorder)(nil)

func NewRecorder(m *InstantiationMap) *Recorder {
	return &Recorder{Map: m}
}

func (r *Recorder) RecordInstantiation(sym namespace.SymbolID, args []types.TypeID, at source.Span, caller namespace.SymbolID) {
	if r == nil || r.Map == nil {
		return
	}
	r.Map.Record(sym, args, at, caller)
}
