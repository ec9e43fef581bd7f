package sema

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
	"github.com/FuelLabs/sway-sub019/internal/types"
)

// localBinding is one let or parameter binding in a function body.
type localBinding struct {
	Type types.TypeID
	Span source.Span
}

// scopeStack tracks lexical locals during body elaboration. Blocks push a
// frame; inner bindings shadow outer ones and module-level names.
type scopeStack struct {
	frames []map[source.StringID]localBinding
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[source.StringID]localBinding, 4))
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scopeStack) declare(name source.StringID, b localBinding) {
	s.frames[len(s.frames)-1][name] = b
}

func (s *scopeStack) lookup(name source.StringID) (localBinding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, true
		}
	}
	return localBinding{}, false
}
