package query

import (
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/codec"
)

// DefaultStrategy is the evaluator used when a requested strategy name is
// unknown.
const DefaultStrategy = "2d_heap"

// Strategies lists the known strategy names.
var Strategies = []string{"simple", "1d_heap", "2d_heap", "blockmax"}

// ByName returns a fresh evaluator for the named strategy sharing the given
// codec. Unknown names fall back to DefaultStrategy; the second return value
// reports whether the name was recognised so callers can log a diagnostic.
func ByName[E accumulator.Element](name string, codex codec.Codec) (Evaluator[E], bool) {
	switch name {
	case "2d_heap":
		return NewHeap[E]("2d_heap", codex, accumulator.NewTwoD[E]()), true
	case "1d_heap":
		return NewHeap[E]("1d_heap", codex, accumulator.NewSimple[E]()), true
	case "simple":
		return NewSimple[E](codex), true
	case "blockmax":
		return NewBlockMax[E](codex), true
	default:
		return NewHeap[E]("2d_heap", codex, accumulator.NewTwoD[E]()), false
	}
}
