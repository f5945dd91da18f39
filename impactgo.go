package impactgo

import (
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/query"
)

// Options contains configuration options for the factory.
type Options struct {
	// Logger receives diagnostics, e.g. when an unknown strategy name falls
	// back to the default.
	Logger *Logger
}

// DefaultOptions contains the default factory configuration.
var DefaultOptions = Options{}

// New returns a fresh evaluator for the named strategy, sharing the given
// codec. Known names are "simple", "1d_heap", "2d_heap" and "blockmax";
// unknown names fall back to query.DefaultStrategy with a diagnostic.
//
// The element type parameter fixes the accumulator width: uint8 for tightly
// quantised indexes, uint16 for the common case, uint32 when impact sums can
// grow large.
func New[E accumulator.Element](strategy string, codex codec.Codec, optFns ...func(o *Options)) query.Evaluator[E] {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = DefaultLogger()
	}

	evaluator, known := query.ByName[E](strategy, codex)
	if !known {
		opts.Logger.WithStrategy(strategy).Warn("unknown accumulator strategy, using default",
			"default", query.DefaultStrategy,
		)
	}
	return evaluator
}
