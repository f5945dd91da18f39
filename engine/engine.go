// Package engine drives whole queries against a loaded index: parsing,
// impact-ordered segment scheduling, anytime truncation, and result
// materialisation.
//
// The engine owns a pool of evaluators, one per worker. Queries from
// concurrent callers each borrow a worker for their duration; nothing
// mutable is shared between workers, so any number of queries may run in
// parallel while each individual query stays single-threaded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/index"
	"github.com/hupe1980/impactgo/query"
	"github.com/hupe1980/impactgo/resource"
)

// Options contains configuration options for the engine.
type Options struct {
	// Strategy selects the evaluator: "simple", "1d_heap", "2d_heap" or
	// "blockmax". Unknown names fall back to query.DefaultStrategy with a
	// diagnostic.
	Strategy string

	// TopK is the number of results each query returns.
	TopK uint32

	// Workers is the number of evaluators kept in the pool, i.e. the number
	// of queries that can evaluate at the same time.
	Workers int

	// WidthHint is the row-width hint handed to the accumulator arena.
	// Zero picks a width near sqrt(documents).
	WidthHint int

	// PostingsBudget caps the number of postings processed per query.
	// Segments are processed in descending impact order, so truncation
	// degrades the tail of the ranking first. Zero means unlimited.
	PostingsBudget uint64

	// Controller, when set, admits arena memory and bounds worker
	// concurrency across engines.
	Controller *resource.Controller

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions contains the default engine configuration.
var DefaultOptions = Options{
	Strategy: query.DefaultStrategy,
	TopK:     10,
	Workers:  1,
}

// SearchOptions controls one query.
type SearchOptions struct {
	// Oracle, when non-zero, is a caller-supplied top-k lower bound. With a
	// true bound the evaluator stops the instant the top-k fills, provably
	// without changing the result.
	Oracle uint32

	// Filter restricts evaluation to the given document set.
	Filter *roaring.Bitmap
}

// WithOracle arms the oracle lower bound for this query.
func WithOracle(bound uint32) func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.Oracle = bound
	}
}

// WithFilter restricts this query to the given document set.
func WithFilter(filter *roaring.Bitmap) func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.Filter = filter
	}
}

// Engine evaluates queries against one loaded index.
type Engine[E accumulator.Element] struct {
	idx      *index.Reader
	opts     Options
	workers  chan query.Evaluator[E]
	reserved int64
}

// New creates an engine over a loaded index.
func New[E accumulator.Element](idx *index.Reader, optFns ...func(o *Options)) (*Engine[E], error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	e := &Engine[E]{
		idx:     idx,
		opts:    opts,
		workers: make(chan query.Evaluator[E], opts.Workers),
	}

	// Arena, flags and decode scratch per worker, reserved up front.
	var element E
	perWorker := int64(idx.Documents()) * int64(unsafe.Sizeof(element)+5)
	e.reserved = perWorker * int64(opts.Workers)
	if err := opts.Controller.AcquireMemory(context.Background(), e.reserved); err != nil {
		return nil, fmt.Errorf("engine: arena memory: %w", err)
	}

	for i := 0; i < opts.Workers; i++ {
		ev, known := query.ByName[E](opts.Strategy, idx.Codec())
		if !known && i == 0 {
			opts.Logger.Warn("unknown accumulator strategy, using default",
				"strategy", opts.Strategy,
				"default", query.DefaultStrategy,
			)
		}
		if err := ev.Init(idx.PrimaryKeys(), idx.Documents(), opts.TopK, opts.WidthHint); err != nil {
			opts.Controller.ReleaseMemory(e.reserved)
			return nil, err
		}
		e.workers <- ev
	}

	opts.Logger.Debug("engine ready",
		"strategy", opts.Strategy,
		"documents", idx.Documents(),
		"top_k", opts.TopK,
		"workers", opts.Workers,
	)

	return e, nil
}

// Close releases the engine's memory reservation.
func (e *Engine[E]) Close() {
	e.opts.Controller.ReleaseMemory(e.reserved)
	e.reserved = 0
}

// Search evaluates one query and returns its ranked top-k.
func (e *Engine[E]) Search(ctx context.Context, text string, optFns ...func(o *SearchOptions)) ([]query.Result[E], error) {
	var sopts SearchOptions
	for _, fn := range optFns {
		fn(&sopts)
	}

	if err := e.opts.Controller.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer e.opts.Controller.ReleaseWorker()

	var ev query.Evaluator[E]
	select {
	case ev = <-e.workers:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { e.workers <- ev }()

	bound := E(1)
	if sopts.Oracle != 0 {
		bound = E(sopts.Oracle)
	}
	ev.Rewind(0, bound, ^E(0))
	ev.Parse(text)
	if sopts.Filter != nil {
		ev.SetFilter(sopts.Filter)
	}

	// Gather every (term, segment) pair of the query and process across
	// terms in descending impact order, so an exhausted budget costs the
	// least significant contributions first.
	var schedule []index.Segment
	for _, term := range ev.Terms() {
		segments, ok := e.idx.Lookup(term)
		if !ok {
			continue
		}
		schedule = append(schedule, segments...)
	}
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].Impact > schedule[j].Impact
	})

	var processed uint64
	for _, segment := range schedule {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.opts.PostingsBudget > 0 && processed+uint64(segment.Count) > e.opts.PostingsBudget {
			break
		}

		err := ev.DecodeAndProcess(E(segment.Impact), int(segment.Count), segment.Postings)
		if errors.Is(err, query.ErrEarlyDone) {
			break
		}
		if err != nil {
			return nil, err
		}
		processed += uint64(segment.Count)
	}

	var results []query.Result[E]
	for r := ev.GetFirst(); r != nil; r = ev.GetNext() {
		results = append(results, *r)
	}
	return results, nil
}

// SearchBatch evaluates the given queries in parallel, one worker each, and
// returns the result lists in query order.
func (e *Engine[E]) SearchBatch(ctx context.Context, queries []string, optFns ...func(o *SearchOptions)) ([][]query.Result[E], error) {
	results := make([][]query.Result[E], len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, text := range queries {
		g.Go(func() error {
			r, err := e.Search(ctx, text, optFns...)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
