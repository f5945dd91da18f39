package query

import (
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/topk"
)

// Compile-time check to ensure Simple satisfies the evaluator contract.
var _ Evaluator[uint16] = (*Simple[uint16])(nil)

// Simple accumulates into a flat arena with no bookkeeping per posting and
// computes the top-k in a single arena scan at Sort time. The cheapest
// strategy per posting, with no early-termination support.
type Simple[E accumulator.Element] struct {
	evaluator[E]

	arena *accumulator.Simple[E]
	vals  []E

	slots         []uint32
	topResults    *topk.Heap[E]
	neededForTopK uint32
	sorted        bool
}

// NewSimple creates a simple-arena evaluator.
func NewSimple[E accumulator.Element](codex codec.Codec) *Simple[E] {
	q := &Simple[E]{arena: accumulator.NewSimple[E]()}
	q.codex = codex
	return q
}

// Name returns the strategy name.
func (q *Simple[E]) Name() string { return "simple" }

// Init configures the evaluator. Must be called once before first use.
func (q *Simple[E]) Init(primaryKeys []string, documents, topK uint32, widthHint int) error {
	if err := q.init(primaryKeys, documents, topK); err != nil {
		return err
	}
	if err := q.arena.Init(documents, widthHint); err != nil {
		return err
	}
	q.vals = q.arena.Values()
	q.slots = make([]uint32, topK)
	q.topResults = topk.NewHeap(q.slots, q.vals)
	q.Rewind(0, 1, 0)
	return nil
}

// Rewind clears per-query state ready for re-use.
func (q *Simple[E]) Rewind(_, _, _ E) {
	q.sorted = false
	q.arena.Rewind()
	q.neededForTopK = q.topK
	q.rewind()
}

// AddRSV adds score to the accumulator for id. Never returns an error; the
// top-k is computed entirely in Sort.
func (q *Simple[E]) AddRSV(id uint32, score E) error {
	q.arena.Add(id, score)
	return nil
}

// DecodeAndProcess decodes one postings segment and folds it into the
// accumulators at the given impact.
func (q *Simple[E]) DecodeAndProcess(impact E, integers int, compressed []byte) error {
	q.impact = impact

	ids, err := q.decode(integers, compressed)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if q.filter != nil && !q.filter.Contains(id) {
			continue
		}
		q.arena.Add(id, q.impact)
	}
	return nil
}

// Sort scans the arena, builds the top-k heap incrementally, then orders the
// filled slots. Idempotent within a query.
func (q *Simple[E]) Sort() {
	if q.sorted {
		return
	}

	for id := uint32(0); id < q.documents; id++ {
		value := q.vals[id]
		if value == 0 {
			continue
		}

		if q.neededForTopK > 0 {
			q.neededForTopK--
			q.slots[q.neededForTopK] = id
			if q.neededForTopK == 0 {
				q.topResults.MakeHeap()
			}
			continue
		}

		// Full heap: a new value enters only by beating the root,
		// tie-break included.
		root := q.slots[0]
		if value > q.vals[root] || (value == q.vals[root] && id > root) {
			q.topResults.PushBack(id)
		}
	}

	topk.SortAscending(q.slots[q.neededForTopK:], q.vals)
	q.sorted = true
}

// GetFirst returns the highest-scoring result, or nil if there are none.
func (q *Simple[E]) GetFirst() *Result[E] {
	q.Sort()
	q.nextResultLocation = 0
	return q.GetNext()
}

// GetNext returns the next result in rank order, or nil at the end.
func (q *Simple[E]) GetNext() *Result[E] {
	if q.nextResultLocation >= q.topK-q.neededForTopK {
		return nil
	}

	id := q.arena.Index(q.slots[q.topK-q.nextResultLocation-1])
	q.nextResult.DocumentID = id
	q.nextResult.PrimaryKey = q.primaryKey(id)
	q.nextResult.Score = q.arena.Get(id)

	q.nextResultLocation++

	return &q.nextResult
}
