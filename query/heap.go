package query

import (
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/topk"
)

// Compile-time check to ensure Heap satisfies the evaluator contract.
var _ Evaluator[uint16] = (*Heap[uint16])(nil)

// Heap maintains the top-k heap during accumulation. Instantiated over the
// 2-D arena it is the "2d_heap" strategy, over the simple arena "1d_heap".
//
// Maintaining the heap per posting costs a few branches on the hot path but
// buys early termination: with an oracle lower bound, the query is over the
// instant the heap fills.
type Heap[E accumulator.Element] struct {
	evaluator[E]

	name  string
	arena accumulator.Arena[E]
	vals  []E

	slots          []uint32
	topResults     *topk.Heap[E]
	neededForTopK  uint32
	topKLowerBound E
	sorted         bool
}

// NewHeap creates a heap-maintenance evaluator over the given arena.
func NewHeap[E accumulator.Element](name string, codex codec.Codec, arena accumulator.Arena[E]) *Heap[E] {
	q := &Heap[E]{name: name, arena: arena}
	q.codex = codex
	return q
}

// Name returns the strategy name.
func (q *Heap[E]) Name() string { return q.name }

// Init configures the evaluator. Must be called once before first use.
func (q *Heap[E]) Init(primaryKeys []string, documents, topK uint32, widthHint int) error {
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
func (q *Heap[E]) Rewind(_, topKLowerBound, _ E) {
	q.sorted = false
	q.arena.Rewind()
	q.neededForTopK = q.topK
	q.topKLowerBound = topKLowerBound
	q.rewind()
}

// AddRSV adds score to the accumulator for id and keeps the heap and the
// lower bound current. Returns ErrEarlyDone when an oracle bound proves the
// top-k final.
func (q *Heap[E]) AddRSV(id uint32, score E) error {
	q.arena.Add(id, score)
	current := q.vals[id]

	// Below the bottom of the heap: cannot enter the top-k.
	if current < q.topKLowerBound {
		return nil
	}

	// The heap is not full yet, so change only happens on a new arrival,
	// i.e. when the old value was still below the bound.
	if q.neededForTopK > 0 {
		if current-score < q.topKLowerBound {
			q.neededForTopK--
			q.slots[q.neededForTopK] = id
			if q.neededForTopK == 0 {
				q.topResults.MakeHeap()
				if q.topKLowerBound != 1 {
					// The oracle bound filled the heap; the top-k is
					// provably final.
					return ErrEarlyDone
				}
				q.topKLowerBound = q.vals[q.slots[0]]
			}
		}
		return nil
	}

	// Equal to the bottom of the heap: the reference tie-break decides.
	if current == q.topKLowerBound {
		if id < q.slots[0] {
			return nil
		}
		q.topResults.PushBack(id)
		q.topKLowerBound = q.vals[q.slots[0]]
		return nil
	}

	// Above the bottom of the heap. We were not already in the heap iff the
	// old value was below the bound, or equal and losing the tie-break.
	old := current - score
	if old < q.topKLowerBound || (old == q.topKLowerBound && id < q.slots[0]) {
		q.topResults.PushBack(id)
	} else {
		at := q.topResults.Find(id)
		q.topResults.Promote(id, at)
	}
	q.topKLowerBound = q.vals[q.slots[0]]
	return nil
}

// DecodeAndProcess decodes one postings segment and folds it into the
// accumulators at the given impact.
func (q *Heap[E]) DecodeAndProcess(impact E, integers int, compressed []byte) error {
	q.impact = impact
	return q.decodeWithWriter(integers, compressed)
}

func (q *Heap[E]) decodeWithWriter(integers int, compressed []byte) error {
	ids, err := q.decode(integers, compressed)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if q.filter != nil && !q.filter.Contains(id) {
			continue
		}
		if err := q.AddRSV(id, q.impact); err != nil {
			return err
		}
	}
	return nil
}

// Sort materialises the ranked top-k. Idempotent within a query.
func (q *Heap[E]) Sort() {
	if !q.sorted {
		topk.SortAscending(q.slots[q.neededForTopK:], q.vals)
		q.sorted = true
	}
}

// GetFirst returns the highest-scoring result, or nil if there are none.
func (q *Heap[E]) GetFirst() *Result[E] {
	q.Sort()
	q.nextResultLocation = 0
	return q.GetNext()
}

// GetNext returns the next result in rank order, or nil at the end.
func (q *Heap[E]) GetNext() *Result[E] {
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
