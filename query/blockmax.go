package query

import (
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/topk"
)

// Compile-time check to ensure BlockMax satisfies the evaluator contract.
var _ Evaluator[uint16] = (*BlockMax[uint16])(nil)

// BlockMax accumulates into a block-max arena and defers the top-k to Sort,
// where whole rows are skipped whenever their maximum cannot beat the bottom
// of the heap.
type BlockMax[E accumulator.Element] struct {
	evaluator[E]

	arena *accumulator.BlockMax[E]
	vals  []E

	slots         []uint32
	topResults    *topk.Heap[E]
	neededForTopK uint32
	sorted        bool
}

// NewBlockMax creates a block-max evaluator.
func NewBlockMax[E accumulator.Element](codex codec.Codec) *BlockMax[E] {
	q := &BlockMax[E]{arena: accumulator.NewBlockMax[E]()}
	q.codex = codex
	return q
}

// Name returns the strategy name.
func (q *BlockMax[E]) Name() string { return "blockmax" }

// Init configures the evaluator. Must be called once before first use.
func (q *BlockMax[E]) Init(primaryKeys []string, documents, topK uint32, widthHint int) error {
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
func (q *BlockMax[E]) Rewind(_, _, _ E) {
	q.sorted = false
	q.arena.Rewind()
	q.neededForTopK = q.topK
	q.rewind()
}

// AddRSV adds score to the accumulator for id, keeping its row maximum
// current. Never returns an error.
func (q *BlockMax[E]) AddRSV(id uint32, score E) error {
	q.arena.Add(id, score)
	return nil
}

// DecodeAndProcess decodes one postings segment and folds it into the
// accumulators at the given impact.
func (q *BlockMax[E]) DecodeAndProcess(impact E, integers int, compressed []byte) error {
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

// Sort scans the block maxima for rows that can contribute to the top-k,
// scans only those rows, then orders the filled slots. Rows beyond the
// collection hold init-time zeros, so the scan of a partial last row is
// safe without a bounds test. Idempotent within a query.
func (q *BlockMax[E]) Sort() {
	if q.sorted {
		return
	}

	blockMax := q.arena.BlockMaxValues()
	width := q.arena.Width()

	var bottomOfHeap E
	for block := uint32(0); block < q.arena.Blocks(); block++ {
		if blockMax[block] <= bottomOfHeap {
			continue
		}

		// Some accumulator in this row beats the bottom of the heap.
		for id := block * width; id < (block+1)*width; id++ {
			if q.vals[id] <= bottomOfHeap {
				continue
			}

			if q.neededForTopK > 0 {
				q.neededForTopK--
				q.slots[q.neededForTopK] = id
				if q.neededForTopK == 0 {
					q.topResults.MakeHeap()
					bottomOfHeap = q.vals[q.slots[0]]
				}
			} else {
				q.topResults.PushBack(id)
				bottomOfHeap = q.vals[q.slots[0]]
			}
		}
	}

	topk.SortAscending(q.slots[q.neededForTopK:], q.vals)
	q.sorted = true
}

// GetFirst returns the highest-scoring result, or nil if there are none.
func (q *BlockMax[E]) GetFirst() *Result[E] {
	q.Sort()
	q.nextResultLocation = 0
	return q.GetNext()
}

// GetNext returns the next result in rank order, or nil at the end.
func (q *BlockMax[E]) GetNext() *Result[E] {
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
