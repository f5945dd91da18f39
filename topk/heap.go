// Package topk maintains the current top-k accumulator references during and
// after query evaluation.
//
// References are arena indexes. The heap is a binary min-heap keyed by the
// pair (current accumulator value, reference); the reference tie-break is the
// sole determinism anchor when many accumulators share the minimum value, so
// it must never change.
package topk

import (
	"sort"

	"github.com/hupe1980/impactgo/accumulator"
)

// Heap is a fixed-capacity binary min-heap over a caller-owned slot array of
// arena references. The slot array is filled back-to-front by the evaluator
// before MakeHeap is called; from then on all slots participate.
//
// The comparator reads the current accumulator value through the backing
// array, since scores keep mutating while the heap holds the reference.
type Heap[E accumulator.Element] struct {
	slots  []uint32
	values []E
}

// NewHeap wraps the given slot array and accumulator backing.
func NewHeap[E accumulator.Element](slots []uint32, values []E) *Heap[E] {
	return &Heap[E]{slots: slots, values: values}
}

// less reports whether reference a orders before reference b: smaller value
// first, then smaller reference.
func (h *Heap[E]) less(a, b uint32) bool {
	va, vb := h.values[a], h.values[b]
	if va != vb {
		return va < vb
	}
	return a < b
}

// MakeHeap heapifies the full slot array. Called once, when the evaluator
// has filled every slot.
func (h *Heap[E]) MakeHeap() {
	for i := len(h.slots)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

// PushBack replaces the root with ref and restores the heap property. Called
// only when the heap is full and ref orders after the current root.
func (h *Heap[E]) PushBack(ref uint32) {
	h.slots[0] = ref
	h.siftDown(0)
}

// Find returns the slot position holding ref, or -1. Linear; k is small.
func (h *Heap[E]) Find(ref uint32) int {
	for i, slot := range h.slots {
		if slot == ref {
			return i
		}
	}
	return -1
}

// Promote restores the heap property after the accumulator behind the
// reference at pos has grown. A grown key in a min-heap only ever moves
// towards the leaves.
func (h *Heap[E]) Promote(_ uint32, pos int) {
	h.siftDown(pos)
}

func (h *Heap[E]) siftDown(i int) {
	n := len(h.slots)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		least := l
		if r := l + 1; r < n && h.less(h.slots[r], h.slots[l]) {
			least = r
		}
		if !h.less(h.slots[least], h.slots[i]) {
			return
		}
		h.slots[i], h.slots[least] = h.slots[least], h.slots[i]
		i = least
	}
}

// SortAscending orders the filled slot region ascending by (value,
// reference). Evaluators iterate results from the high end of the array, so
// the last slot holds the best result and equal scores come out with the
// higher reference first.
func SortAscending[E accumulator.Element](slots []uint32, values []E) {
	sort.Slice(slots, func(i, j int) bool {
		vi, vj := values[slots[i]], values[slots[j]]
		if vi != vj {
			return vi < vj
		}
		return slots[i] < slots[j]
	})
}
