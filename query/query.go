// Package query evaluates an impact-ordered query against a document
// collection and maintains the top-k results.
//
// An evaluator owns a score arena, a top-k slot array, and a decode scratch;
// it is not safe for concurrent use. A deployment runs one evaluator per
// worker and shares nothing between them except the (stateless) codec.
//
// The three strategies differ in when the top-k is maintained:
//
//   - "simple": accumulate only; the top-k is extracted by one arena scan in
//     Sort.
//   - "1d_heap"/"2d_heap": the heap is maintained inside every AddRSV, which
//     enables provably-correct early termination against an oracle bound.
//   - "blockmax": accumulate plus per-row maxima; Sort scans only the rows
//     whose maximum can still enter the heap.
package query

import (
	"errors"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/codec"
)

// ErrEarlyDone signals that the top-k is provably final and the remainder of
// the query need not be processed. It is a clean cancellation boundary, not
// a failure: results accumulated so far are complete and valid.
var ErrEarlyDone = errors.New("query: top-k complete")

// ErrTopKTooLarge is returned by Init when topK exceeds accumulator.MaxTopK.
var ErrTopKTooLarge = errors.New("query: top-k too large")

// Result is one ranked result. The evaluator reuses a single Result as
// iteration scratch; callers must copy fields they keep.
type Result[E accumulator.Element] struct {
	// DocumentID is the internal document id.
	DocumentID uint32

	// PrimaryKey is the external identifier of the document.
	PrimaryKey string

	// Score is the accumulated RSV.
	Score E
}

// Evaluator is the contract shared by every retrieval strategy.
type Evaluator[E accumulator.Element] interface {
	// Init configures the evaluator. Must be called once before first use.
	Init(primaryKeys []string, documents, topK uint32, widthHint int) error

	// Rewind clears per-query state. A topKLowerBound other than 1 arms the
	// oracle: the moment the top-k fills, evaluation raises ErrEarlyDone.
	Rewind(smallestPossibleRSV, topKLowerBound, largestPossibleRSV E)

	// Parse tokenizes the query text into the owned term list.
	Parse(text string)

	// Terms returns the parsed term tokens in query order.
	Terms() []string

	// SetFilter restricts accumulation to the given document set for the
	// current query. A nil filter admits every document. Cleared by Rewind.
	SetFilter(filter *roaring.Bitmap)

	// DecodeAndProcess decodes one postings segment and folds it into the
	// accumulators at the given impact. Returns ErrEarlyDone when an oracle
	// bound proves the top-k final, or the codec's error on corrupt input.
	DecodeAndProcess(impact E, integers int, compressed []byte) error

	// AddRSV adds score to the accumulator for id. Strategies that maintain
	// the heap during accumulation may return ErrEarlyDone.
	AddRSV(id uint32, score E) error

	// Sort materialises the ranked top-k. Idempotent within a query.
	Sort()

	// GetFirst sorts if needed and returns the highest-scoring result, or
	// nil when the result list is empty.
	GetFirst() *Result[E]

	// GetNext returns the next result in rank order, or nil at the end.
	GetNext() *Result[E]

	// Name returns the strategy name.
	Name() string
}

// evaluator carries the state every strategy shares.
type evaluator[E accumulator.Element] struct {
	codex       codec.Codec
	impact      E
	documents   uint32
	topK        uint32
	primaryKeys []string
	terms       []string
	filter      *roaring.Bitmap

	// scratch receives the codec's output; sized once at Init with slack so
	// block decoders may overflow.
	scratch []uint32

	nextResult         Result[E]
	nextResultLocation uint32
}

func (q *evaluator[E]) init(primaryKeys []string, documents, topK uint32) error {
	if documents > accumulator.MaxDocuments {
		return accumulator.ErrTooManyDocuments
	}
	if topK > accumulator.MaxTopK {
		return ErrTopKTooLarge
	}
	q.primaryKeys = primaryKeys
	q.documents = documents
	q.topK = topK
	q.scratch = make([]uint32, int(documents)+16)
	return nil
}

func (q *evaluator[E]) rewind() {
	q.impact = 0
	q.terms = nil
	q.filter = nil
	q.nextResultLocation = 0
}

// Tokenize splits query text into term tokens: lower-cased, whitespace
// separated. The index side must tokenize the same way.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Parse tokenizes the query text into the owned term list.
func (q *evaluator[E]) Parse(text string) {
	q.terms = Tokenize(text)
}

// Terms returns the parsed term tokens.
func (q *evaluator[E]) Terms() []string {
	return q.terms
}

// SetFilter restricts accumulation to the given document set.
func (q *evaluator[E]) SetFilter(filter *roaring.Bitmap) {
	q.filter = filter
}

// decode fills the scratch with integers deltas and prefix-sums them in
// place, returning the absolute document ids.
func (q *evaluator[E]) decode(integers int, compressed []byte) ([]uint32, error) {
	buffer := q.scratch[:integers]
	if err := q.codex.Decode(buffer, integers, compressed); err != nil {
		return nil, err
	}

	var id uint32
	for i, delta := range buffer {
		id += delta
		buffer[i] = id
	}
	return buffer, nil
}

// primaryKey resolves an internal id, tolerating a key table shorter than
// the collection.
func (q *evaluator[E]) primaryKey(id uint32) string {
	if int(id) < len(q.primaryKeys) {
		return q.primaryKeys[id]
	}
	return ""
}
