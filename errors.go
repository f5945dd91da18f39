package impactgo

import (
	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/index"
	"github.com/hupe1980/impactgo/query"
)

// Errors of the underlying packages, re-exported so callers holding only the
// facade can test against them.
var (
	// ErrTooManyDocuments is returned at Init when the collection exceeds
	// accumulator.MaxDocuments.
	ErrTooManyDocuments = accumulator.ErrTooManyDocuments

	// ErrTopKTooLarge is returned at Init when topK exceeds
	// accumulator.MaxTopK.
	ErrTopKTooLarge = query.ErrTopKTooLarge

	// ErrEarlyDone signals that the top-k is provably final. It is a clean
	// cancellation boundary, not a failure.
	ErrEarlyDone = query.ErrEarlyDone

	// ErrMalformedIndex is returned when an index artifact does not parse.
	ErrMalformedIndex = index.ErrMalformed
)
