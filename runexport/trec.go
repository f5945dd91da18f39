// Package runexport writes ranked results in evaluation-forum run formats.
package runexport

import (
	"fmt"
	"io"

	"github.com/hupe1980/impactgo/accumulator"
	"github.com/hupe1980/impactgo/query"
)

// TREC writes the evaluator's current result list in TREC ad hoc run format
// for evaluation with trec_eval:
//
//	topic_id Q0 primary_key rank score run_name
//
// topic_id and run_name must not contain whitespace. When
// includeInternalIDs is set, the internal document id and score are appended
// to the run name for debugging.
func TREC[E accumulator.Element](w io.Writer, topicID string, result query.Evaluator[E], runName string, includeInternalIDs bool) error {
	rank := 0
	for document := result.GetFirst(); document != nil; document = result.GetNext() {
		rank++
		if _, err := fmt.Fprintf(w, "%s Q0 %s %d %d %s",
			topicID, document.PrimaryKey, rank, uint32(document.Score), runName); err != nil {
			return err
		}
		if includeInternalIDs {
			if _, err := fmt.Fprintf(w, "(ID:%d->%d)", document.DocumentID, uint32(document.Score)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
