package runexport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/query"
)

func TestTREC(t *testing.T) {
	keys := []string{"zero", "one", "two", "three", "four", "five", "six"}

	q, known := query.ByName[uint16]("2d_heap", codec.None{})
	require.True(t, known)
	require.NoError(t, q.Init(keys, 10, 10, 0))

	deltas := []uint32{1, 1, 1, 1, 1, 1} // ids 1..6
	buf := make([]byte, 4*len(deltas))
	n, err := codec.None{}.Encode(buf, deltas)
	require.NoError(t, err)
	require.NoError(t, q.DecodeAndProcess(1, len(deltas), buf[:n]))

	var out strings.Builder
	require.NoError(t, TREC[uint16](&out, "qid", q, "unittest", true))

	want := "qid Q0 six 1 1 unittest(ID:6->1)\n" +
		"qid Q0 five 2 1 unittest(ID:5->1)\n" +
		"qid Q0 four 3 1 unittest(ID:4->1)\n" +
		"qid Q0 three 4 1 unittest(ID:3->1)\n" +
		"qid Q0 two 5 1 unittest(ID:2->1)\n" +
		"qid Q0 one 6 1 unittest(ID:1->1)\n"
	require.Equal(t, want, out.String())
}
