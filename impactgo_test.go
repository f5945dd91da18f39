package impactgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/impactgo/codec"
)

func TestNew(t *testing.T) {
	for _, strategy := range []string{"simple", "1d_heap", "2d_heap", "blockmax"} {
		q := New[uint16](strategy, codec.None{})
		require.NotNil(t, q)
		assert.Equal(t, strategy, q.Name())
	}
}

func TestNew_UnknownStrategyFallsBack(t *testing.T) {
	q := New[uint16]("wand", codec.None{}, func(o *Options) {
		o.Logger = NoopLogger()
	})
	require.NotNil(t, q)
	assert.Equal(t, "2d_heap", q.Name())
}

func TestNew_EndToEnd(t *testing.T) {
	keys := []string{"zero", "one", "two", "three", "four"}

	q := New[uint16]("2d_heap", codec.None{})
	require.NoError(t, q.Init(keys, 1024, 2, 0))

	require.NoError(t, q.AddRSV(2, 10))
	require.NoError(t, q.AddRSV(3, 20))
	require.NoError(t, q.AddRSV(2, 2))
	require.NoError(t, q.AddRSV(1, 1))
	require.NoError(t, q.AddRSV(1, 14))

	first := q.GetFirst()
	require.NotNil(t, first)
	assert.Equal(t, uint32(3), first.DocumentID)
	assert.Equal(t, "three", first.PrimaryKey)
	assert.Equal(t, uint16(20), first.Score)

	second := q.GetNext()
	require.NotNil(t, second)
	assert.Equal(t, uint32(1), second.DocumentID)
	assert.Equal(t, uint16(15), second.Score)

	assert.Nil(t, q.GetNext())
}
