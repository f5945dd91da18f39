package engine

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/impactgo/blobstore"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/index"
	"github.com/hupe1980/impactgo/query"
	"github.com/hupe1980/impactgo/resource"
)

func loadTestIndex(t *testing.T) *index.Reader {
	t.Helper()

	keys := []string{"zero", "one", "two", "three", "four", "five", "six", "seven"}
	terms := map[string][]index.PostingsList{
		"quick": {
			{Impact: 9, IDs: []uint32{2}},
			{Impact: 3, IDs: []uint32{1, 4}},
		},
		"fox": {
			{Impact: 5, IDs: []uint32{0, 2, 3}},
		},
		"lazy": {
			{Impact: 2, IDs: []uint32{5, 6}},
		},
	}

	artifacts, err := index.Build(keys, terms, codec.VarByte{}, index.CompressionNone)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(index.DefaultDoclistName, artifacts.Doclist))
	require.NoError(t, store.Put(index.DefaultVocabularyName, artifacts.Vocabulary))
	require.NoError(t, store.Put(index.DefaultPostingsName, artifacts.Postings))

	r, err := index.Load(store)
	require.NoError(t, err)
	return r
}

func docIDs(results []query.Result[uint16]) []uint32 {
	ids := make([]uint32, len(results))
	for i, r := range results {
		ids[i] = r.DocumentID
	}
	return ids
}

func TestEngine_Search(t *testing.T) {
	for _, strategy := range query.Strategies {
		t.Run(strategy, func(t *testing.T) {
			e, err := New[uint16](loadTestIndex(t), func(o *Options) {
				o.Strategy = strategy
				o.TopK = 3
			})
			require.NoError(t, err)
			defer e.Close()

			results, err := e.Search(context.Background(), "Quick FOX")
			require.NoError(t, err)

			require.Len(t, results, 3)
			assert.Equal(t, []uint32{2, 3, 0}, docIDs(results))
			assert.Equal(t, uint16(14), results[0].Score)
			assert.Equal(t, "two", results[0].PrimaryKey)
			assert.Equal(t, uint16(5), results[1].Score)
			assert.Equal(t, uint16(5), results[2].Score)
		})
	}
}

func TestEngine_UnknownTermsIgnored(t *testing.T) {
	e, err := New[uint16](loadTestIndex(t))
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search(context.Background(), "unicorn lazy")
	require.NoError(t, err)
	assert.Equal(t, []uint32{6, 5}, docIDs(results))

	results, err = e.Search(context.Background(), "unicorn")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_PostingsBudget(t *testing.T) {
	e, err := New[uint16](loadTestIndex(t), func(o *Options) {
		o.PostingsBudget = 1
		o.TopK = 3
	})
	require.NoError(t, err)
	defer e.Close()

	// Only the highest-impact segment (quick@9, one posting) fits the
	// budget; the ranking head survives anytime truncation.
	results, err := e.Search(context.Background(), "quick fox")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint32(2), results[0].DocumentID)
	assert.Equal(t, uint16(9), results[0].Score)
}

func TestEngine_Oracle(t *testing.T) {
	e, err := New[uint16](loadTestIndex(t), func(o *Options) {
		o.Strategy = "2d_heap"
		o.TopK = 2
	})
	require.NoError(t, err)
	defer e.Close()

	// With a true lower bound of 5, the top-k is provably final the moment
	// two accumulators reach it.
	results, err := e.Search(context.Background(), "quick fox", WithOracle(5))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint32(2), results[0].DocumentID)
	assert.Equal(t, uint16(9), results[0].Score)
	assert.Equal(t, uint16(5), results[1].Score)
}

func TestEngine_Filter(t *testing.T) {
	e, err := New[uint16](loadTestIndex(t), func(o *Options) {
		o.TopK = 5
	})
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search(context.Background(), "quick fox", WithFilter(roaring.BitmapOf(0, 3)))
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 0}, docIDs(results))
}

func TestEngine_SearchBatch(t *testing.T) {
	e, err := New[uint16](loadTestIndex(t), func(o *Options) {
		o.Workers = 4
		o.TopK = 3
	})
	require.NoError(t, err)
	defer e.Close()

	queries := []string{"quick fox", "lazy", "quick fox", "unicorn"}
	batch, err := e.SearchBatch(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, batch, len(queries))

	// Batch answers match individual evaluation, query for query.
	for i, text := range queries {
		single, err := e.Search(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "query %q", text)
	}
}

func TestEngine_UnknownStrategyFallsBack(t *testing.T) {
	e, err := New[uint16](loadTestIndex(t), func(o *Options) {
		o.Strategy = "wand"
	})
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search(context.Background(), "lazy")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEngine_WithController(t *testing.T) {
	controller := resource.NewController(resource.Config{
		MemoryLimitBytes: 1 << 20,
		MaxWorkers:       2,
	})

	e, err := New[uint16](loadTestIndex(t), func(o *Options) {
		o.Workers = 2
		o.Controller = controller
	})
	require.NoError(t, err)
	assert.Greater(t, controller.MemoryUsage(), int64(0))

	results, err := e.Search(context.Background(), "quick")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	e.Close()
	assert.Equal(t, int64(0), controller.MemoryUsage())
}
