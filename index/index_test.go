package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/impactgo/blobstore"
	"github.com/hupe1980/impactgo/codec"
)

var testTerms = map[string][]PostingsList{
	"quick": {
		{Impact: 3, IDs: []uint32{1, 4}},
		{Impact: 9, IDs: []uint32{2}},
	},
	"fox": {
		{Impact: 5, IDs: []uint32{0, 2, 3}},
	},
}

var testKeys = []string{"doc-0", "doc-1", "doc-2", "doc-3", "doc-4"}

func storeArtifacts(t *testing.T, a *Artifacts) *blobstore.MemoryStore {
	t.Helper()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(DefaultDoclistName, a.Doclist))
	require.NoError(t, store.Put(DefaultVocabularyName, a.Vocabulary))
	require.NoError(t, store.Put(DefaultPostingsName, a.Postings))
	return store
}

func TestLoad_RoundTrip(t *testing.T) {
	artifacts, err := Build(testKeys, testTerms, codec.VarByte{}, CompressionNone)
	require.NoError(t, err)

	r, err := Load(storeArtifacts(t, artifacts))
	require.NoError(t, err)

	assert.Equal(t, uint32(5), r.Documents())
	assert.Equal(t, testKeys, r.PrimaryKeys())
	assert.Equal(t, "VarByte", r.Codec().Name())
	assert.Equal(t, 2, r.Terms())

	segments, ok := r.Lookup("quick")
	require.True(t, ok)
	require.Len(t, segments, 2)
	// Stored impact-descending regardless of input order.
	assert.Equal(t, uint32(9), segments[0].Impact)
	assert.Equal(t, uint32(1), segments[0].Count)
	assert.Equal(t, uint32(3), segments[1].Impact)
	assert.Equal(t, uint32(2), segments[1].Count)

	// Decode one segment; the codec yields d1 deltas, not absolute ids.
	deltas := make([]uint32, segments[1].Count)
	require.NoError(t, r.Codec().Decode(deltas, int(segments[1].Count), segments[1].Postings))
	assert.Equal(t, []uint32{1, 3}, deltas) // d1 deltas of 1, 4

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestLoad_SniffsNoneCodec(t *testing.T) {
	artifacts, err := Build(testKeys, testTerms, codec.None{}, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, byte('s'), artifacts.Postings[0])

	r, err := Load(storeArtifacts(t, artifacts))
	require.NoError(t, err)
	assert.Equal(t, "None", r.Codec().Name())
}

func TestLoad_CompressedPostings(t *testing.T) {
	for name, compression := range map[string]CompressionType{
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	} {
		t.Run(name, func(t *testing.T) {
			artifacts, err := Build(testKeys, testTerms, codec.VarByte{}, compression)
			require.NoError(t, err)

			r, err := Load(storeArtifacts(t, artifacts))
			require.NoError(t, err)
			assert.Equal(t, "VarByte", r.Codec().Name())

			segments, ok := r.Lookup("fox")
			require.True(t, ok)
			require.Len(t, segments, 1)
			assert.Equal(t, uint32(5), segments[0].Impact)
			assert.Equal(t, uint32(3), segments[0].Count)
		})
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 7)
	}

	for name, compression := range map[string]CompressionType{
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	} {
		t.Run(name, func(t *testing.T) {
			framed, err := Compress(data, compression)
			require.NoError(t, err)
			assert.Less(t, len(framed), len(data))

			out, err := maybeDecompress(framed)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}

	// Uncompressed data passes through untouched.
	out, err := maybeDecompress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLoad_MissingArtifact(t *testing.T) {
	store := blobstore.NewMemoryStore()
	_, err := Load(store)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoad_Malformed(t *testing.T) {
	artifacts, err := Build(testKeys, testTerms, codec.VarByte{}, CompressionNone)
	require.NoError(t, err)

	t.Run("truncated doclist", func(t *testing.T) {
		store := storeArtifacts(t, artifacts)
		require.NoError(t, store.Put(DefaultDoclistName, []byte{1, 2}))
		_, err := Load(store)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("truncated vocabulary", func(t *testing.T) {
		store := storeArtifacts(t, artifacts)
		require.NoError(t, store.Put(DefaultVocabularyName, artifacts.Vocabulary[:7]))
		_, err := Load(store)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty postings", func(t *testing.T) {
		store := storeArtifacts(t, artifacts)
		require.NoError(t, store.Put(DefaultPostingsName, nil))
		_, err := Load(store)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestBuild_RejectsUnsortedIDs(t *testing.T) {
	_, err := Build(testKeys, map[string][]PostingsList{
		"broken": {{Impact: 1, IDs: []uint32{5, 3}}},
	}, codec.VarByte{}, CompressionNone)
	assert.Error(t, err)
}
