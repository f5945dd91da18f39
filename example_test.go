package impactgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/impactgo/blobstore"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/engine"
	"github.com/hupe1980/impactgo/index"
)

func Example() {
	// Serialise a small prebuilt index into a memory store. In production
	// the artifacts come from an external indexer, via a local directory or
	// an object store.
	artifacts, err := index.Build(
		[]string{"doc-a", "doc-b", "doc-c", "doc-d"},
		map[string][]index.PostingsList{
			"quick": {
				{Impact: 9, IDs: []uint32{2}},
				{Impact: 3, IDs: []uint32{0, 3}},
			},
			"fox": {
				{Impact: 5, IDs: []uint32{1, 2}},
			},
		},
		codec.VarByte{},
		index.CompressionLZ4,
	)
	if err != nil {
		log.Fatal(err)
	}

	store := blobstore.NewMemoryStore()
	_ = store.Put(index.DefaultDoclistName, artifacts.Doclist)
	_ = store.Put(index.DefaultVocabularyName, artifacts.Vocabulary)
	_ = store.Put(index.DefaultPostingsName, artifacts.Postings)

	idx, err := index.Load(store)
	if err != nil {
		log.Fatal(err)
	}

	e, err := engine.New[uint16](idx, func(o *engine.Options) {
		o.Strategy = "2d_heap"
		o.TopK = 2
	})
	if err != nil {
		log.Fatal(err)
	}
	defer e.Close()

	results, err := e.Search(context.Background(), "quick fox")
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Printf("%s %d\n", r.PrimaryKey, r.Score)
	}
	// Output:
	// doc-c 14
	// doc-b 5
}
