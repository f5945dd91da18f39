package index

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/hupe1980/impactgo/codec"
)

// PostingsList is one impact group of a term: the ascending document ids
// that share a single quantised impact.
type PostingsList struct {
	Impact uint32
	IDs    []uint32
}

// Artifacts holds the three serialised index artifacts.
type Artifacts struct {
	Doclist    []byte
	Vocabulary []byte
	Postings   []byte
}

// Build serialises an already-inverted index into the artifact layouts this
// package loads. Index construction proper (tokenising and inverting a
// collection) lives in an external indexer; Build exists for tests and for
// tools that repackage an index with a different codec or compression.
func Build(primaryKeys []string, terms map[string][]PostingsList, codex codec.Codec, compression CompressionType) (*Artifacts, error) {
	a := &Artifacts{}

	// doclist
	offsets := make([]uint64, len(primaryKeys))
	var doclist []byte
	for id, key := range primaryKeys {
		offsets[id] = uint64(len(doclist))
		doclist = append(doclist, key...)
		doclist = append(doclist, 0)
	}
	for _, offset := range offsets {
		doclist = binary.LittleEndian.AppendUint64(doclist, offset)
	}
	doclist = binary.LittleEndian.AppendUint64(doclist, uint64(len(primaryKeys)))
	a.Doclist = doclist

	// postings + vocabulary; terms serialised in lexicographic order so the
	// artifacts are reproducible.
	names := make([]string, 0, len(terms))
	for term := range terms {
		names = append(names, term)
	}
	sort.Strings(names)

	postings := []byte{codex.Family()}
	var vocabulary []byte

	for _, term := range names {
		lists := append([]PostingsList(nil), terms[term]...)
		sort.Slice(lists, func(i, j int) bool {
			return lists[i].Impact > lists[j].Impact
		})

		vocabulary = binary.LittleEndian.AppendUint32(vocabulary, uint32(len(term)))
		vocabulary = append(vocabulary, term...)
		vocabulary = binary.LittleEndian.AppendUint32(vocabulary, uint32(len(lists)))

		for _, list := range lists {
			deltas, err := deltaEncode(list.IDs)
			if err != nil {
				return nil, fmt.Errorf("index: term %q impact %d: %w", term, list.Impact, err)
			}

			buf := make([]byte, 5*len(deltas)+16)
			n, err := codex.Encode(buf, deltas)
			if err != nil {
				return nil, fmt.Errorf("index: term %q impact %d: %w", term, list.Impact, err)
			}

			vocabulary = binary.LittleEndian.AppendUint32(vocabulary, list.Impact)
			vocabulary = binary.LittleEndian.AppendUint32(vocabulary, uint32(len(list.IDs)))
			vocabulary = binary.LittleEndian.AppendUint32(vocabulary, uint32(n))
			vocabulary = binary.LittleEndian.AppendUint64(vocabulary, uint64(len(postings)))
			postings = append(postings, buf[:n]...)
		}
	}
	a.Vocabulary = vocabulary

	compressed, err := Compress(postings, compression)
	if err != nil {
		return nil, err
	}
	a.Postings = compressed

	return a, nil
}

// deltaEncode turns ascending absolute ids into d1 deltas.
func deltaEncode(ids []uint32) ([]uint32, error) {
	deltas := make([]uint32, len(ids))
	var previous uint32
	for i, id := range ids {
		if i > 0 && id <= previous {
			return nil, fmt.Errorf("document ids not strictly ascending at %d", id)
		}
		deltas[i] = id - previous
		previous = id
	}
	return deltas, nil
}
