// Package index loads the on-disk artifacts of an impact-ordered inverted
// index: the primary-key table, the vocabulary, and the postings blob.
//
// The index is immutable; construction happens in an external indexer. This
// package reads what that indexer wrote: postings grouped per term by
// quantised impact, each group d1-delta-encoded with the codec named by the
// first byte of the postings blob.
package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/impactgo/blobstore"
	"github.com/hupe1980/impactgo/codec"
	"github.com/hupe1980/impactgo/internal/conv"
)

// ErrMalformed is returned when an artifact does not parse.
var ErrMalformed = errors.New("index: malformed artifact")

// Default artifact names within a blob store.
const (
	DefaultDoclistName    = "doclist.bin"
	DefaultVocabularyName = "vocab.bin"
	DefaultPostingsName   = "postings.bin"
)

// Segment is one impact-ordered postings segment: a run of count document
// ids sharing a single impact, delta-encoded and compressed. Postings
// aliases the loaded blob; treat it as read-only.
type Segment struct {
	Impact   uint32
	Count    uint32
	Postings []byte
}

// Options contains configuration options for loading an index.
type Options struct {
	// DoclistName is the primary-key table artifact name.
	DoclistName string

	// VocabularyName is the vocabulary artifact name.
	VocabularyName string

	// PostingsName is the postings blob artifact name.
	PostingsName string
}

// DefaultOptions contains the default artifact names.
var DefaultOptions = Options{
	DoclistName:    DefaultDoclistName,
	VocabularyName: DefaultVocabularyName,
	PostingsName:   DefaultPostingsName,
}

// Reader is a loaded, immutable index. Safe for concurrent lookups.
type Reader struct {
	primaryKeys []string
	documents   uint32
	codex       codec.Codec
	postings    []byte
	vocabulary  map[string][]Segment
}

// Load reads the three artifacts from the store and parses them.
func Load(store blobstore.BlobStore, optFns ...func(o *Options)) (*Reader, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	doclist, err := readArtifact(store, opts.DoclistName)
	if err != nil {
		return nil, err
	}
	vocab, err := readArtifact(store, opts.VocabularyName)
	if err != nil {
		return nil, err
	}
	postings, err := readArtifact(store, opts.PostingsName)
	if err != nil {
		return nil, err
	}

	r := &Reader{}

	if r.primaryKeys, err = parseDoclist(doclist); err != nil {
		return nil, err
	}
	r.documents, err = conv.IntToUint32(len(r.primaryKeys))
	if err != nil {
		return nil, err
	}

	// The postings blob may be stored block-compressed as a whole.
	if r.postings, err = maybeDecompress(postings); err != nil {
		return nil, err
	}
	if len(r.postings) == 0 {
		return nil, fmt.Errorf("%w: empty postings blob", ErrMalformed)
	}
	r.codex = codec.Sniff(r.postings[0])

	if r.vocabulary, err = parseVocabulary(vocab, r.postings); err != nil {
		return nil, err
	}

	return r, nil
}

func readArtifact(store blobstore.BlobStore, name string) ([]byte, error) {
	blob, err := store.Open(name)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", name, err)
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(blob)
	if err != nil {
		return nil, fmt.Errorf("index: read %s: %w", name, err)
	}

	// The blob may alias a mapping owned by the store; copy so the reader
	// stays valid after Close.
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// PrimaryKeys returns the primary keys ordered by internal document id.
func (r *Reader) PrimaryKeys() []string {
	return r.primaryKeys
}

// Documents returns the number of documents in the collection.
func (r *Reader) Documents() uint32 {
	return r.documents
}

// Codec returns the codec the postings blob was written with. Codecs are
// stateless and may be shared across evaluators.
func (r *Reader) Codec() codec.Codec {
	return r.codex
}

// Terms returns the number of vocabulary terms.
func (r *Reader) Terms() int {
	return len(r.vocabulary)
}

// Lookup returns the impact-descending segment list for a term.
func (r *Reader) Lookup(term string) ([]Segment, bool) {
	segments, ok := r.vocabulary[term]
	return segments, ok
}
