package index

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/impactgo/internal/conv"
)

// Artifact layouts, all little-endian.
//
// doclist: the NUL-terminated primary keys back to back, then one uint64
// offset per document pointing at its key, then a trailing uint64 document
// count. Readers walk the offset table from the back of the file.
//
// vocabulary: per term, uint32 key length, the key bytes, uint32 segment
// count, then per segment uint32 impact, uint32 posting count, uint32
// encoded byte length, uint64 absolute offset into the postings blob.
// Segments are stored impact-descending.
//
// postings: one codec-family byte, then codec-private segment payloads at
// the offsets the vocabulary names.

func parseDoclist(data []byte) ([]string, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: doclist shorter than its trailer", ErrMalformed)
	}

	count := binary.LittleEndian.Uint64(data[len(data)-8:])
	documents, err := conv.Uint64ToInt(count)
	if err != nil {
		return nil, fmt.Errorf("%w: doclist count: %v", ErrMalformed, err)
	}

	tableSize := documents*8 + 8
	if tableSize > len(data) {
		return nil, fmt.Errorf("%w: doclist offset table truncated", ErrMalformed)
	}
	table := data[len(data)-tableSize : len(data)-8]
	keyRegion := data[:len(data)-tableSize]

	keys := make([]string, documents)
	for id := 0; id < documents; id++ {
		offset := binary.LittleEndian.Uint64(table[id*8:])
		if offset >= uint64(len(keyRegion)) {
			return nil, fmt.Errorf("%w: doclist offset %d out of range", ErrMalformed, offset)
		}
		end := bytes.IndexByte(keyRegion[offset:], 0)
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated primary key at %d", ErrMalformed, offset)
		}
		keys[id] = string(keyRegion[offset : int(offset)+end])
	}
	return keys, nil
}

func parseVocabulary(data, postings []byte) (map[string][]Segment, error) {
	vocabulary := make(map[string][]Segment)

	offset := 0
	for offset < len(data) {
		if len(data)-offset < 4 {
			return nil, fmt.Errorf("%w: vocabulary entry truncated", ErrMalformed)
		}
		termLen := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4

		if len(data)-offset < termLen+4 {
			return nil, fmt.Errorf("%w: vocabulary term truncated", ErrMalformed)
		}
		term := string(data[offset : offset+termLen])
		offset += termLen

		segmentCount := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4

		segments := make([]Segment, 0, segmentCount)
		for s := 0; s < segmentCount; s++ {
			if len(data)-offset < 20 {
				return nil, fmt.Errorf("%w: segment metadata truncated for %q", ErrMalformed, term)
			}
			impact := binary.LittleEndian.Uint32(data[offset:])
			count := binary.LittleEndian.Uint32(data[offset+4:])
			byteLen := binary.LittleEndian.Uint32(data[offset+8:])
			postingsOffset := binary.LittleEndian.Uint64(data[offset+12:])
			offset += 20

			end := postingsOffset + uint64(byteLen)
			if end > uint64(len(postings)) {
				return nil, fmt.Errorf("%w: postings for %q beyond blob", ErrMalformed, term)
			}

			segments = append(segments, Segment{
				Impact:   impact,
				Count:    count,
				Postings: postings[postingsOffset:end],
			})
		}
		vocabulary[term] = segments
	}

	return vocabulary, nil
}
