// Package codec centralizes the integer codecs used for postings lists.
//
// A postings segment is a run of document ids sharing one impact,
// d1-delta-encoded before compression. Every codec in this package deals in
// those deltas; recovering absolute ids via prefix sum is the evaluator's
// job, for the none codec included. Codec selection is a breaking-change
// boundary: postings written by one codec do not decode with another.
package codec

import "errors"

var (
	// ErrShortBuffer is returned by Encode when the destination cannot hold
	// the encoded sequence.
	ErrShortBuffer = errors.New("codec: encode buffer too small")

	// ErrTruncated is returned by Decode when the source ends before the
	// requested number of integers has been produced.
	ErrTruncated = errors.New("codec: compressed sequence truncated")
)

// Codec encodes and decodes sequences of unsigned 32-bit integers.
// Implementations must be stateless and safe for concurrent use; one codec
// instance is shared by every evaluator of an engine.
type Codec interface {
	// Encode writes src into dst and returns the number of bytes used.
	Encode(dst []byte, src []uint32) (int, error)

	// Decode writes count integers from src into dst[:count].
	Decode(dst []uint32, count int, src []byte) error

	// Name returns the codec's stable name.
	Name() string

	// Family returns the single byte identifying this codec at the front of
	// a postings blob.
	Family() byte
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "None":
		return None{}, true
	case "VarByte":
		return VarByte{}, true
	default:
		return nil, false
	}
}

// Sniff maps the first byte of a postings blob to the codec family that
// wrote it. Unknown bytes fall back to the none codec, mirroring the
// reference loader.
func Sniff(family byte) Codec {
	switch family {
	case None{}.Family():
		return None{}
	case VarByte{}.Family():
		return VarByte{}
	default:
		return None{}
	}
}
