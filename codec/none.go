package codec

import "encoding/binary"

// Compile-time check to ensure None satisfies the codec contract.
var _ Codec = None{}

// None stores each delta as a raw little-endian uint32. It exists for
// indexes written without compression and as the fallback family.
type None struct{}

// Name returns the codec's stable name.
func (None) Name() string { return "None" }

// Family returns the blob identifier byte. 's' for "serialised", as written
// by the reference indexer.
func (None) Family() byte { return 's' }

// Encode writes src as raw little-endian words.
func (None) Encode(dst []byte, src []uint32) (int, error) {
	if len(dst) < 4*len(src) {
		return 0, ErrShortBuffer
	}
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], v)
	}
	return 4 * len(src), nil
}

// Decode reads count raw little-endian words.
func (None) Decode(dst []uint32, count int, src []byte) error {
	if len(src) < 4*count {
		return ErrTruncated
	}
	for i := 0; i < count; i++ {
		dst[i] = binary.LittleEndian.Uint32(src[4*i:])
	}
	return nil
}
