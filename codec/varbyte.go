package codec

import "encoding/binary"

// Compile-time check to ensure VarByte satisfies the codec contract.
var _ Codec = VarByte{}

// VarByte stores each delta as an unsigned varint. Deltas between adjacent
// document ids are small, so most postings take a single byte.
type VarByte struct{}

// Name returns the codec's stable name.
func (VarByte) Name() string { return "VarByte" }

// Family returns the blob identifier byte.
func (VarByte) Family() byte { return 'v' }

// Encode writes src as a sequence of uvarints.
func (VarByte) Encode(dst []byte, src []uint32) (int, error) {
	used := 0
	for _, v := range src {
		if len(dst)-used < binary.MaxVarintLen32 {
			// Re-check precisely; the tail of the buffer may still fit
			// a short varint.
			var scratch [binary.MaxVarintLen32]byte
			n := binary.PutUvarint(scratch[:], uint64(v))
			if len(dst)-used < n {
				return 0, ErrShortBuffer
			}
			used += copy(dst[used:], scratch[:n])
			continue
		}
		used += binary.PutUvarint(dst[used:], uint64(v))
	}
	return used, nil
}

// Decode reads count uvarints from src.
func (VarByte) Decode(dst []uint32, count int, src []byte) error {
	offset := 0
	for i := 0; i < count; i++ {
		v, n := binary.Uvarint(src[offset:])
		if n <= 0 {
			return ErrTruncated
		}
		dst[i] = uint32(v)
		offset += n
	}
	return nil
}
