package index

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the algorithm a postings blob is stored with.
type CompressionType uint8

const (
	// CompressionNone stores the blob as is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 stores the blob LZ4 block compressed (fast decode).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD stores the blob ZSTD compressed (better ratio for
	// cold artifacts).
	CompressionZSTD CompressionType = 2
)

// A compressed postings artifact is framed as:
// magic "IBC1" | type byte | uint32 uncompressed size | payload.
// Blobs without the magic are taken as uncompressed; the frame exists only
// on disk and is stripped at load.
var compressionMagic = []byte("IBC1")

const compressionHeaderSize = 4 + 1 + 4

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress frames data with the given algorithm. CompressionNone returns
// data unchanged.
func Compress(data []byte, compressionType CompressionType) ([]byte, error) {
	if compressionType == CompressionNone {
		return data, nil
	}

	var compressed []byte
	switch compressionType {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible; store raw inside the frame.
			compressed = data
			compressionType = CompressionNone
		} else {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("index: unknown compression type %d", compressionType)
	}

	framed := make([]byte, compressionHeaderSize+len(compressed))
	copy(framed, compressionMagic)
	framed[4] = byte(compressionType)
	binary.LittleEndian.PutUint32(framed[5:], uint32(len(data)))
	copy(framed[compressionHeaderSize:], compressed)
	return framed, nil
}

// maybeDecompress strips the compression frame if present.
func maybeDecompress(data []byte) ([]byte, error) {
	if len(data) < compressionHeaderSize || string(data[:4]) != string(compressionMagic) {
		return data, nil
	}

	compressionType := CompressionType(data[4])
	uncompressedSize := binary.LittleEndian.Uint32(data[5:])
	payload := data[compressionHeaderSize:]

	switch compressionType {
	case CompressionNone:
		// Framed but stored raw because it did not compress.
		return payload, nil
	case CompressionLZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrMalformed, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: lz4 size mismatch", ErrMalformed)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrMalformed, err)
		}
		if uint32(len(out)) != uncompressedSize {
			return nil, fmt.Errorf("%w: zstd size mismatch", ErrMalformed)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression type %d", ErrMalformed, compressionType)
	}
}
