package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, ok := ByName("None")
	require.True(t, ok)
	assert.Equal(t, "None", c.Name())

	c, ok = ByName("VarByte")
	require.True(t, ok)
	assert.Equal(t, "VarByte", c.Name())

	_, ok = ByName("simd-bp128")
	assert.False(t, ok)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, "None", Sniff('s').Name())
	assert.Equal(t, "VarByte", Sniff('v').Name())
	// Unknown families fall back to the none codec.
	assert.Equal(t, "None", Sniff('?').Name())
}

func TestNone_RoundTrip(t *testing.T) {
	deltas := []uint32{2, 1, 0, 7, 1 << 30}

	buf := make([]byte, 4*len(deltas))
	n, err := None{}.Encode(buf, deltas)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	out := make([]uint32, len(deltas))
	require.NoError(t, None{}.Decode(out, len(deltas), buf[:n]))
	assert.Equal(t, deltas, out)
}

func TestNone_Errors(t *testing.T) {
	_, err := None{}.Encode(make([]byte, 3), []uint32{1})
	assert.ErrorIs(t, err, ErrShortBuffer)

	err = None{}.Decode(make([]uint32, 2), 2, []byte{1, 0, 0, 0})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestVarByte_RoundTrip(t *testing.T) {
	deltas := []uint32{1, 127, 128, 300, 0, 1 << 28}

	buf := make([]byte, 5*len(deltas))
	n, err := VarByte{}.Encode(buf, deltas)
	require.NoError(t, err)
	// Small deltas take a single byte.
	assert.Less(t, n, 4*len(deltas))

	out := make([]uint32, len(deltas))
	require.NoError(t, VarByte{}.Decode(out, len(deltas), buf[:n]))
	assert.Equal(t, deltas, out)
}

func TestVarByte_Truncated(t *testing.T) {
	buf := make([]byte, 8)
	n, err := VarByte{}.Encode(buf, []uint32{300})
	require.NoError(t, err)

	out := make([]uint32, 2)
	assert.ErrorIs(t, VarByte{}.Decode(out, 2, buf[:n]), ErrTruncated)
}
