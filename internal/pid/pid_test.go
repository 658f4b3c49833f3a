package pid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_ZeroID(t *testing.T) {
	assert.Equal(t, make([]byte, Size), Encode(uuid.Nil))
}

func TestEncode_HighHalfByteOrder(t *testing.T) {
	// High half 0x0102030405060708 must emit its low octet first.
	id := uuid.UUID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	key := Encode(id)

	require.Len(t, key, Size)
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, key[0:8])
	assert.Equal(t, make([]byte, 8), key[8:16])
}

func TestEncode_LowHalfByteOrder(t *testing.T) {
	id := uuid.UUID{8: 0xAA, 9: 0xBB, 10: 0xCC, 11: 0xDD, 12: 0xEE, 13: 0xFF, 14: 0x11, 15: 0x22}

	key := Encode(id)

	assert.Equal(t, []byte{0x22, 0x11, 0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}, key[8:16])
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		id := uuid.New()

		decoded, err := Decode(Encode(id))

		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestDecode_RejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 8, 15, 17, 32} {
		_, err := Decode(make([]byte, n))
		assert.Error(t, err, "length %d", n)
	}
}
