// Package pid packs 128-bit player identifiers into the fixed 16-byte
// binary key the account store is keyed by.
package pid

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Size is the length of an encoded player id key.
const Size = 16

// Encode packs a player id into its storage key. The high 64 bits occupy
// bytes 0..7 and the low 64 bits bytes 8..15, each half emitted
// least-significant octet first.
func Encode(id uuid.UUID) []byte {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])

	key := make([]byte, Size)
	binary.LittleEndian.PutUint64(key[0:8], hi)
	binary.LittleEndian.PutUint64(key[8:16], lo)

	return key
}

// Decode is the inverse of Encode.
func Decode(key []byte) (uuid.UUID, error) {
	if len(key) != Size {
		return uuid.Nil, fmt.Errorf("player id key must be %d bytes, got %d", Size, len(key))
	}

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[0:8], binary.LittleEndian.Uint64(key[0:8]))
	binary.BigEndian.PutUint64(id[8:16], binary.LittleEndian.Uint64(key[8:16]))

	return id, nil
}
