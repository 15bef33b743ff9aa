package ble

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	guuid "github.com/google/uuid"
)

// A UUID is a BLE UUID, stored little-endian on the wire.
// BLE UUIDs are either 2 or 16 bytes.
type UUID []byte

// UUID16 converts a uint16 (such as 0x180F) to a UUID.
func UUID16(i uint16) UUID {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, i)
	return UUID(b)
}

// Parse parses a standard-format UUID string, such as "2a19" or
// "ae5d1e47-5c13-43a0-8635-82ad38a1386f". 128-bit UUIDs are parsed
// in their canonical RFC 4122 form.
func Parse(s string) (UUID, error) {
	if len(s) == 4 {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, err
		}
		return UUID(Reverse(b)), nil
	}
	u, err := guuid.Parse(s)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 16)
	copy(b, u[:])
	return UUID(Reverse(b)), nil
}

// MustParse parses a standard-format UUID string,
// like Parse, but panics in case of error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Len returns the length of the UUID, in bytes.
func (u UUID) Len() int { return len(u) }

// String hex-encodes a UUID in big-endian order.
func (u UUID) String() string { return fmt.Sprintf("%x", Reverse(u)) }

// Equal reports whether v represents the same UUID as u.
func (u UUID) Equal(v UUID) bool { return bytes.Equal(u, v) }

// Reverse returns a reversed copy of u.
func Reverse(u []byte) []byte {
	b := make([]byte, len(u))
	for i := 0; i < len(u); i++ {
		b[i] = u[len(u)-i-1]
	}
	return b
}
