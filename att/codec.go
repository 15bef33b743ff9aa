package att

import (
	"encoding/binary"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// putReadByTypePair packs one (handle, value) pair into dst at offset used.
// All pairs of one response share a single pair length, fixed by the first
// pair packed; *pairLen is set then. It returns the number of bytes packed,
// or 0 if the pair does not fit or its length differs from *pairLen —
// either way the caller stops packing.
func putReadByTypePair(dst []byte, used int, pairLen *int, handle uint16, value []byte) int {
	n := 2 + len(value)
	if *pairLen == 0 {
		*pairLen = n
	} else if n != *pairLen {
		return 0
	}
	if used+n > len(dst) {
		return 0
	}
	binary.LittleEndian.PutUint16(dst[used:], handle)
	copy(dst[used+2:], value)
	return n
}

// putReadMultiValue packs one attribute value into dst at offset used.
// The variable-length variant prefixes each value with its 16-bit length;
// the fixed variant concatenates bare values. It returns the number of
// bytes packed and whether the value fit; a zero-length value in the
// fixed variant fits trivially and packs zero bytes.
func putReadMultiValue(op ble.Opcode, dst []byte, used int, value []byte) (int, bool) {
	n := len(value)
	if op == ble.ReadMultipleVariableRequestCode {
		n += 2
	}
	if used+n > len(dst) {
		return 0, false
	}
	if op == ble.ReadMultipleVariableRequestCode {
		binary.LittleEndian.PutUint16(dst[used:], uint16(len(value)))
		copy(dst[used+2:], value)
	} else {
		copy(dst[used:], value)
	}
	return n, true
}
