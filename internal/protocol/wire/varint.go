package wire

import "fmt"

// MaxVarintLen32 and MaxVarintLen64 are the longest encodings of a
// 32-bit varint and a 64-bit varlong.
const (
	MaxVarintLen32 = 5
	MaxVarintLen64 = 10
)

// ReadVar decodes one LEB128 value of the given bit width (32 or 64)
// starting at buf[pos]. It returns the value masked to width and the
// number of bytes consumed. The buffer end is checked before every byte.
func ReadVar(buf []byte, pos, bits int) (uint64, int, error) {
	maxLen := MaxVarintLen32
	if bits > 32 {
		maxLen = MaxVarintLen64
	}
	var v uint64
	for i := 0; ; i++ {
		if i >= maxLen {
			return 0, 0, fmt.Errorf("%w: more than %d bytes for %d-bit value at offset %d", ErrVarintTooLong, maxLen, bits, pos)
		}
		if pos < 0 || pos+i >= len(buf) {
			return 0, 0, fmt.Errorf("%w: varint truncated at offset %d", ErrShortBuffer, pos+i)
		}
		b := buf[pos+i]
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if bits < 64 {
				v &= 1<<bits - 1
			}
			return v, i + 1, nil
		}
	}
}

// AppendVarint appends the LEB128 form of v.
func AppendVarint(dst []byte, v uint32) []byte {
	return AppendVarlong(dst, uint64(v))
}

// AppendVarlong appends the LEB128 form of v.
func AppendVarlong(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// VarintLen is the encoded size of v.
func VarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
