// Package namehash maps identifiers to 64-bit keys.
//
// A name is copied into a zeroed MaxNameLen byte buffer and the whole
// buffer is hashed with XXH64 (seed 0). Names that only differ past
// MaxNameLen bytes hash identically; callers that accept names bound them
// with Check first.
package namehash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// MaxNameLen is the single name width used by the parser, the value tree
// and the registry.
const MaxNameLen = 64

// Hash returns the fixed-width hash of name.
func Hash(name string) uint64 {
	var buf [MaxNameLen]byte
	copy(buf[:], name)
	return xxhash.Sum64(buf[:])
}

// Clamp truncates name to MaxNameLen bytes.
func Clamp(name string) string {
	if len(name) > MaxNameLen {
		return name[:MaxNameLen]
	}
	return name
}

// Check reports whether name fits in MaxNameLen bytes.
func Check(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("namehash: name %q is %d bytes, max %d", Clamp(name), len(name), MaxNameLen)
	}
	return nil
}
