// Package wire reads the fixed-width and variable-length primitives of
// the packet format from an in-memory buffer. Every read checks the
// buffer end first and leaves the cursor untouched on failure.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrShortBuffer   = errors.New("wire: buffer too small")
	ErrVarintTooLong = errors.New("wire: varint too long")
	ErrNegativeSize  = errors.New("wire: negative size")
)

// Cursor is a read position over an immutable buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor starts reading buf at pos.
func NewCursor(buf []byte, pos int) *Cursor {
	return &Cursor{buf: buf, pos: pos}
}

func (c *Cursor) Pos() int { return c.pos }
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining reports the unread byte count, never negative.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.pos
}

// AtEnd reports whether the cursor reached or passed the buffer end.
func (c *Cursor) AtEnd() bool { return c.pos >= len(c.buf) }

// Reset moves the cursor back to pos, typically a saved Pos().
func (c *Cursor) Reset(pos int) { c.pos = pos }

// Need fails unless n more bytes are available.
func (c *Cursor) Need(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if c.pos < 0 || c.pos > len(c.buf) || n > len(c.buf)-c.pos {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, c.pos, c.Remaining())
	}
	return nil
}

func (c *Cursor) take(n int) ([]byte, error) {
	if err := c.Need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) Byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

func (c *Cursor) Float64() (float64, error) {
	v, err := c.Uint64()
	return math.Float64frombits(v), err
}

// Bytes copies the next n bytes out of the buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Rest copies everything left in the buffer.
func (c *Cursor) Rest() []byte {
	b, _ := c.Bytes(c.Remaining())
	return b
}

// Varint reads a 32-bit LEB128 value.
func (c *Cursor) Varint() (int32, error) {
	v, n, err := ReadVar(c.buf, c.pos, 32)
	if err != nil {
		return 0, err
	}
	c.pos += n
	return int32(uint32(v)), nil
}

// Varlong reads a 64-bit LEB128 value.
func (c *Cursor) Varlong() (int64, error) {
	v, n, err := ReadVar(c.buf, c.pos, 64)
	if err != nil {
		return 0, err
	}
	c.pos += n
	return int64(v), nil
}

// Size reads a varint used as a length prefix and rejects negatives.
func (c *Cursor) Size() (int, error) {
	start := c.pos
	v, err := c.Varint()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		c.pos = start
		return 0, fmt.Errorf("%w: %d", ErrNegativeSize, v)
	}
	return int(v), nil
}
