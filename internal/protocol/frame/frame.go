// Package frame reads and writes uncompressed packet frames:
//
//	varint(length) || varint(packet id) || body
//
// where length counts the id and body bytes. Compression and encryption
// are not handled.
package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/mcdbg/internal/protocol/wire"
)

var (
	ErrShortHeader   = errors.New("frame: truncated length prefix")
	ErrBadLength     = errors.New("frame: invalid frame length")
	ErrFrameTooLarge = errors.New("frame: frame too large")
	ErrTruncated     = errors.New("frame: truncated frame")
	ErrBadPacketID   = errors.New("frame: invalid packet id")
)

// Frame is one packet as carried on the stream.
type Frame struct {
	ID   int32
	Body []byte
}

// Len is the encoded length field of f.
func (f Frame) Len() int {
	return wire.VarintLen(uint64(uint32(f.ID))) + len(f.Body)
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxFrameBytes int
}

// DefaultLimits allows the largest length a 3-byte varint can carry.
func DefaultLimits() Limits {
	return Limits{
		MaxFrameBytes: 1<<21 - 1,
	}
}

// ByteReader is what ReadFrame consumes; *bufio.Reader and *bytes.Reader
// both satisfy it.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// ReadFrame reads the next frame. It returns io.EOF only when the stream
// ends cleanly between frames.
func ReadFrame(r ByteReader, limits Limits) (Frame, error) {
	length, err := readLength(r)
	if err != nil {
		return Frame{}, err
	}
	if length <= 0 {
		return Frame{}, fmt.Errorf("%w: %d", ErrBadLength, length)
	}
	if length > limits.MaxFrameBytes {
		return Frame{}, fmt.Errorf("%w: %d bytes, max %d", ErrFrameTooLarge, length, limits.MaxFrameBytes)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Frame{}, fmt.Errorf("%w: want %d bytes", ErrTruncated, length)
		}
		return Frame{}, err
	}

	c := wire.NewCursor(payload, 0)
	id, err := c.Varint()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrBadPacketID, err)
	}
	return Frame{ID: id, Body: payload[c.Pos():]}, nil
}

// readLength reads the length prefix one byte at a time so nothing past
// it is consumed.
func readLength(r io.ByteReader) (int, error) {
	var buf [wire.MaxVarintLen32]byte
	for i := 0; i < len(buf); i++ {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if i == 0 {
					return 0, io.EOF
				}
				return 0, ErrShortHeader
			}
			return 0, err
		}
		buf[i] = b
		if b&0x80 == 0 {
			v, _, err := wire.ReadVar(buf[:i+1], 0, 32)
			if err != nil {
				return 0, fmt.Errorf("%w: %w", ErrBadLength, err)
			}
			return int(int32(uint32(v))), nil
		}
	}
	return 0, fmt.Errorf("%w: %w", ErrBadLength, wire.ErrVarintTooLong)
}

// WriteFrame encodes f. It mirrors ReadFrame and exists for fixtures and
// capture replays.
func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	n := f.Len()
	if n > limits.MaxFrameBytes {
		return fmt.Errorf("%w: %d bytes, max %d", ErrFrameTooLarge, n, limits.MaxFrameBytes)
	}
	out := make([]byte, 0, wire.MaxVarintLen32+n)
	out = wire.AppendVarint(out, uint32(n))
	out = wire.AppendVarint(out, uint32(f.ID))
	out = append(out, f.Body...)
	_, err := w.Write(out)
	return err
}
