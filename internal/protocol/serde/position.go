package serde

import "github.com/danmuck/mcdbg/internal/protocol/packet"

// UnpackPosition splits a packed block position: x in the top 26 bits,
// z in the next 26 and y in the low 12, all signed.
func UnpackPosition(v uint64) packet.Position {
	s := int64(v)
	return packet.Position{
		X: int32(s >> 38),
		Z: int32(s << 26 >> 38),
		Y: int32(s << 52 >> 52),
	}
}

// PackPosition is the inverse of UnpackPosition. Out of range
// coordinates are truncated to their field width.
func PackPosition(p packet.Position) uint64 {
	return (uint64(int64(p.X))&0x3ffffff)<<38 |
		(uint64(int64(p.Z))&0x3ffffff)<<12 |
		uint64(int64(p.Y))&0xfff
}
