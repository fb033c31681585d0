// Package packet holds decoded packet values.
//
// A Node is a named, self-describing value. Its payload is one of the
// Value variants below and never changes variant after creation. Bundles
// index children by the fixed-width hash of their names; lists keep
// children in order up to a fixed capacity.
package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Kind tags a Value variant.
type Kind uint8

const (
	KindBundle Kind = iota
	KindList
	KindBoolean
	KindByte
	KindUbyte
	KindShort
	KindUshort
	KindInt
	KindUint
	KindLong
	KindUlong
	KindFloat
	KindDouble
	KindVarint
	KindVarlong
	KindString
	KindByteArray
	KindPosition
	KindAngle
	KindUUID
)

var kindNames = [...]string{
	KindBundle:    "BUNDLE",
	KindList:      "LIST",
	KindBoolean:   "BOOLEAN",
	KindByte:      "BYTE",
	KindUbyte:     "UBYTE",
	KindShort:     "SHORT",
	KindUshort:    "USHORT",
	KindInt:       "INT",
	KindUint:      "UINT",
	KindLong:      "LONG",
	KindUlong:     "ULONG",
	KindFloat:     "FLOAT",
	KindDouble:    "DOUBLE",
	KindVarint:    "VARINT",
	KindVarlong:   "VARLONG",
	KindString:    "STRING",
	KindByteArray: "BYTE_ARRAY",
	KindPosition:  "POSITION",
	KindAngle:     "ANGLE",
	KindUUID:      "UUID",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("KIND(%d)", uint8(k))
}

// Value is the sealed set of node payloads.
type Value interface {
	Kind() Kind
	value()
}

type (
	Bool    bool
	Byte    int8
	Ubyte   uint8
	Short   int16
	Ushort  uint16
	Int     int32
	Uint    uint32
	Long    int64
	Ulong   uint64
	Float   float32
	Double  float64
	Varint  int32
	Varlong int64
	// String is a length-prefixed text blob; len is authoritative.
	String []byte
	// ByteArray is a raw byte blob.
	ByteArray []byte
	// Angle is a rotation in steps of 1/256 of a full turn.
	Angle uint8
)

// Position is a block position.
type Position struct {
	X, Y, Z int32
}

// UUID is a 128-bit id read as two big-endian halves.
type UUID struct {
	High, Low uint64
}

func (Bool) Kind() Kind      { return KindBoolean }
func (Byte) Kind() Kind      { return KindByte }
func (Ubyte) Kind() Kind     { return KindUbyte }
func (Short) Kind() Kind     { return KindShort }
func (Ushort) Kind() Kind    { return KindUshort }
func (Int) Kind() Kind       { return KindInt }
func (Uint) Kind() Kind      { return KindUint }
func (Long) Kind() Kind      { return KindLong }
func (Ulong) Kind() Kind     { return KindUlong }
func (Float) Kind() Kind     { return KindFloat }
func (Double) Kind() Kind    { return KindDouble }
func (Varint) Kind() Kind    { return KindVarint }
func (Varlong) Kind() Kind   { return KindVarlong }
func (String) Kind() Kind    { return KindString }
func (ByteArray) Kind() Kind { return KindByteArray }
func (Position) Kind() Kind  { return KindPosition }
func (Angle) Kind() Kind     { return KindAngle }
func (UUID) Kind() Kind      { return KindUUID }

func (Bool) value()      {}
func (Byte) value()      {}
func (Ubyte) value()     {}
func (Short) value()     {}
func (Ushort) value()    {}
func (Int) value()       {}
func (Uint) value()      {}
func (Long) value()      {}
func (Ulong) value()     {}
func (Float) value()     {}
func (Double) value()    {}
func (Varint) value()    {}
func (Varlong) value()   {}
func (String) value()    {}
func (ByteArray) value() {}
func (Position) value()  {}
func (Angle) value()     {}
func (UUID) value()      {}

// Bytes returns the 16 byte big-endian form.
func (u UUID) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], u.High)
	binary.BigEndian.PutUint64(b[8:], u.Low)
	return b
}

func (u UUID) String() string {
	return uuid.UUID(u.Bytes()).String()
}

// UUIDFrom splits a uuid.UUID into halves.
func UUIDFrom(id uuid.UUID) UUID {
	return UUID{
		High: binary.BigEndian.Uint64(id[:8]),
		Low:  binary.BigEndian.Uint64(id[8:]),
	}
}

// Degrees converts the angle to degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 360 / 256
}

// String returns the text of a String value.
func (s String) String() string {
	return string(s)
}
