// Package serde decodes packet bodies by walking a parsed packet
// definition against a byte buffer.
//
// A definition is the ordered field list of one packet, for example
//
//	varint("protocol_version"), string("server_address", 255),
//	ushort("server_port"), varint("next_state")
//
// Each field object names its datatype; the first argument is the
// field name. The result is a bundle holding one child per decoded field.
package serde

import (
	"errors"
	"fmt"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/protocol/namehash"
	"github.com/danmuck/mcdbg/internal/protocol/packet"
	"github.com/danmuck/mcdbg/internal/protocol/protofile"
	"github.com/danmuck/mcdbg/internal/protocol/wire"
)

var (
	ErrBufferTooSmall   = errors.New("serde: buffer too small")
	ErrPacketTooShort   = errors.New("serde: packet too short")
	ErrNestingDepth     = errors.New("serde: nesting depth exceeded")
	ErrUnknownDatatype  = errors.New("serde: unknown datatype")
	ErrMissingFieldName = errors.New("serde: missing field name")
	ErrBadDefinition    = errors.New("serde: bad field definition")
	ErrBadVarint        = errors.New("serde: bad varint")
	ErrStringTooLong    = errors.New("serde: string exceeds declared max length")
	ErrListTooLong      = errors.New("serde: array count exceeds list limit")
)

const op = "serde.Decode"

// Limits bound the work a single decode may do.
type Limits struct {
	// MaxDepth is the deepest nested body allowed. The packet's own
	// field list is depth 0.
	MaxDepth int
	// MaxListLen caps prefixed_array element counts.
	MaxListLen int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDepth:   32,
		MaxListLen: packet.DefaultListCap,
	}
}

// Decoder is immutable and safe for concurrent use; every call keeps its
// own cursor and output tree.
type Decoder struct {
	limits Limits
}

func NewDecoder(limits Limits) *Decoder {
	def := DefaultLimits()
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = def.MaxDepth
	}
	if limits.MaxListLen <= 0 {
		limits.MaxListLen = def.MaxListLen
	}
	return &Decoder{limits: limits}
}

func (d *Decoder) Limits() Limits { return d.limits }

// Decode decodes def with the default limits.
func Decode(def protofile.List, buf []byte, cursor *int) (*packet.Node, error) {
	return NewDecoder(DefaultLimits()).Decode(def, buf, cursor)
}

// Decode reads the fields of def from buf starting at *cursor and returns
// an unnamed bundle. On success *cursor is past the last decoded byte.
// On failure *cursor stays at the start of the top-level field that
// failed and no partial tree is returned.
func (d *Decoder) Decode(def protofile.List, buf []byte, cursor *int) (*packet.Node, error) {
	start := 0
	if cursor != nil {
		start = *cursor
	}
	if start < 0 || start > len(buf) {
		return nil, protocol.Wrap(protocol.KindInvalidPacket, op, "", ErrBufferTooSmall, "cursor %d outside buffer of %d bytes", start, len(buf))
	}
	s := &state{limits: d.limits, cur: wire.NewCursor(buf, start)}
	root := packet.NewBundle("")
	err := s.sequence(def, 0, root.Bundle())
	if cursor != nil {
		*cursor = s.cur.Pos()
	}
	if err != nil {
		return nil, err
	}
	return root, nil
}

type state struct {
	limits Limits
	cur    *wire.Cursor
}

func (s *state) enter(depth int, field string) error {
	if depth > s.limits.MaxDepth {
		return protocol.Wrap(protocol.KindInvalidPacketFormat, op, field, ErrNestingDepth, "depth %d exceeds max %d", depth, s.limits.MaxDepth)
	}
	return nil
}

// sequence decodes every field of def into out. The cursor is left at
// the start of the failing field on error.
func (s *state) sequence(def protofile.List, depth int, out *packet.Bundle) error {
	if err := s.enter(depth, ""); err != nil {
		return err
	}
	for i, item := range def {
		obj, ok := item.(*protofile.Object)
		if !ok {
			return protocol.Wrap(protocol.KindInvalidPacketFormat, op, "", ErrBadDefinition, "packet definitions may only contain objects, got %s at offset %d", item.Type(), item.Offset())
		}
		mark := s.cur.Pos()
		if err := s.field(obj, depth, out); err != nil {
			s.cur.Reset(mark)
			return err
		}
		if s.cur.AtEnd() && i < len(def)-1 {
			next := fieldLabel(def[i+1])
			return protocol.Wrap(protocol.KindInvalidPacket, op, next, ErrPacketTooShort, "buffer ended at offset %d with %d fields left", s.cur.Pos(), len(def)-1-i)
		}
	}
	return nil
}

func (s *state) field(obj *protofile.Object, depth int, out *packet.Bundle) error {
	if obj.NameHash == namehash.PrefixedOptional {
		return s.optional(obj, depth, out)
	}

	name, err := fieldName(obj)
	if err != nil {
		return err
	}

	var v packet.Value
	switch obj.NameHash {
	case namehash.Boolean:
		b, err := s.cur.Byte()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Bool(b != 0)
	case namehash.Byte:
		b, err := s.cur.Byte()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Byte(int8(b))
	case namehash.Ubyte:
		b, err := s.cur.Byte()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Ubyte(b)
	case namehash.Short:
		n, err := s.cur.Uint16()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Short(int16(n))
	case namehash.Ushort:
		n, err := s.cur.Uint16()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Ushort(n)
	case namehash.Int:
		n, err := s.cur.Uint32()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Int(int32(n))
	case namehash.Uint:
		n, err := s.cur.Uint32()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Uint(n)
	case namehash.Long:
		n, err := s.cur.Uint64()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Long(int64(n))
	case namehash.Ulong:
		n, err := s.cur.Uint64()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Ulong(n)
	case namehash.Float:
		f, err := s.cur.Float32()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Float(f)
	case namehash.Double:
		f, err := s.cur.Float64()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Double(f)
	case namehash.Varint, namehash.VarintEnum:
		n, err := s.cur.Varint()
		if err != nil {
			return badVarint(name, err)
		}
		v = packet.Varint(n)
	case namehash.Varlong:
		n, err := s.cur.Varlong()
		if err != nil {
			return badVarint(name, err)
		}
		v = packet.Varlong(n)
	case namehash.UUID:
		if err := s.cur.Need(16); err != nil {
			return tooSmall(name, obj, err)
		}
		hi, _ := s.cur.Uint64()
		lo, _ := s.cur.Uint64()
		v = packet.UUID{High: hi, Low: lo}
	case namehash.Position:
		n, err := s.cur.Uint64()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = UnpackPosition(n)
	case namehash.Angle:
		b, err := s.cur.Byte()
		if err != nil {
			return tooSmall(name, obj, err)
		}
		v = packet.Angle(b)
	case namehash.String:
		data, err := s.prefixed(name, obj, true)
		if err != nil {
			return err
		}
		v = packet.String(data)
	case namehash.PrefixedByteArray:
		data, err := s.prefixed(name, obj, false)
		if err != nil {
			return err
		}
		v = packet.ByteArray(data)
	case namehash.ByteArray:
		data, err := s.byteArray(name, obj)
		if err != nil {
			return err
		}
		v = packet.ByteArray(data)
	case namehash.PrefixedArray:
		node, err := s.array(name, obj, depth)
		if err != nil {
			return err
		}
		out.Set(node)
		return nil
	default:
		return protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, ErrUnknownDatatype, "unknown datatype %q at offset %d", obj.Name, obj.Start)
	}
	out.Set(packet.New(name, v))
	return nil
}

// optional handles both forms of prefixed_optional: with an attached
// list it is a named container decoded one level deeper; otherwise its
// single object argument is a field decoded into the same parent.
func (s *state) optional(obj *protofile.Object, depth int, out *packet.Bundle) error {
	var (
		name  string
		inner *protofile.Object
	)
	if obj.AttachedList != nil {
		n, err := fieldName(obj)
		if err != nil {
			return err
		}
		name = n
	} else {
		o, ok := obj.ObjectArg(0)
		if !ok || len(obj.Args) != 1 {
			return protocol.Wrap(protocol.KindInvalidPacketFormat, op, "", ErrBadDefinition, "prefixed_optional at offset %d needs an attached list or exactly one field argument", obj.Start)
		}
		inner = o
		name = fieldLabel(o)
	}

	flag, err := s.cur.Byte()
	if err != nil {
		return tooSmall(name, obj, err)
	}
	if flag == 0 {
		return nil
	}

	if inner != nil {
		if err := s.enter(depth+1, name); err != nil {
			return err
		}
		return s.field(inner, depth+1, out)
	}
	if err := s.enter(depth+1, name); err != nil {
		return err
	}
	child := packet.NewBundle(name)
	if err := s.sequence(*obj.AttachedList, depth+1, child.Bundle()); err != nil {
		return err
	}
	out.Set(child)
	return nil
}

// prefixed reads a varint length then that many bytes. Strings accept an
// optional integer max length as the second argument.
func (s *state) prefixed(name string, obj *protofile.Object, capped bool) ([]byte, error) {
	limit := int64(-1)
	if capped && obj.Arg(1) != nil {
		n, ok := obj.NumberArg(1)
		if !ok {
			return nil, protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, ErrBadDefinition, "max length of %s must be an integer", obj.Name)
		}
		v, err := n.Int()
		if err != nil {
			return nil, protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, err, "max length of %s must be an integer", obj.Name)
		}
		if v < 0 {
			return nil, protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, ErrBadDefinition, "max length of %s must not be negative, got %s", obj.Name, n.Text)
		}
		limit = v
	}
	size, err := s.cur.Size()
	if err != nil {
		return nil, badVarint(name, err)
	}
	if limit >= 0 && int64(size) > limit {
		return nil, protocol.Wrap(protocol.KindInvalidPacket, op, name, ErrStringTooLong, "length %d exceeds max %d", size, limit)
	}
	data, err := s.cur.Bytes(size)
	if err != nil {
		return nil, tooSmall(name, obj, err)
	}
	return data, nil
}

// byteArray reads exactly N bytes when a length argument is given,
// otherwise everything left in the buffer.
func (s *state) byteArray(name string, obj *protofile.Object) ([]byte, error) {
	if obj.Arg(1) == nil {
		return s.cur.Rest(), nil
	}
	n, ok := obj.NumberArg(1)
	if !ok {
		return nil, protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, ErrBadDefinition, "length of byte_array must be an integer")
	}
	size, err := n.Int()
	if err != nil || size < 0 {
		return nil, protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, ErrBadDefinition, "length of byte_array must be a non-negative integer, got %s", n.Text)
	}
	if size > int64(s.cur.Len()) {
		return nil, tooSmall(name, obj, wire.ErrShortBuffer)
	}
	data, err := s.cur.Bytes(int(size))
	if err != nil {
		return nil, tooSmall(name, obj, err)
	}
	return data, nil
}

// array reads a varint count then count bundles of the attached list.
func (s *state) array(name string, obj *protofile.Object, depth int) (*packet.Node, error) {
	if obj.AttachedList == nil {
		return nil, protocol.Wrap(protocol.KindInvalidPacketFormat, op, name, ErrBadDefinition, "prefixed_array at offset %d needs an attached list of element fields", obj.Start)
	}
	count, err := s.cur.Size()
	if err != nil {
		return nil, badVarint(name, err)
	}
	if count > s.limits.MaxListLen {
		return nil, protocol.Wrap(protocol.KindInvalidPacket, op, name, ErrListTooLong, "count %d exceeds max %d", count, s.limits.MaxListLen)
	}
	if err := s.enter(depth+1, name); err != nil {
		return nil, err
	}
	node := packet.NewListCap(name, s.limits.MaxListLen)
	list := node.List()
	for i := 0; i < count; i++ {
		elem := packet.NewBundle("")
		if err := s.sequence(*obj.AttachedList, depth+1, elem.Bundle()); err != nil {
			return nil, err
		}
		if err := list.Append(elem); err != nil {
			return nil, protocol.Wrap(protocol.KindInvalidPacket, op, name, err, "element %d", i)
		}
	}
	return node, nil
}

// fieldName returns the first argument as a field name.
func fieldName(obj *protofile.Object) (string, error) {
	lit, ok := obj.StringArg(0)
	if !ok {
		return "", protocol.Wrap(protocol.KindInvalidPacketFormat, op, "", ErrMissingFieldName, "%s at offset %d must have a string field name as its first argument", obj.Name, obj.Start)
	}
	name, err := lit.Value()
	if err != nil {
		return "", protocol.Wrap(protocol.KindInvalidPacketFormat, op, lit.Text, err, "bad field name")
	}
	if err := namehash.Check(name); err != nil {
		return "", protocol.Wrap(protocol.KindInvalidPacketFormat, op, namehash.Clamp(name), err, "field name of %s at offset %d", obj.Name, obj.Start)
	}
	return name, nil
}

func fieldLabel(n protofile.Node) string {
	if obj, ok := n.(*protofile.Object); ok {
		if lit, ok := obj.StringArg(0); ok {
			return lit.Text
		}
		return obj.Name
	}
	return ""
}

func tooSmall(name string, obj *protofile.Object, cause error) error {
	return protocol.Wrap(protocol.KindInvalidPacket, op, name, fmt.Errorf("%w: %w", ErrBufferTooSmall, cause), "buffer too small for %s", obj.Name)
}

func badVarint(name string, cause error) error {
	if errors.Is(cause, wire.ErrShortBuffer) {
		return protocol.Wrap(protocol.KindInvalidPacket, op, name, fmt.Errorf("%w: %w", ErrBufferTooSmall, cause), "buffer too small for varint")
	}
	return protocol.Wrap(protocol.KindInvalidPacket, op, name, fmt.Errorf("%w: %w", ErrBadVarint, cause), "bad varint")
}
