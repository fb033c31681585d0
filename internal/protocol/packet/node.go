package packet

import (
	"errors"
	"fmt"

	"github.com/danmuck/mcdbg/internal/protocol/namehash"
)

// DefaultListCap bounds list nodes unless a caller picks another cap.
const DefaultListCap = 1024

var ErrListFull = errors.New("packet: list capacity exceeded")

// KindError is the panic value raised when a node is read or written as
// a variant it does not hold.
type KindError struct {
	Name string
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("packet: node %q holds %s, not %s", e.Name, e.Got, e.Want)
}

// Node is a named value. The name is clamped to namehash.MaxNameLen bytes
// and Hash always equals namehash.Hash(Name).
type Node struct {
	name  string
	hash  uint64
	value Value
}

// New wraps v in a node called name.
func New(name string, v Value) *Node {
	if v == nil {
		panic("packet: nil value")
	}
	name = namehash.Clamp(name)
	return &Node{name: name, hash: namehash.Hash(name), value: v}
}

func NewBool(name string, v bool) *Node         { return New(name, Bool(v)) }
func NewByte(name string, v int8) *Node         { return New(name, Byte(v)) }
func NewUbyte(name string, v uint8) *Node       { return New(name, Ubyte(v)) }
func NewShort(name string, v int16) *Node       { return New(name, Short(v)) }
func NewUshort(name string, v uint16) *Node     { return New(name, Ushort(v)) }
func NewInt(name string, v int32) *Node         { return New(name, Int(v)) }
func NewUint(name string, v uint32) *Node       { return New(name, Uint(v)) }
func NewLong(name string, v int64) *Node        { return New(name, Long(v)) }
func NewUlong(name string, v uint64) *Node      { return New(name, Ulong(v)) }
func NewFloat(name string, v float32) *Node     { return New(name, Float(v)) }
func NewDouble(name string, v float64) *Node    { return New(name, Double(v)) }
func NewVarint(name string, v int32) *Node      { return New(name, Varint(v)) }
func NewVarlong(name string, v int64) *Node     { return New(name, Varlong(v)) }
func NewString(name string, v []byte) *Node     { return New(name, String(v)) }
func NewByteArray(name string, v []byte) *Node  { return New(name, ByteArray(v)) }
func NewPosition(name string, v Position) *Node { return New(name, v) }
func NewAngle(name string, v uint8) *Node       { return New(name, Angle(v)) }
func NewUUID(name string, v UUID) *Node         { return New(name, v) }

// NewBundle creates an empty bundle node.
func NewBundle(name string) *Node {
	return New(name, &Bundle{index: make(map[uint64]int)})
}

// NewList creates an empty list node holding at most DefaultListCap items.
func NewList(name string) *Node {
	return NewListCap(name, DefaultListCap)
}

// NewListCap creates an empty list node with the given capacity.
func NewListCap(name string, capacity int) *Node {
	if capacity < 0 {
		capacity = 0
	}
	return New(name, &List{capacity: capacity})
}

func (n *Node) Name() string { return n.name }
func (n *Node) Hash() uint64 { return n.hash }
func (n *Node) Kind() Kind   { return n.value.Kind() }
func (n *Node) Value() Value { return n.value }

// Rename replaces the name and recomputes the hash. Names longer than
// namehash.MaxNameLen are truncated. A node already stored in a bundle
// must be renamed before insertion, not after.
func (n *Node) Rename(name string) *Node {
	n.name = namehash.Clamp(name)
	n.hash = namehash.Hash(n.name)
	return n
}

// Set replaces the payload with another value of the same variant.
func (n *Node) Set(v Value) {
	if v == nil || v.Kind() != n.Kind() {
		got := Kind(0xff)
		if v != nil {
			got = v.Kind()
		}
		panic(&KindError{Name: n.name, Want: n.Kind(), Got: got})
	}
	n.value = v
}

func as[T Value](n *Node, want Kind) T {
	v, ok := n.value.(T)
	if !ok {
		panic(&KindError{Name: n.name, Want: want, Got: n.Kind()})
	}
	return v
}

func (n *Node) Bool() bool         { return bool(as[Bool](n, KindBoolean)) }
func (n *Node) Byte() int8         { return int8(as[Byte](n, KindByte)) }
func (n *Node) Ubyte() uint8       { return uint8(as[Ubyte](n, KindUbyte)) }
func (n *Node) Short() int16       { return int16(as[Short](n, KindShort)) }
func (n *Node) Ushort() uint16     { return uint16(as[Ushort](n, KindUshort)) }
func (n *Node) Int() int32         { return int32(as[Int](n, KindInt)) }
func (n *Node) Uint() uint32       { return uint32(as[Uint](n, KindUint)) }
func (n *Node) Long() int64        { return int64(as[Long](n, KindLong)) }
func (n *Node) Ulong() uint64      { return uint64(as[Ulong](n, KindUlong)) }
func (n *Node) Float() float32     { return float32(as[Float](n, KindFloat)) }
func (n *Node) Double() float64    { return float64(as[Double](n, KindDouble)) }
func (n *Node) Varint() int32      { return int32(as[Varint](n, KindVarint)) }
func (n *Node) Varlong() int64     { return int64(as[Varlong](n, KindVarlong)) }
func (n *Node) Blob() []byte       { return []byte(as[String](n, KindString)) }
func (n *Node) ByteArray() []byte  { return []byte(as[ByteArray](n, KindByteArray)) }
func (n *Node) Position() Position { return as[Position](n, KindPosition) }
func (n *Node) Angle() uint8       { return uint8(as[Angle](n, KindAngle)) }
func (n *Node) UUID() UUID         { return as[UUID](n, KindUUID) }
func (n *Node) Bundle() *Bundle    { return as[*Bundle](n, KindBundle) }
func (n *Node) List() *List        { return as[*List](n, KindList) }
func (n *Node) Text() string       { return string(as[String](n, KindString)) }
func (n *Node) IsContainer() bool  { return n.Kind() == KindBundle || n.Kind() == KindList }

// Bundle maps name hashes to child nodes and remembers insertion order.
type Bundle struct {
	index map[uint64]int
	nodes []*Node
}

func (*Bundle) Kind() Kind { return KindBundle }
func (*Bundle) value()     {}

// Set stores child under its hash. A previous child with the same hash is
// dropped and the new one takes its position.
func (b *Bundle) Set(child *Node) {
	if child == nil {
		return
	}
	if b.index == nil {
		b.index = make(map[uint64]int)
	}
	if i, ok := b.index[child.hash]; ok {
		b.nodes[i] = child
		return
	}
	b.index[child.hash] = len(b.nodes)
	b.nodes = append(b.nodes, child)
}

// Get looks a child up by name hash.
func (b *Bundle) Get(hash uint64) (*Node, bool) {
	i, ok := b.index[hash]
	if !ok {
		return nil, false
	}
	return b.nodes[i], true
}

// Lookup looks a child up by name.
func (b *Bundle) Lookup(name string) (*Node, bool) {
	return b.Get(namehash.Hash(name))
}

func (b *Bundle) Len() int { return len(b.nodes) }

// Nodes returns the children in insertion order.
func (b *Bundle) Nodes() []*Node {
	out := make([]*Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// List is an ordered, bounded sequence of nodes.
type List struct {
	capacity int
	nodes    []*Node
}

func (*List) Kind() Kind { return KindList }
func (*List) value()     {}

// Append adds child at the end, failing once the capacity is reached.
func (l *List) Append(child *Node) error {
	if len(l.nodes) >= l.capacity {
		return fmt.Errorf("%w: cap %d", ErrListFull, l.capacity)
	}
	l.nodes = append(l.nodes, child)
	return nil
}

// At returns the i-th item.
func (l *List) At(i int) (*Node, bool) {
	if i < 0 || i >= len(l.nodes) {
		return nil, false
	}
	return l.nodes[i], true
}

func (l *List) Len() int { return len(l.nodes) }
func (l *List) Cap() int { return l.capacity }

// Nodes returns the items in order.
func (l *List) Nodes() []*Node {
	out := make([]*Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}
