// Package registry organizes a parsed schema document into a Version:
// protocol metadata, named namespaces with packet-ID tables, and enums.
//
// A document looks like
//
//	version_info(){ "protocol_number": 763 }
//	enums(){ "Intent": enum(){ 1: "status", 2: "login" } }
//	namespace("handshake")[
//	    packet(0, "Handshake")[
//	        varint("protocol_version"), string("server_address", 255),
//	        ushort("server_port"), varint_enum("next_state", "Intent")
//	    ]
//	]
//
// A built Version is read-only and may be shared by concurrent decoders.
package registry

import (
	"fmt"
	"sort"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/protocol/namehash"
	"github.com/danmuck/mcdbg/internal/protocol/packet"
	"github.com/danmuck/mcdbg/internal/protocol/protofile"
	"github.com/danmuck/mcdbg/internal/protocol/serde"
)

// MaxPacketID is the largest packet id a namespace table holds.
const MaxPacketID = 255

// Packet is one declared packet: its id, name and field list.
type Packet struct {
	ID         int
	Name       string
	Definition protofile.List
	Offset     int
}

// Decode decodes buf with this packet's definition and names the result
// after the packet.
func (p *Packet) Decode(d *serde.Decoder, buf []byte, cursor *int) (*packet.Node, error) {
	node, err := d.Decode(p.Definition, buf, cursor)
	if err != nil {
		return nil, err
	}
	return node.Rename(p.Name), nil
}

// Namespace is a named packet-ID table.
type Namespace struct {
	Name    string
	Hash    uint64
	packets [MaxPacketID + 1]*Packet
	count   int
}

// Packet returns the declaration for id.
func (ns *Namespace) Packet(id int) (*Packet, error) {
	if id < 0 || id > MaxPacketID || ns.packets[id] == nil {
		return nil, protocol.Errorf(protocol.KindNotFound, "registry.Packet", "namespace %q has no packet with id %d", ns.Name, id)
	}
	return ns.packets[id], nil
}

// Packets lists the declarations by ascending id.
func (ns *Namespace) Packets() []*Packet {
	out := make([]*Packet, 0, ns.count)
	for _, p := range ns.packets {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (ns *Namespace) Len() int { return ns.count }

// EnumValue is one value: label entry of an enum.
type EnumValue struct {
	Value int64
	Label string
}

// Enum is a registered value-to-label mapping. Decoding does not consult
// enums; they exist for display.
type Enum struct {
	Name   string
	Hash   uint64
	Values []EnumValue
	labels map[int64]string
}

// Label returns the label of v.
func (e *Enum) Label(v int64) (string, bool) {
	l, ok := e.labels[v]
	return l, ok
}

// Version is a built schema document.
type Version struct {
	Protocol int64
	// Root is the parse tree the version was built from.
	Root protofile.List

	namespaces []*Namespace
	byHash     map[uint64][]*Namespace
	enums      map[uint64]*Enum
	enumOrder  []*Enum
	decoder    *serde.Decoder
}

// Namespace looks a namespace up by exact name. A miss is a NotFound
// error the caller may recover from.
func (v *Version) Namespace(name string) (*Namespace, error) {
	for _, ns := range v.byHash[namehash.Hash(name)] {
		if ns.Name == name {
			return ns, nil
		}
	}
	return nil, protocol.Errorf(protocol.KindNotFound, "registry.Namespace", "namespace %q not found", name)
}

// Namespaces lists namespaces in declaration order.
func (v *Version) Namespaces() []*Namespace {
	out := make([]*Namespace, len(v.namespaces))
	copy(out, v.namespaces)
	return out
}

// Enum looks an enum up by name.
func (v *Version) Enum(name string) (*Enum, error) {
	e, ok := v.enums[namehash.Hash(name)]
	if !ok {
		return nil, protocol.Errorf(protocol.KindNotFound, "registry.Enum", "enum %q not found", name)
	}
	return e, nil
}

// Enums lists enums in declaration order.
func (v *Version) Enums() []*Enum {
	out := make([]*Enum, len(v.enumOrder))
	copy(out, v.enumOrder)
	return out
}

// Decoder returns the decoder used by Decode.
func (v *Version) Decoder() *serde.Decoder { return v.decoder }

// Decode decodes a whole packet body for the given namespace and id.
func (v *Version) Decode(namespace string, id int, buf []byte) (*packet.Node, error) {
	ns, err := v.Namespace(namespace)
	if err != nil {
		return nil, err
	}
	p, err := ns.Packet(id)
	if err != nil {
		return nil, err
	}
	cursor := 0
	return p.Decode(v.decoder, buf, &cursor)
}

// EnumNames returns the sorted names of all enums.
func (v *Version) EnumNames() []string {
	names := make([]string, 0, len(v.enumOrder))
	for _, e := range v.enumOrder {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// BuildError is a fatal problem in a schema document. Line and Column
// are set when the document text is known (see Load).
type BuildError struct {
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *BuildError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("registry: line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("registry: offset %d: %s", e.Offset, e.Message)
}

func (e *BuildError) Unwrap() error {
	return protocol.ErrInvalidPacketFormat
}

func buildErrorf(offset int, format string, args ...any) *BuildError {
	return &BuildError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
