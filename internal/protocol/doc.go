// Package protocol owns the schema-driven packet decoding core.
//
// Ownership boundary:
// - namehash: fixed-width identifier hashing and the well-known name table
// - protofile: .proto schema text parsing
// - packet: decoded value tree
// - wire: bounded byte cursor and variable-length integers
// - serde: schema-driven binary decoding
// - registry: version, namespace and enum lookup built from a schema
// - frame: length-prefixed packet framing for capture streams
// - session: namespace tracking across connection state changes
//
// The core is synchronous and holds no shared mutable state. A built
// registry is read-only and may be shared across concurrent decode calls.
package protocol
