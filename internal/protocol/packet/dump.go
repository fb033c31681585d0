package packet

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Dump writes an indented, human-readable tree rooted at n.
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, 0)
}

// Sprint renders the tree as Dump would.
func Sprint(n *Node) string {
	var b strings.Builder
	_ = Dump(&b, n)
	return b.String()
}

func dump(w io.Writer, n *Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	switch v := n.value.(type) {
	case *Bundle:
		if _, err := fmt.Fprintf(w, "%s%s (%s, %d fields)\n", indent, label(n), v.Kind(), v.Len()); err != nil {
			return err
		}
		for _, child := range v.nodes {
			if err := dump(w, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *List:
		if _, err := fmt.Fprintf(w, "%s%s (%s, %d items)\n", indent, label(n), v.Kind(), v.Len()); err != nil {
			return err
		}
		for _, child := range v.nodes {
			if err := dump(w, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := fmt.Fprintf(w, "%s%s (%s) = %s\n", indent, label(n), n.Kind(), formatScalar(n.value))
	return err
}

func label(n *Node) string {
	if n.name == "" {
		return "<unnamed>"
	}
	return n.name
}

func formatScalar(v Value) string {
	switch v := v.(type) {
	case String:
		return fmt.Sprintf("%q", string(v))
	case ByteArray:
		return fmt.Sprintf("[% x]", []byte(v))
	case Position:
		return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
	case Angle:
		return fmt.Sprintf("%d (%.2f deg)", uint8(v), v.Degrees())
	case UUID:
		return v.String()
	case Bool:
		return fmt.Sprint(bool(v))
	default:
		return fmt.Sprint(v)
	}
}

// Interface converts the tree to plain Go values suitable for JSON or
// CBOR encoding. Bundles become maps keyed by field name, lists become
// slices, strings become Go strings and UUIDs their canonical text.
func (n *Node) Interface() any {
	return export(n.value)
}

func export(v Value) any {
	switch v := v.(type) {
	case *Bundle:
		out := make(map[string]any, len(v.nodes))
		for _, child := range v.nodes {
			out[child.name] = export(child.value)
		}
		return out
	case *List:
		out := make([]any, 0, len(v.nodes))
		for _, child := range v.nodes {
			out = append(out, export(child.value))
		}
		return out
	case Bool:
		return bool(v)
	case Byte:
		return int8(v)
	case Ubyte:
		return uint8(v)
	case Short:
		return int16(v)
	case Ushort:
		return uint16(v)
	case Int:
		return int32(v)
	case Uint:
		return uint32(v)
	case Long:
		return int64(v)
	case Ulong:
		return uint64(v)
	case Float:
		if text, ok := nonFinite(float64(v)); ok {
			return text
		}
		return float32(v)
	case Double:
		if text, ok := nonFinite(float64(v)); ok {
			return text
		}
		return float64(v)
	case Varint:
		return int32(v)
	case Varlong:
		return int64(v)
	case String:
		return string(v)
	case ByteArray:
		return []byte(v)
	case Position:
		return map[string]any{"x": v.X, "y": v.Y, "z": v.Z}
	case Angle:
		return uint8(v)
	case UUID:
		return v.String()
	}
	return nil
}

// nonFinite spells NaN and the infinities as strings; JSON has no
// literal for them.
func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "+Inf", true
	case math.IsInf(f, -1):
		return "-Inf", true
	}
	return "", false
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Interface())
}
