package protofile

import (
	"fmt"
	"io"
	"strings"
)

// Format renders a document back to canonical schema text, one top-level
// item per line. Parsing the result yields a tree Equal to root.
func Format(root List) string {
	var b strings.Builder
	for _, n := range root {
		writeNode(&b, n)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatNode renders a single node.
func FormatNode(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Number:
		b.WriteString(v.Text)
	case *String:
		b.WriteByte('"')
		b.WriteString(v.Text)
		b.WriteByte('"')
	case *Object:
		b.WriteString(v.Name)
		b.WriteByte('(')
		writeList(b, v.Args)
		b.WriteByte(')')
		if v.AttachedList != nil {
			b.WriteByte('[')
			writeList(b, *v.AttachedList)
			b.WriteByte(']')
		}
		if v.AttachedDict != nil {
			b.WriteByte('{')
			for i, p := range *v.AttachedDict {
				if i > 0 {
					b.WriteString(", ")
				}
				writeNode(b, p.Key)
				b.WriteString(": ")
				writeNode(b, p.Value)
			}
			b.WriteByte('}')
		}
	}
}

func writeList(b *strings.Builder, l List) {
	for i, n := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		writeNode(b, n)
	}
}

// Equal reports structural equality, ignoring source offsets.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Text == y.Text
	case *String:
		y, ok := b.(*String)
		return ok && x.Text == y.Text
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Name != y.Name || x.NameHash != y.NameHash || !ListEqual(x.Args, y.Args) {
			return false
		}
		if (x.AttachedList == nil) != (y.AttachedList == nil) || (x.AttachedDict == nil) != (y.AttachedDict == nil) {
			return false
		}
		if x.AttachedList != nil && !ListEqual(*x.AttachedList, *y.AttachedList) {
			return false
		}
		if x.AttachedDict != nil && !DictEqual(*x.AttachedDict, *y.AttachedDict) {
			return false
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// ListEqual reports element-wise structural equality.
func ListEqual(a, b List) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// DictEqual reports pair-wise structural equality, order included.
func DictEqual(a, b Dict) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i].Key, b[i].Key) || !Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// Dump writes an indented debug view of a parse tree.
func Dump(w io.Writer, root List) {
	dumpList(w, root, 0)
}

func dumpList(w io.Writer, l List, level int) {
	for _, n := range l {
		dumpNode(w, n, level)
	}
}

func dumpNode(w io.Writer, n Node, level int) {
	pad := strings.Repeat("\t", level)
	switch v := n.(type) {
	case *Number:
		fmt.Fprintf(w, "%s%s\n", pad, v.Text)
	case *String:
		fmt.Fprintf(w, "%s%q\n", pad, v.Text)
	case *Object:
		fmt.Fprintf(w, "%s%s:\n", pad, v.Name)
		fmt.Fprintf(w, "%s\tArgs:\n", pad)
		dumpList(w, v.Args, level+2)
		if v.AttachedList != nil {
			fmt.Fprintf(w, "%s\tList:\n", pad)
			dumpList(w, *v.AttachedList, level+2)
		}
		if v.AttachedDict != nil {
			fmt.Fprintf(w, "%s\tDict:\n", pad)
			for _, p := range *v.AttachedDict {
				fmt.Fprintf(w, "%s\t\tKey:\n", pad)
				dumpNode(w, p.Key, level+3)
				fmt.Fprintf(w, "%s\t\tValue:\n", pad)
				dumpNode(w, p.Value, level+3)
			}
		}
	}
}
