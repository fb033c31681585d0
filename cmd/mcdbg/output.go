package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danmuck/mcdbg/internal/protocol/packet"
	"github.com/fxamacker/cbor/v2"
)

// writeTree renders one decoded packet in the selected format.
func writeTree(w io.Writer, format string, node *packet.Node) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"packet": node.Name(), "fields": node.Interface()})
	case "cbor":
		raw, err := cbor.Marshal(map[string]any{"packet": node.Name(), "fields": node.Interface()})
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	default:
		return packet.Dump(w, node)
	}
}

// writeValue renders a non-tree result (listings, capture summaries).
func writeValue(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "cbor":
		raw, err := cbor.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	default:
		if text == nil {
			_, err := fmt.Fprintf(w, "%v\n", v)
			return err
		}
		return text(w)
	}
}
