package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log"
	"os"

	"github.com/danmuck/mcdbg/internal/protocol/namehash"
)

func main() {
	output := flag.String("output", "internal/protocol/namehash/wellknown.go", "output path for the generated table")
	check := flag.Bool("check", false, "fail if the existing file differs instead of writing it")
	flag.Parse()

	src, err := render(namehash.Names)
	if err != nil {
		log.Fatal(err)
	}

	if *check {
		current, err := os.ReadFile(*output)
		if err != nil {
			log.Fatal(err)
		}
		if !bytes.Equal(current, src) {
			log.Fatalf("%s is stale; rerun namegen", *output)
		}
		log.Printf("Checked %d well-known names in %s", len(namehash.Names), *output)
		return
	}

	if err := os.WriteFile(*output, src, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %d well-known names to %s", len(namehash.Names), *output)
}

func render(names []namehash.Name) ([]byte, error) {
	seen := make(map[uint64]string, len(names))
	var buf bytes.Buffer
	buf.WriteString("// Code generated by cmd/namegen; DO NOT EDIT.\n\npackage namehash\n")

	group := ""
	for _, n := range names {
		if err := namehash.Check(n.Keyword); err != nil {
			return nil, err
		}
		h := namehash.Hash(n.Keyword)
		if prev, ok := seen[h]; ok {
			return nil, fmt.Errorf("hash collision between %q and %q", prev, n.Keyword)
		}
		seen[h] = n.Keyword

		if n.Group != group {
			if group != "" {
				buf.WriteString(")\n")
			}
			fmt.Fprintf(&buf, "\n// %s\nconst (\n", n.Group)
			group = n.Group
		}
		fmt.Fprintf(&buf, "\t%s uint64 = 0x%016x // %q\n", n.Ident, h, n.Keyword)
	}
	if group != "" {
		buf.WriteString(")\n")
	}

	buf.WriteString("\n// WellKnown returns every generated name keyed by its hash.\n")
	buf.WriteString("func WellKnown() map[uint64]string {\n\treturn map[uint64]string{\n")
	for _, n := range names {
		fmt.Fprintf(&buf, "\t\t%s: %q,\n", n.Ident, n.Keyword)
	}
	buf.WriteString("\t}\n}\n")

	return format.Source(buf.Bytes())
}
