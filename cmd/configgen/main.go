package main

import (
	"flag"
	"log"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/mcdbg/internal/config"
)

func defaultPath(kind string) string {
	switch kind {
	case "inspector", "mcdbgd":
		return "cmd/mcdbgd/config.toml"
	case "cli", "mcdbg":
		return "cmd/mcdbg/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}

func main() {
	kind := flag.String("kind", "inspector", "config kind: inspector|cli")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		switch *kind {
		case "inspector", "mcdbgd":
			if _, err := config.LoadInspectorConfig(path); err != nil {
				log.Fatal(err)
			}
		case "cli", "mcdbg":
			// mcdbg applies its own key checks; this only catches syntax.
			var raw map[string]any
			if _, err := toml.DecodeFile(path, &raw); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
