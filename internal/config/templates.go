package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "inspector", "mcdbgd":
		return inspectorTemplate, nil
	case "cli", "mcdbg":
		return cliTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const inspectorTemplate = `name = "mcdbgd"
addr = ":9300"
schema_path = "protocols/763.proto"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 4194304

[decode]
max_depth = 32
max_list_len = 1024
max_frame_bytes = 2097151
`

const cliTemplate = `schema = "protocols/763.proto"
namespace = "handshake"
format = "text"
max_depth = 32
max_list_len = 1024
max_frame_bytes = 2097151
`
