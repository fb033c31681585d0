package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/mcdbg/internal/protocol/frame"
	"github.com/danmuck/mcdbg/internal/protocol/serde"
)

// cliConfig holds the values every subcommand starts from. Flags given
// on the command line win over the file.
type cliConfig struct {
	Schema      string
	Namespace   string
	Format      string
	Limits      serde.Limits
	FrameLimits frame.Limits
}

type fileConfig struct {
	Schema        string `toml:"schema"`
	Namespace     string `toml:"namespace"`
	Format        string `toml:"format"`
	MaxDepth      int    `toml:"max_depth"`
	MaxListLen    int    `toml:"max_list_len"`
	MaxFrameBytes int    `toml:"max_frame_bytes"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Format:      "text",
		Limits:      serde.DefaultLimits(),
		FrameLimits: frame.DefaultLimits(),
	}
}

func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load mcdbg config: %w", err)
	}

	if meta.IsDefined("schema") {
		cfg.Schema = strings.TrimSpace(raw.Schema)
	}
	if meta.IsDefined("namespace") {
		cfg.Namespace = strings.TrimSpace(raw.Namespace)
	}
	if meta.IsDefined("format") {
		f, err := parseFormat(raw.Format)
		if err != nil {
			return cliConfig{}, err
		}
		cfg.Format = f
	}
	if meta.IsDefined("max_depth") {
		if raw.MaxDepth <= 0 {
			return cliConfig{}, fmt.Errorf("max_depth must be positive, got %d", raw.MaxDepth)
		}
		cfg.Limits.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("max_list_len") {
		if raw.MaxListLen <= 0 {
			return cliConfig{}, fmt.Errorf("max_list_len must be positive, got %d", raw.MaxListLen)
		}
		cfg.Limits.MaxListLen = raw.MaxListLen
	}
	if meta.IsDefined("max_frame_bytes") {
		if raw.MaxFrameBytes <= 0 {
			return cliConfig{}, fmt.Errorf("max_frame_bytes must be positive, got %d", raw.MaxFrameBytes)
		}
		cfg.FrameLimits.MaxFrameBytes = raw.MaxFrameBytes
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cliConfig{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return cfg, nil
}

func parseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case "text", "json", "cbor":
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text|json|cbor)", raw)
	}
}
