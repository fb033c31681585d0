package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// InspectorConfig is the mcdbgd service file.
type InspectorConfig struct {
	Name         string       `toml:"name"`
	Addr         string       `toml:"addr"`
	SchemaPath   string       `toml:"schema_path"`
	CorsOrigins  []string     `toml:"cors_origins"`
	MaxBodyBytes int64        `toml:"max_body_bytes"`
	Decode       DecodeConfig `toml:"decode"`
}

// DecodeConfig overrides decoder and framing limits; zero keeps the
// built-in default.
type DecodeConfig struct {
	MaxDepth      int `toml:"max_depth"`
	MaxListLen    int `toml:"max_list_len"`
	MaxFrameBytes int `toml:"max_frame_bytes"`
}

const (
	DefaultInspectorName = "mcdbgd"
	DefaultInspectorAddr = ":9300"
	DefaultMaxBodyBytes  = 4 << 20
)

func LoadInspectorConfig(path string) (InspectorConfig, error) {
	var cfg InspectorConfig
	if err := loadToml(path, &cfg); err != nil {
		return InspectorConfig{}, err
	}
	applyInspectorDefaults(&cfg)
	if err := ValidateInspectorConfig(cfg); err != nil {
		return InspectorConfig{}, err
	}
	return cfg, nil
}

func applyInspectorDefaults(cfg *InspectorConfig) {
	if cfg.Name == "" {
		cfg.Name = DefaultInspectorName
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultInspectorAddr
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateInspectorConfig(cfg InspectorConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("inspector config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("inspector config missing addr")
	}
	if strings.TrimSpace(cfg.SchemaPath) == "" {
		return fmt.Errorf("inspector config missing schema_path")
	}
	if cfg.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}
	if err := ValidateDecodeConfig(cfg.Decode); err != nil {
		return fmt.Errorf("decode invalid: %w", err)
	}
	return nil
}

func ValidateDecodeConfig(cfg DecodeConfig) error {
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	if cfg.MaxListLen < 0 {
		return fmt.Errorf("max_list_len must not be negative")
	}
	if cfg.MaxFrameBytes < 0 {
		return fmt.Errorf("max_frame_bytes must not be negative")
	}
	return nil
}
