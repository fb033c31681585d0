package main

import (
	"flag"
	"os"

	"github.com/danmuck/mcdbg/internal/config"
	"github.com/danmuck/mcdbg/internal/inspector"
	"github.com/danmuck/mcdbg/internal/observability"
	"github.com/danmuck/mcdbg/internal/protocol/registry"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "cmd/mcdbgd/config.toml", "inspector config path")
	flag.Parse()

	observability.InitLogger("mcdbgd")
	cfg, err := config.LoadInspectorConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load inspector config")
	}
	log.Info().Str("path", *configPath).Msg("loaded inspector config")

	raw, err := os.ReadFile(cfg.SchemaPath)
	if err != nil {
		log.Fatal().Err(err).Str("schema", cfg.SchemaPath).Msg("failed to read schema")
	}
	version, err := registry.Load(string(raw), registry.WithLimits(config.DecodeLimits(cfg.Decode)))
	if err != nil {
		log.Fatal().Err(err).Str("schema", cfg.SchemaPath).Msg("failed to load schema")
	}

	server := inspector.New(config.InspectorService(cfg), version)
	log.Info().
		Str("name", cfg.Name).
		Str("addr", cfg.Addr).
		Int64("protocol", version.Protocol).
		Int("namespaces", len(version.Namespaces())).
		Msg("inspector started")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("inspector stopped")
	}
}
