package config

import (
	"github.com/danmuck/mcdbg/internal/inspector"
	"github.com/danmuck/mcdbg/internal/protocol/frame"
	"github.com/danmuck/mcdbg/internal/protocol/serde"
)

// DecodeLimits maps the [decode] table onto decoder limits.
func DecodeLimits(cfg DecodeConfig) serde.Limits {
	l := serde.DefaultLimits()
	if cfg.MaxDepth > 0 {
		l.MaxDepth = cfg.MaxDepth
	}
	if cfg.MaxListLen > 0 {
		l.MaxListLen = cfg.MaxListLen
	}
	return l
}

// FrameLimits maps the [decode] table onto framing limits.
func FrameLimits(cfg DecodeConfig) frame.Limits {
	l := frame.DefaultLimits()
	if cfg.MaxFrameBytes > 0 {
		l.MaxFrameBytes = cfg.MaxFrameBytes
	}
	return l
}

func InspectorService(cfg InspectorConfig) inspector.ServiceConfig {
	return inspector.ServiceConfig{
		Name:         cfg.Name,
		Addr:         cfg.Addr,
		CorsOrigins:  cfg.CorsOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		FrameLimits:  FrameLimits(cfg.Decode),
	}
}
