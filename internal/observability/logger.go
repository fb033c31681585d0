package observability

import (
	"github.com/danmuck/mcdbg/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the runtime logging profile and tags every
// event with the application name.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
