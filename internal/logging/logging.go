package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/borgwatch/internal/config"
)

// NewLogger creates the service's structured zerolog.Logger.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "borgwatch").
		Logger()

	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
