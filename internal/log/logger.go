package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. service names the binary (api, worker,
// storectl) so interleaved logs stay attributable.
func New(environment, service string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Str("service", service).
		Logger()

	if environment != "production" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return logger
}

// NewCLI builds the quiet logger for the terminal client. Stdout belongs to
// command output; warnings and worse go to stderr.
func NewCLI() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(output).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}
