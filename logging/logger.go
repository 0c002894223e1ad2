package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ariebrainware/book-my-advocate/config"
	"github.com/rs/zerolog"
)

// New constructs a zerolog logger from the LOG_* settings.
// Output is "stdout", "stderr" or a file path; the returned closer is
// non-nil only for files.
func New(cfg *config.Config) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	output := io.Writer(os.Stdout)
	var closer io.Closer

	switch out := strings.TrimSpace(cfg.LogOutput); strings.ToLower(out) {
	case "", "stdout":
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		output = file
		closer = file
	}

	if strings.EqualFold(strings.TrimSpace(cfg.LogFormat), "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", cfg.AppName).
		Str("env", cfg.AppEnv).
		Logger()

	return base, closer, nil
}
