package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures a charm logger writing to w
func SetupLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "potgame",
	})
}

// SetupFileLogger logs to filename so full screen views keep the terminal
// clean. The returned func closes the file.
func SetupFileLogger(filename string, level log.Level) (*log.Logger, func(), error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := SetupLogger(f, level)
	return logger, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}, nil
}

// SetupServerLogger configures zerolog for request logs. JSON output is
// meant for log collectors, otherwise output is pretty printed.
func SetupServerLogger(level string, structured bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if structured {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		out = os.Stderr
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
