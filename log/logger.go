package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"

	"github.com/JWebSmart/Nft-marketplace/config"
)

func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.GetLogFormat(), cfg.GetLogLevel())
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	var zerologLogger zerolog.Logger
	if format == "json" {
		zerologLogger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		zerologLogger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return slog.New(slogzerolog.Option{Level: level, Logger: &zerologLogger}.NewZerologHandler())
}
