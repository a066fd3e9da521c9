package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

const flushTimeout = 2 * time.Second

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	// Output receives the local JSON log stream. Default: os.Stdout.
	Output      io.Writer
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`
	// Level is the minimum level written to Output.
	Level slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	// MinLevel determines which log levels to send to Sentry (e.g., slog.LevelWarn for warnings+errors)
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

// NewWithSentry creates a logger that writes JSON to cfg.Output and sends
// warnings and errors to Sentry.
// If DSN is empty, only local logging is enabled.
// Context extractors are applied to logs sent to both destinations.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	localHandler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.Level,
	})

	if cfg.DSN == "" {
		return slog.New(NewContextHandler(localHandler, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(localHandler).Error("logger: sentry init failed, logging locally only", slog.Any("error", err))
		return slog.New(NewContextHandler(localHandler, extractors...))
	}

	// Errors create issues; warnings are kept as searchable logs.
	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	// Extractors wrap the tee so both destinations see the same attributes.
	return slog.New(NewContextHandler(teeHandler{localHandler, sentryHandler}, extractors...))
}

// Flush waits up to the default timeout for buffered Sentry events.
// It is a no-op when Sentry was not initialized.
func Flush() {
	sentry.Flush(flushTimeout)
}
