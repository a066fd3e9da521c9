// Package logger provides structured logging with context extraction and Sentry integration.
//
// This package extends the standard library's log/slog with two key capabilities:
// automatic context-based attribute injection and optional Sentry error reporting.
// It is designed for production applications that need consistent, enriched logs
// with minimal boilerplate.
//
// # Overview
//
// The package provides:
//   - Context extractors that automatically inject operation-scoped values (provider kind, operation)
//   - A decorator pattern that wraps any slog.Handler to add extraction behavior
//   - Sentry integration for error tracking with graceful fallback when unconfigured
//   - Multi-handler support for routing logs to multiple destinations
//
// # Basic Usage
//
// Create a logger with context extractors:
//
//	log := logger.New(logger.DefaultExtractors()...)
//
//	// provider and operation are automatically included
//	ctx := logger.WithProvider(context.Background(), "googleLogin")
//	ctx = logger.WithOperation(ctx, "sign_in")
//	log.InfoContext(ctx, "signed in", slog.String("user_id", id))
//	// Output: {"level":"INFO","msg":"signed in","user_id":"...","provider":"googleLogin","operation":"sign_in"}
//
// # Sentry Integration
//
// For production error tracking, use NewWithSentry:
//
//	cfg := logger.SentryConfig{
//		Output:      os.Stderr,
//		DSN:         os.Getenv("SENTRY_DSN"),
//		Environment: "production",
//		Level:       slog.LevelInfo,
//		MinLevel:    slog.LevelWarn, // Send warnings and errors to Sentry
//	}
//
//	log := logger.NewWithSentry(cfg, logger.DefaultExtractors()...)
//	defer logger.Flush()
//
//	// Errors create Issues in Sentry, warnings are stored for context
//	log.WarnContext(ctx, "failed to clear session store", slog.Any("error", err))
//
// If SENTRY_DSN is empty, the logger gracefully falls back to local-only logging,
// making it safe to use the same code path in development and production.
//
// # Context Extractors
//
// A ContextExtractor is a function that extracts a log attribute from context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors are called on every log call, ensuring fresh values for operation-scoped data.
// Return false from the extractor to skip adding the attribute for that log entry.
//
// Built-in extractors:
//   - ProviderExtractor reads the kind stored by WithProvider
//   - OperationExtractor reads the name stored by WithOperation
//
// # Custom Handlers
//
// ContextHandler adds extractor output to any slog.Handler:
//
//	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	log := slog.New(logger.NewContextHandler(h, logger.DefaultExtractors()...))
//
// With a Sentry DSN, records go to the local handler and to Sentry. Without one,
// or when Sentry fails to initialize, only the local handler is used.
package logger
