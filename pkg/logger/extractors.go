package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	providerKey ctxKey = iota
	operationKey
)

// WithProvider stores the provider kind identifier in ctx for ProviderExtractor.
func WithProvider(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, providerKey, kind)
}

// WithOperation stores the coordinator operation name in ctx for OperationExtractor.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// ProviderExtractor adds a "provider" attribute when ctx carries one.
func ProviderExtractor() ContextExtractor {
	return stringExtractor(providerKey, "provider")
}

// OperationExtractor adds an "operation" attribute when ctx carries one.
func OperationExtractor() ContextExtractor {
	return stringExtractor(operationKey, "operation")
}

// DefaultExtractors returns the extractors used by the coordinator's loggers.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{ProviderExtractor(), OperationExtractor()}
}

func stringExtractor(key ctxKey, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(key).(string)
		if !ok || v == "" {
			return slog.Attr{}, false
		}
		return slog.String(attr, v), true
	}
}
