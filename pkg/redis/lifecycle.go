package redis

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds a health probe whose context carries no deadline.
const pingTimeout = 2 * time.Second

// Healthcheck returns a probe that pings client. The CLI status command
// uses it to report whether the session store is reachable.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, pingTimeout)
			defer cancel()
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a closer for client that gives up when ctx ends.
// Close keeps running in the background after a timeout.
//
// Example:
//
//	defer redis.Shutdown(client)(ctx)
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() { done <- client.Close() }()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return errors.Join(ErrShutdownTimeout, ctx.Err())
		}
	}
}
