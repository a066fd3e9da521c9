// Package redis provides Redis client utilities used by the Redis-backed session store.
//
// This package wraps [github.com/redis/go-redis/v9] to provide connection pooling,
// health checks, and graceful shutdown with sensible defaults.
//
// # Features
//
//   - Connection pooling with configurable limits and timeouts
//   - Retry with linear backoff while connecting
//   - Health check function compatible with standard health check interfaces
//   - Support for redis:// and rediss:// (TLS) URL schemes
//   - Shutdown closure for deferred cleanup
//
// # Configuration
//
// All settings are configured via functional options:
//
//   - WithPoolSize(n int): maximum number of connections (default: 2)
//   - WithMinIdleConns(n int): minimum idle connections (default: 0)
//   - WithRetry(attempts int, interval time.Duration): retry attempts and base interval (default: 3 attempts, 1s)
//   - WithTimeout(d time.Duration): read and write timeout (default: 3s)
//   - WithDialTimeout(d time.Duration): connection dial timeout (default: 5s)
//   - WithClientName(name string): CLIENT SETNAME value (default: "socialauth")
//   - WithLogger(l *slog.Logger): reports failed connection attempts
//
// # Usage
//
// Basic connection setup with functional options:
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/dmitrymomot/socialauth/pkg/redis"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//			redis.WithRetry(5, time.Second),
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer client.Close()
//	}
//
// # Health Checks
//
// The [Healthcheck] function returns a closure suitable for health check endpoints:
//
//	import (
//		"net/http"
//
//		goredis "github.com/redis/go-redis/v9"
//		"github.com/dmitrymomot/socialauth/pkg/redis"
//	)
//
//	func healthHandler(client goredis.UniversalClient) http.HandlerFunc {
//		healthFn := redis.Healthcheck(client)
//		return func(w http.ResponseWriter, r *http.Request) {
//			if err := healthFn(r.Context()); err != nil {
//				w.WriteHeader(http.StatusServiceUnavailable)
//				return
//			}
//			w.WriteHeader(http.StatusOK)
//		}
//	}
//
// # Session Store
//
// The client plugs into the Redis session store:
//
//	client, err := redis.Open(ctx, redisURL)
//	if err != nil {
//		return err
//	}
//	defer redis.Shutdown(client)(ctx)
//
//	store := session.NewRedisStore(client, session.WithKeyPrefix("myapp"))
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//
//   - [ErrEmptyConnectionURL] - Empty connection URL provided
//   - [ErrFailedToParseURL] - Invalid connection URL format or scheme
//   - [ErrConnectionFailed] - Connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - Redis ping failed
//   - [ErrShutdownTimeout] - Close did not finish before the context ended
//
// Errors are wrapped using [errors.Join] to preserve the original error context.
package redis
