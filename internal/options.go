package internal

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/socialauth/pkg/notify"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithProvider registers p under kind before the persisted session is resolved.
// Providers are set up in registration order.
func WithProvider(kind provider.Kind, p provider.Provider) Option {
	return func(c *Coordinator) {
		c.err = errors.Join(c.err, c.register(kind, p, nil))
	}
}

// WithSignUpProvider registers a sign-up capable provider under kind.
// It is reachable from both SignIn and SignUp.
func WithSignUpProvider(kind provider.Kind, p provider.SignUpProvider) Option {
	return func(c *Coordinator) {
		c.err = errors.Join(c.err, c.register(kind, p, p))
	}
}

// WithLogger sets the logger for state transitions and degraded paths.
// Default: a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers the coordinator's Prometheus collectors on reg.
// Metrics are disabled when not set.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Coordinator) {
		c.registerer = reg
	}
}

// WithHub sets the revocation channel returned by Revocations.
// Default: notify.Default().
func WithHub(h *notify.Hub) Option {
	return func(c *Coordinator) {
		if h != nil {
			c.hub = h
		}
	}
}

// WithCollectSetupErrors makes Setup run every provider and return all
// failures joined, instead of stopping at the first one.
func WithCollectSetupErrors() Option {
	return func(c *Coordinator) {
		c.collectSetupErrors = true
	}
}

// WithInvalidateOnRevocation subscribes the coordinator to
// notify.CredentialRevoked and calls InvalidateOnExternalError when it fires.
// Call Close to unsubscribe.
func WithInvalidateOnRevocation() Option {
	return func(c *Coordinator) {
		c.invalidateOnRevocation = true
	}
}
