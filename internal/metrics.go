package internal

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

const metricsNamespace = "socialauth"

const (
	resultSuccess     = "success"
	resultFailure     = "failure"
	resultBusy        = "busy"
	resultUnavailable = "unavailable"
)

type metrics struct {
	operations *prometheus.CounterVec
	active     *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	operations, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "operations_total",
		Help:      "Coordinator operations by provider and result.",
	}, []string{"operation", "provider", "result"}))
	if err != nil {
		return nil, err
	}

	active, err := registerCollector(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "active_session",
		Help:      "1 for the provider holding the active session.",
	}, []string{"provider"}))
	if err != nil {
		return nil, err
	}

	return &metrics{operations: operations, active: active}, nil
}

// registerCollector reuses an identical collector that is already registered,
// so several coordinators can share one registry.
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, errors.Join(ErrMetrics, err)
	}
	return c, nil
}

func (m *metrics) observe(op string, kind provider.Kind, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, kindLabel(kind), result).Inc()
}

func (m *metrics) setActive(kind provider.Kind) {
	if m == nil {
		return
	}
	m.active.Reset()
	if !kind.IsZero() {
		m.active.WithLabelValues(kind.String()).Set(1)
	}
}

func kindLabel(kind provider.Kind) string {
	if kind.IsZero() {
		return provider.KindNone.String()
	}
	return kind.String()
}
