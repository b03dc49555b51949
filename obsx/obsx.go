// Package obsx provides Prometheus metrics for settings registration and slots.
//
// Overview:
//   - Responsibility: Count registered settings types, registration failures,
//     slot validations and reloads; expose them for Prometheus scraping
//   - Key Types: Options for configuration, Metrics for recording
//   - Concurrency Model: Metrics is safe for concurrent use
//   - Error Semantics: NewMetrics returns error when collectors cannot be registered
//   - Performance Notes: Counters only; label cardinality is bounded by settings types
//
// Usage:
//
//	metrics, err := obsx.NewMetrics(obsx.Options{Namespace: "app", EnableRuntime: true})
//	if err != nil { return err }
//	collection := optionsx.NewCollection(optionsx.WithObserver(metrics))
//	http.Handle("/metrics", metrics.Handler())
package obsx

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options holds configuration for the metrics.
type Options struct {
	Namespace     string               // Metric name prefix (default: "settingsx")
	Registry      *prometheus.Registry // Registry to use; nil creates a private one
	EnableRuntime bool                 // Also register Go runtime and process collectors
}

// Metrics records settings registration and slot activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry             *prometheus.Registry
	typesRegistered      *prometheus.CounterVec
	registrationFailures *prometheus.CounterVec
	slotValidations      *prometheus.CounterVec
	slotReloads          *prometheus.CounterVec
}

// NewMetrics creates and registers the settings collectors.
func NewMetrics(opts Options) (*Metrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "settingsx"
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		typesRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "types_registered_total",
			Help:      "Settings types registered, by validation mode.",
		}, []string{"mode"}),
		registrationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_failures_total",
			Help:      "Settings registrations aborted, by error kind.",
		}, []string{"kind"}),
		slotValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_validations_total",
			Help:      "Settings slot validations, by type and outcome.",
		}, []string{"type", "outcome"}),
		slotReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_reloads_total",
			Help:      "Settings slot reloads after configuration updates, by type.",
		}, []string{"type"}),
	}

	cs := []prometheus.Collector{m.typesRegistered, m.registrationFailures, m.slotValidations, m.slotReloads}
	if opts.EnableRuntime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TypeRegistered counts one registered settings type.
func (m *Metrics) TypeRegistered(mode string) {
	if m == nil {
		return
	}
	m.typesRegistered.WithLabelValues(mode).Inc()
}

// RegistrationFailed counts one aborted registration.
func (m *Metrics) RegistrationFailed(kind string) {
	if m == nil {
		return
	}
	m.registrationFailures.WithLabelValues(kind).Inc()
}

// SlotValidated counts one slot validation.
func (m *Metrics) SlotValidated(settingsType string, valid bool) {
	if m == nil {
		return
	}
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	m.slotValidations.WithLabelValues(settingsType, outcome).Inc()
}

// SlotReloaded counts one slot reload.
func (m *Metrics) SlotReloaded(settingsType string) {
	if m == nil {
		return
	}
	m.slotReloads.WithLabelValues(settingsType).Inc()
}
