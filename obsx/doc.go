// Package obsx provides Prometheus metrics for the settings framework.
//
// # Overview
//
// obsx owns a small set of counters describing settings registration and
// slot activity, and exposes them with promhttp for scraping. Metrics
// satisfies optionsx.Observer so a collection can report slot validations and
// reloads directly.
//
// # Features
//
//   - types_registered_total{mode}
//   - registration_failures_total{kind}
//   - slot_validations_total{type,outcome}
//   - slot_reloads_total{type}
//   - Optional Go runtime and process collectors
//
// # Layer
//
// obsx depends on prometheus/client_golang only.
package obsx
