// Package metrics provides observability hooks for site builds.
//
// It follows the Null Object pattern: components receive a Recorder through
// dependency injection and default to NoopRecorder, so collection can be
// enabled by swapping in a real implementation without touching call sites.
// The CLI build path runs with NoopRecorder; the preview server registers
// PrometheusRecorder and serves the registry on /metrics.
package metrics
