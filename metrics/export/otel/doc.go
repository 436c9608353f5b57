// Package otel binds store metrics to an OpenTelemetry meter.
//
// [NewOTelExporter] registers an Int64ObservableCounter per store counter and
// an Int64ObservableGauge per histogram bucket. One callback reads
// [dojoauth.Store.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate store state.
package otel
