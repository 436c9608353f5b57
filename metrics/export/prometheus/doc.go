// Package prometheus renders store metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps a [dojoauth.Store] and exposes an
// [http.Handler]. Counters are named dojoauth_*_total; the single histogram is
// dojoauth_auth_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global registry. Callers mount the Handler.
//   - Mutate store state.
package prometheus
