package internaldefs

import (
	"github.com/MrEthical07/dojoauth"
)

// CounterDef names one store counter for exporters.
type CounterDef struct {
	ID   dojoauth.MetricID
	Name string
	Help string
}

// HistogramDef names one store histogram for exporters.
type HistogramDef struct {
	ID   dojoauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: dojoauth.MetricSessionRestored, Name: "dojoauth_session_restored_total", Help: "Sessions restored from durable storage at startup."},
	{ID: dojoauth.MetricSessionAbsent, Name: "dojoauth_session_absent_total", Help: "Startups with no stored session."},
	{ID: dojoauth.MetricStorageCorrupt, Name: "dojoauth_storage_corrupt_total", Help: "Stored session records discarded as corrupt."},
	{ID: dojoauth.MetricStorageUnavailable, Name: "dojoauth_storage_unavailable_total", Help: "Startups where session storage could not be read."},
	{ID: dojoauth.MetricLoginSuccess, Name: "dojoauth_login_success_total", Help: "Successful logins."},
	{ID: dojoauth.MetricLoginFailure, Name: "dojoauth_login_failure_total", Help: "Failed logins."},
	{ID: dojoauth.MetricRegisterSuccess, Name: "dojoauth_register_success_total", Help: "Successful registrations."},
	{ID: dojoauth.MetricRegisterFailure, Name: "dojoauth_register_failure_total", Help: "Registrations rejected by the auth backend."},
	{ID: dojoauth.MetricValidationRejected, Name: "dojoauth_validation_rejected_total", Help: "Registrations rejected by local input validation."},
	{ID: dojoauth.MetricLogout, Name: "dojoauth_logout_total", Help: "Logouts that cleared a session."},
	{ID: dojoauth.MetricInviteSent, Name: "dojoauth_invite_sent_total", Help: "Invitations accepted by the auth backend."},
	{ID: dojoauth.MetricInviteFailed, Name: "dojoauth_invite_failed_total", Help: "Invitations that could not be dispatched."},
	{ID: dojoauth.MetricPersistFailure, Name: "dojoauth_persist_failure_total", Help: "Issued sessions that could not be written to storage."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: dojoauth.MetricAuthLatency, Name: "dojoauth_auth_latency_seconds", Help: "Auth backend round-trip latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const (
	AuditDroppedName = "dojoauth_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the upper bounds, in seconds, of the store's latency
// buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds as instrument-name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
