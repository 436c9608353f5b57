package dojoauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one store counter.
type MetricID uint16

const (
	MetricSessionRestored MetricID = iota
	MetricSessionAbsent
	MetricStorageCorrupt
	MetricStorageUnavailable
	MetricLoginSuccess
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricValidationRejected
	MetricLogout
	MetricInviteSent
	MetricInviteFailed
	MetricPersistFailure
	// MetricAuthLatency is the histogram of auth backend round trips.
	MetricAuthLatency
)

// latencyBounds are the inclusive upper edges of every bucket but the last.
var latencyBounds = [...]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

const histBucketCount = len(latencyBounds) + 1

// counterSlot keeps each counter on its own cache line so parallel Inc calls
// on different IDs do not contend.
type counterSlot struct {
	n atomic.Uint64
	_ [56]byte
}

type latencyHistogram [histBucketCount]atomic.Uint64

func (h *latencyHistogram) record(d time.Duration) {
	// Whole milliseconds, so 5.9ms still lands in the 5ms bucket.
	d = d.Truncate(time.Millisecond)
	i := 0
	for i < len(latencyBounds) && d > latencyBounds[i] {
		i++
	}
	h[i].Add(1)
}

func (h *latencyHistogram) load() []uint64 {
	out := make([]uint64, histBucketCount)
	for i := range h {
		out[i] = h[i].Load()
	}
	return out
}

// Metrics holds lock-free store counters and the auth latency histogram.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled bool
	latency bool

	counters [MetricAuthLatency]counterSlot
	authRTT  latencyHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter. Histogram
// buckets are non-cumulative with bounds 5,10,25,50,100,250,500ms,+Inf.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= MetricAuthLatency {
		return
	}
	m.counters[id].n.Add(1)
}

// Observe records d in the histogram for id. Only MetricAuthLatency has one.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id != MetricAuthLatency {
		return
	}
	m.authRTT.record(d)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricAuthLatency {
		return 0
	}
	return m.counters[id].n.Load()
}

// Snapshot copies the current values. A disabled Metrics yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return snap
	}
	for id := range m.counters {
		snap.Counters[MetricID(id)] = m.counters[id].n.Load()
	}
	if m.latency {
		snap.Histograms[MetricAuthLatency] = m.authRTT.load()
	}
	return snap
}
