package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() dojoauth.MetricsSnapshot
	AuditDropped() uint64
}

// latencyGauges mirrors one store histogram as cumulative bucket gauges plus
// a sample count, since observable instruments cannot carry a histogram.
type latencyGauges struct {
	id      dojoauth.MetricID
	buckets []metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes store metrics as observable instruments on a meter.
type OTelExporter struct {
	source metricsSource

	counters     map[dojoauth.MetricID]metric.Int64ObservableCounter
	histograms   []latencyGauges
	auditDropped metric.Int64ObservableCounter

	instruments  []metric.Observable
	registration metric.Registration
}

// NewOTelExporter registers instruments reading from store.
func NewOTelExporter(meter metric.Meter, store *dojoauth.Store) (*OTelExporter, error) {
	if store == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, store)
}

// NewOTelExporterFromSource registers one instrument per store counter, the
// bucket gauges of each histogram and the audit drop counter, all fed by a
// single callback.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[dojoauth.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}
	if err := e.createCounters(meter); err != nil {
		return nil, err
	}
	if err := e.createHistograms(meter); err != nil {
		return nil, err
	}

	reg, err := meter.RegisterCallback(e.observe, e.instruments...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *OTelExporter) createCounters(meter metric.Meter) error {
	for _, def := range internaldefs.CounterDefs {
		c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = c
		e.instruments = append(e.instruments, c)
	}

	dropped, err := meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return fmt.Errorf("create observable counter %s: %w", internaldefs.AuditDroppedName, err)
	}
	e.auditDropped = dropped
	e.instruments = append(e.instruments, dropped)
	return nil
}

func (e *OTelExporter) createHistograms(meter metric.Meter) error {
	for _, def := range internaldefs.HistogramDefs {
		g := latencyGauges{id: def.ID}
		for _, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			b, err := meter.Int64ObservableGauge(name, metric.WithDescription(def.Help+" Cumulative bucket count."))
			if err != nil {
				return fmt.Errorf("create bucket gauge %s: %w", name, err)
			}
			g.buckets = append(g.buckets, b)
			e.instruments = append(e.instruments, b)
		}

		count, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription(def.Help+" Sample count."))
		if err != nil {
			return fmt.Errorf("create count gauge %s_count: %w", def.Name, err)
		}
		g.count = count
		e.instruments = append(e.instruments, count)
		e.histograms = append(e.histograms, g)
	}
	return nil
}

// observe takes one snapshot per collection so every instrument reports the
// same instant.
func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}
	for _, g := range e.histograms {
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[g.id]))
		for i, b := range g.buckets {
			o.ObserveInt64(b, int64(cum[i]))
		}
		o.ObserveInt64(g.count, int64(cum[len(cum)-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the callback. The instruments stay on the meter.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
