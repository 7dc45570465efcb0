// Package metrics records Prometheus metrics for locate runs.
//
// uelocate is a batch tool, so metrics are not scraped over HTTP; they are
// written once per run in the text exposition format for the node exporter
// textfile collector.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccollicutt/uelocate/pkg/locator"
	"github.com/ccollicutt/uelocate/pkg/source"
)

const namespace = "uelocate"

// Lookup outcomes.
const (
	OutcomeFound       = "found"
	OutcomeEmpty       = "empty"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	lookupsTotal     *prometheus.CounterVec
	lookupDuration   *prometheus.HistogramVec
	eventsTotal      *prometheus.CounterVec
	connectionsTotal prometheus.Counter
	subscribersTotal prometheus.Counter
	logBytes         prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// New creates metrics on a private registry.
func New() (*Metrics, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates metrics and registers them with registry.
func NewWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Locate operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time spent fetching logs and resolving a lookup.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_events_total",
			Help:      "Classified movement events by event type.",
		}, []string{"event_type"}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Deduplicated gNB connections reported.",
		}),
		subscribersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscribers_total",
			Help:      "Subscribers with a location or movement in the result.",
		}),
		logBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_bytes",
			Help:      "Size of the last log snapshot read.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	collectors := []prometheus.Collector{
		m.lookupsTotal,
		m.lookupDuration,
		m.eventsTotal,
		m.connectionsTotal,
		m.subscribersTotal,
		m.logBytes,
		m.lastRunTimestamp,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome classifies the result of a lookup.
func Outcome(res *locator.Result, err error) string {
	switch {
	case errors.Is(err, locator.ErrInvalidIdentifier):
		return OutcomeInvalid
	case errors.Is(err, source.ErrUnavailable), errors.Is(err, locator.ErrSourceUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, locator.ErrNotFound):
		return OutcomeNotFound
	case err != nil:
		return OutcomeError
	case res == nil || !res.Found():
		return OutcomeEmpty
	default:
		return OutcomeFound
	}
}

// RecordLookup records one lookup and, on success, what it found.
func (m *Metrics) RecordLookup(operation string, res *locator.Result, err error, d time.Duration) {
	m.lookupsTotal.WithLabelValues(operation, Outcome(res, err)).Inc()
	m.lookupDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.lastRunTimestamp.SetToCurrentTime()

	if err != nil || res == nil {
		return
	}

	subscribers := make(map[string]struct{})
	for _, loc := range res.Locations {
		subscribers[loc.UEIdentity.IMSI] = struct{}{}
	}
	for _, h := range res.Movements {
		for _, e := range h.Events {
			m.eventsTotal.WithLabelValues(string(e.EventType)).Inc()
		}
		m.connectionsTotal.Add(float64(len(h.Connections)))
		if !h.Empty() {
			subscribers[h.IMSI] = struct{}{}
		}
	}
	m.subscribersTotal.Add(float64(len(subscribers)))
}

// RecordLogSize records the size of the log snapshot.
func (m *Metrics) RecordLogSize(n int) {
	m.logBytes.Set(float64(n))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
