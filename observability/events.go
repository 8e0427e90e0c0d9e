package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"veledger/core/events"
)

type eventMetrics struct {
	emitted *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking structured ledger events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "veledger",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Count of emitted ledger events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.emitted)
	})
	return eventRegistry
}

// RecordEvent increments the counter for the supplied event type.
func (m *eventMetrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	label := strings.TrimSpace(eventType)
	if label == "" {
		label = "unknown"
	}
	m.emitted.WithLabelValues(label).Inc()
}

// EventEmitter adapts the event metrics registry to the events.Emitter
// interface so the processor can feed its committed events straight into
// Prometheus. An optional next emitter receives every event afterwards.
type EventEmitter struct {
	Next events.Emitter
}

// Emit implements events.Emitter.
func (e EventEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	Events().RecordEvent(evt.EventType())
	if e.Next != nil {
		e.Next.Emit(evt)
	}
}
