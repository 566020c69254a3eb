// Package metrics exports marker binding activity as Prometheus metrics.
package metrics

import (
	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/go-drift/drift-maps/pkg/marker"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "drift_maps"

// Collector implements marker.Observer on top of Prometheus metrics.
// One Collector may be shared by any number of bindings.
type Collector struct {
	created   prometheus.Counter
	disposed  prometheus.Counter
	live      prometheus.Gauge
	props     *prometheus.CounterVec
	listeners *prometheus.GaugeVec
	events    *prometheus.CounterVec
}

var _ marker.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "annotations",
			Name:      "created_total",
			Help:      "Total number of annotations created by marker bindings",
		}),
		disposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "annotations",
			Name:      "disposed_total",
			Help:      "Total number of annotations removed and released by marker bindings",
		}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "annotations",
			Name:      "live",
			Help:      "Annotations currently owned by marker bindings",
		}),
		props: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "properties",
			Name:      "applied_total",
			Help:      "Total number of property assignments on annotations",
		}, []string{"property"}),
		listeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "listeners",
			Name:      "installed",
			Help:      "Event listeners currently installed on annotations",
		}, []string{"event"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listeners",
			Name:      "changes_total",
			Help:      "Total number of listener installations and removals",
		}, []string{"event", "change"}),
	}
	if reg != nil {
		reg.MustRegister(c.created, c.disposed, c.live, c.props, c.listeners, c.events)
	}
	return c
}

// AnnotationCreated implements marker.Observer.
func (c *Collector) AnnotationCreated() {
	c.created.Inc()
	c.live.Inc()
}

// AnnotationDisposed implements marker.Observer.
func (c *Collector) AnnotationDisposed() {
	c.disposed.Inc()
	c.live.Dec()
}

// PropertyApplied implements marker.Observer.
func (c *Collector) PropertyApplied(p mapkit.Property) {
	c.props.WithLabelValues(string(p)).Inc()
}

// ListenerAdded implements marker.Observer.
func (c *Collector) ListenerAdded(e mapkit.EventType) {
	c.listeners.WithLabelValues(string(e)).Inc()
	c.events.WithLabelValues(string(e), "added").Inc()
}

// ListenerRemoved implements marker.Observer.
func (c *Collector) ListenerRemoved(e mapkit.EventType) {
	c.listeners.WithLabelValues(string(e)).Dec()
	c.events.WithLabelValues(string(e), "removed").Inc()
}
