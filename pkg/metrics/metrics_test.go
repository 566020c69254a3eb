package metrics

import (
	"strings"
	"testing"

	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/go-drift/drift-maps/pkg/maptest"
	"github.com/go-drift/drift-maps/pkg/marker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorTracksBindingLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	rec := maptest.NewRecorder()
	m := rec.NewMap("m1")
	b := marker.New(rec.Factory(), marker.WithObserver(c))

	spec := marker.Marker{Latitude: 1, Longitude: 2, OnSelect: func() {}, OnDragEnd: func(mapkit.Coordinate) {}}
	b.Update(m, spec)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.live))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.listeners.WithLabelValues("select")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.props.WithLabelValues("title")))

	spec.Title = "moved"
	spec.Latitude = 3
	b.Update(m, spec)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.disposed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.live))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.props.WithLabelValues("title")))

	b.Dispose()
	assert.Equal(t, 0.0, testutil.ToFloat64(c.live))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.listeners.WithLabelValues("drag-end")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("drag-end", "removed")))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.AnnotationCreated()

	expected := `
# HELP drift_maps_annotations_created_total Total number of annotations created by marker bindings
# TYPE drift_maps_annotations_created_total counter
drift_maps_annotations_created_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "drift_maps_annotations_created_total"))
}

func TestCollectorWithoutRegistry(t *testing.T) {
	c := NewCollector(nil)
	c.ListenerAdded(mapkit.EventSelect)
	c.ListenerRemoved(mapkit.EventSelect)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.listeners.WithLabelValues("select")))
}
