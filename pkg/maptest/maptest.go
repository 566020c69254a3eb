// Package maptest provides an in-memory map and annotation implementation
// that records every call, for tests and scenario replays.
//
//	rec := maptest.NewRecorder()
//	m := rec.NewMap("m1")
//	b := marker.New(rec.Factory())
//	b.Update(m, marker.Marker{Latitude: 1, Longitude: 2})
//	rec.Trace() // ["create a1 (1, 2)", "add m1 a1", "set a1 title=\"\"", ...]
//
// Misuse of the collaborator contract (adding an annotation twice, touching
// a disposed annotation, installing the same listener twice) is recorded as a
// violation instead of panicking, so tests can assert there were none.
package maptest

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/go-drift/drift-maps/pkg/mapkit"
)

// Recorder collects the calls made on every map and annotation it created.
type Recorder struct {
	trace       []string
	violations  []string
	annotations []*Annotation
	maps        []*Map
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(format string, args ...any) {
	r.trace = append(r.trace, fmt.Sprintf(format, args...))
}

func (r *Recorder) violate(format string, args ...any) {
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
}

// Trace returns the recorded calls in order.
func (r *Recorder) Trace() []string {
	return slices.Clone(r.trace)
}

// Reset clears the trace. Violations are kept.
func (r *Recorder) Reset() {
	r.trace = r.trace[:0]
}

// Record appends a free-form line, e.g. a handler invocation, to the trace.
func (r *Recorder) Record(line string) {
	r.trace = append(r.trace, line)
}

// Violations returns contract violations observed so far.
func (r *Recorder) Violations() []string {
	return slices.Clone(r.violations)
}

// Annotations returns every annotation created so far, live or not.
func (r *Recorder) Annotations() []*Annotation {
	return slices.Clone(r.annotations)
}

// Live returns the annotations that have not been disposed.
func (r *Recorder) Live() []*Annotation {
	var live []*Annotation
	for _, a := range r.annotations {
		if !a.disposed {
			live = append(live, a)
		}
	}
	return live
}

// Factory returns an annotation factory bound to r.
func (r *Recorder) Factory() mapkit.AnnotationFactory {
	return func(c mapkit.Coordinate) mapkit.Annotation {
		return r.NewAnnotation(c)
	}
}

// NewAnnotation creates an annotation at c.
func (r *Recorder) NewAnnotation(c mapkit.Coordinate) *Annotation {
	a := &Annotation{
		id:         "a" + strconv.Itoa(len(r.annotations)+1),
		rec:        r,
		coordinate: c,
		props:      make(map[mapkit.Property]any),
		listeners:  make(map[mapkit.EventType][]*mapkit.Listener),
	}
	r.annotations = append(r.annotations, a)
	r.record("create %s %s", a.id, c)
	return a
}

// NewMap creates an empty map named name.
func (r *Recorder) NewMap(name string) *Map {
	m := &Map{name: name, rec: r}
	r.maps = append(r.maps, m)
	return m
}

// Map is an in-memory mapkit.Map.
type Map struct {
	name    string
	rec     *Recorder
	members []*Annotation
}

var _ mapkit.Map = (*Map)(nil)

// Name returns the map's name.
func (m *Map) Name() string { return m.name }

// AddAnnotation implements mapkit.Map.
func (m *Map) AddAnnotation(a mapkit.Annotation) {
	ann, ok := a.(*Annotation)
	if !ok {
		m.rec.violate("add %s: foreign annotation %T", m.name, a)
		return
	}
	if ann.disposed {
		m.rec.violate("add %s %s: annotation disposed", m.name, ann.id)
	}
	if slices.Contains(m.members, ann) {
		m.rec.violate("add %s %s: already a member", m.name, ann.id)
		return
	}
	for _, other := range m.rec.maps {
		if other != m && slices.Contains(other.members, ann) {
			m.rec.violate("add %s %s: member of %s", m.name, ann.id, other.name)
		}
	}
	m.members = append(m.members, ann)
	m.rec.record("add %s %s", m.name, ann.id)
}

// RemoveAnnotation implements mapkit.Map.
func (m *Map) RemoveAnnotation(a mapkit.Annotation) {
	ann, ok := a.(*Annotation)
	if !ok {
		return
	}
	i := slices.Index(m.members, ann)
	if i < 0 {
		return
	}
	m.members = slices.Delete(m.members, i, i+1)
	m.rec.record("remove %s %s", m.name, ann.id)
}

// Members returns the annotations currently on the map.
func (m *Map) Members() []*Annotation {
	return slices.Clone(m.members)
}

// Contains reports whether a is on the map.
func (m *Map) Contains(a mapkit.Annotation) bool {
	ann, ok := a.(*Annotation)
	return ok && slices.Contains(m.members, ann)
}
