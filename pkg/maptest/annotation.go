package maptest

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/go-drift/drift-maps/pkg/mapkit"
)

// Annotation is an in-memory mapkit.Annotation.
type Annotation struct {
	id         string
	rec        *Recorder
	coordinate mapkit.Coordinate
	props      map[mapkit.Property]any
	sets       map[mapkit.Property]int
	listeners  map[mapkit.EventType][]*mapkit.Listener
	disposed   bool
}

var _ mapkit.Annotation = (*Annotation)(nil)

// ID returns the annotation's recorder-assigned id ("a1", "a2", ...).
func (a *Annotation) ID() string { return a.id }

// Coordinate implements mapkit.Annotation.
func (a *Annotation) Coordinate() mapkit.Coordinate { return a.coordinate }

// Set implements mapkit.Annotation.
func (a *Annotation) Set(p mapkit.Property, value any) {
	if a.disposed {
		a.rec.violate("set %s %s: annotation disposed", a.id, p)
		return
	}
	a.props[p] = value
	if a.sets == nil {
		a.sets = make(map[mapkit.Property]int)
	}
	a.sets[p]++
	a.rec.record("set %s %s=%s", a.id, p, FormatValue(value))
}

// AddEventListener implements mapkit.Annotation.
func (a *Annotation) AddEventListener(event mapkit.EventType, l *mapkit.Listener) {
	if a.disposed {
		a.rec.violate("listen %s %s: annotation disposed", a.id, event)
		return
	}
	if slices.Contains(a.listeners[event], l) {
		a.rec.violate("listen %s %s: listener already installed", a.id, event)
		return
	}
	a.listeners[event] = append(a.listeners[event], l)
	a.rec.record("listen %s %s", a.id, event)
}

// RemoveEventListener implements mapkit.Annotation.
func (a *Annotation) RemoveEventListener(event mapkit.EventType, l *mapkit.Listener) {
	ls := a.listeners[event]
	i := slices.Index(ls, l)
	if i < 0 {
		return
	}
	a.listeners[event] = slices.Delete(ls, i, i+1)
	a.rec.record("unlisten %s %s", a.id, event)
}

// Dispose implements mapkit.Annotation.
func (a *Annotation) Dispose() {
	if a.disposed {
		a.rec.violate("dispose %s: already disposed", a.id)
		return
	}
	for _, m := range a.rec.maps {
		if m.Contains(a) {
			a.rec.violate("dispose %s: still on %s", a.id, m.name)
		}
	}
	for event, ls := range a.listeners {
		if len(ls) > 0 {
			a.rec.violate("dispose %s: %d %s listener(s) left", a.id, len(ls), event)
		}
	}
	a.disposed = true
	a.rec.record("dispose %s", a.id)
}

// Disposed reports whether Dispose was called.
func (a *Annotation) Disposed() bool { return a.disposed }

// Get returns the last value assigned to p and whether p was ever assigned.
func (a *Annotation) Get(p mapkit.Property) (any, bool) {
	v, ok := a.props[p]
	return v, ok
}

// SetCount returns how many times p was assigned.
func (a *Annotation) SetCount(p mapkit.Property) int {
	return a.sets[p]
}

// ListenerCount returns the number of listeners installed for event.
func (a *Annotation) ListenerCount(event mapkit.EventType) int {
	return len(a.listeners[event])
}

// MoveTo changes the annotation's coordinate, as a user drag would.
func (a *Annotation) MoveTo(c mapkit.Coordinate) {
	a.coordinate = c
	a.rec.record("move %s %s", a.id, c)
}

// Fire delivers event to the installed listeners, as the map would.
func (a *Annotation) Fire(event mapkit.EventType) {
	a.rec.record("fire %s %s", a.id, event)
	for _, l := range slices.Clone(a.listeners[event]) {
		l.Invoke(mapkit.Event{Type: event, Annotation: a})
	}
}

// FormatValue renders a property value the way it appears in traces.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case mapkit.FeatureVisibility:
		return string(v)
	case mapkit.GlyphImage:
		return fmt.Sprintf("glyph%v", v.URLs())
	default:
		return fmt.Sprint(v)
	}
}
