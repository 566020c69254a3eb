// Package mapkit defines the capability surface of a live map view as seen by
// marker bindings: a parent [Map] that owns annotations, and the mutable
// [Annotation] objects themselves.
//
// Implementations live elsewhere: [github.com/go-drift/drift-maps/pkg/platform]
// forwards everything to a native map over a method channel, and
// [github.com/go-drift/drift-maps/pkg/maptest] records calls in memory.
package mapkit

// Map is the parent collection an annotation must belong to in order to be
// visible. Bindings only add and remove their own annotation.
//
// Implementations must be comparable, which in practice means pointer types:
// the binding detects a change of map with ==.
type Map interface {
	// AddAnnotation makes a onto the map.
	AddAnnotation(a Annotation)

	// RemoveAnnotation takes a off the map. Removing an annotation that is
	// not on the map is a no-op.
	RemoveAnnotation(a Annotation)
}

// Annotation is a mutable marker object inside a map view.
type Annotation interface {
	// Coordinate returns the annotation's current position. It may differ
	// from the construction coordinate after the user dragged it.
	Coordinate() Coordinate

	// Set assigns a property. A nil value clears optional properties.
	Set(p Property, value any)

	// AddEventListener installs l for event. The same listener may be
	// installed once per event.
	AddEventListener(event EventType, l *Listener)

	// RemoveEventListener uninstalls l for event. Unknown listeners are
	// ignored.
	RemoveEventListener(event EventType, l *Listener)

	// Dispose releases the annotation. It is called after the annotation has
	// been removed from its map and all listeners are gone.
	Dispose()
}

// AnnotationFactory constructs an annotation at a coordinate.
type AnnotationFactory func(c Coordinate) Annotation

// Listener wraps an event callback. Listeners are compared by pointer, which
// gives Go callbacks the identity that add/remove pairs need.
type Listener struct {
	fn func(Event)
}

// NewListener wraps fn.
func NewListener(fn func(Event)) *Listener {
	return &Listener{fn: fn}
}

// Invoke calls the wrapped callback. A nil listener or callback does nothing.
func (l *Listener) Invoke(e Event) {
	if l == nil || l.fn == nil {
		return
	}
	l.fn(e)
}

// Event is delivered to listeners.
type Event struct {
	Type       EventType
	Annotation Annotation
}
