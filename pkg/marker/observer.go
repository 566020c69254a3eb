package marker

import "github.com/go-drift/drift-maps/pkg/mapkit"

// Observer is notified of binding side effects. Implementations must be
// cheap; they run inline with Update and Dispose.
type Observer interface {
	AnnotationCreated()
	AnnotationDisposed()
	PropertyApplied(p mapkit.Property)
	ListenerAdded(e mapkit.EventType)
	ListenerRemoved(e mapkit.EventType)
}

type nopObserver struct{}

func (nopObserver) AnnotationCreated()               {}
func (nopObserver) AnnotationDisposed()              {}
func (nopObserver) PropertyApplied(mapkit.Property)  {}
func (nopObserver) ListenerAdded(mapkit.EventType)   {}
func (nopObserver) ListenerRemoved(mapkit.EventType) {}
