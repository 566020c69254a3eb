package marker

import (
	stderrors "errors"
	"reflect"
	"strconv"

	"github.com/go-drift/drift-maps/pkg/errors"
	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/rs/zerolog"
)

// ErrDisposed is reported when a disposed binding is updated.
var ErrDisposed = stderrors.New("marker: binding disposed")

// ErrUncomparableMap is reported when Update is given a map whose dynamic
// type cannot be compared with ==.
var ErrUncomparableMap = stderrors.New("marker: map type is not comparable")

// errNilAnnotation is reported when the factory returns nil.
var errNilAnnotation = stderrors.New("marker: annotation factory returned nil")

// Binding keeps one annotation in sync with the latest [Marker].
//
// A Binding is not safe for concurrent use. Update, Dispose and event
// delivery must all happen on the host's UI thread.
type Binding struct {
	factory  mapkit.AnnotationFactory
	defaults Defaults
	observer Observer
	log      zerolog.Logger
	name     string

	spec     Marker
	handle   *handle
	created  int
	disposed bool
}

// Option configures a Binding.
type Option func(*Binding)

// WithDefaults replaces the built-in defaults for zero-valued fields.
func WithDefaults(d Defaults) Option {
	return func(b *Binding) { b.defaults = d }
}

// WithObserver installs an observer for lifecycle side effects.
func WithObserver(o Observer) Option {
	return func(b *Binding) {
		if o != nil {
			b.observer = o
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Binding) { b.log = l }
}

// WithName names the binding in logs and error reports.
func WithName(name string) Option {
	return func(b *Binding) { b.name = name }
}

// New creates a binding that constructs annotations with factory. Nothing is
// created until Update is called with a non-nil map.
func New(factory mapkit.AnnotationFactory, opts ...Option) *Binding {
	b := &Binding{
		factory:  factory,
		defaults: DefaultStyle(),
		observer: nopObserver{},
		log:      logging.Component("marker"),
		name:     "marker",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Update synchronizes the binding with parent and m.
//
// With a nil parent the binding holds no annotation. Otherwise it holds
// exactly one annotation on parent, positioned at m's coordinate: a change of
// parent or coordinate removes the old annotation and creates a new one, and
// every other change is applied to the existing annotation.
//
// An update that cannot be placed on parent, because the coordinate is not
// finite and in range or parent's type is not comparable, is reported and
// otherwise ignored: the current annotation stays as it was.
//
// Update on a disposed binding does nothing.
func (b *Binding) Update(parent mapkit.Map, m Marker) {
	if b.disposed {
		errors.Report(&errors.MapError{
			Op:         "marker.Update",
			Kind:       errors.KindLifecycle,
			Annotation: b.name,
			Err:        ErrDisposed,
		})
		return
	}
	coord := m.Coordinate()
	if parent != nil {
		if err := placeable(parent, coord); err != nil {
			errors.Report(&errors.MapError{
				Op:         "marker.Update",
				Kind:       errors.KindInvalidValue,
				Annotation: b.name,
				Err:        err,
			})
			return
		}
	}
	b.spec = m

	if h := b.handle; h != nil {
		switch {
		case parent == nil || h.parent != parent:
			b.teardown("map changed")
		case h.coordinate != coord:
			b.teardown("coordinate changed")
		}
	}
	if b.handle == nil && parent != nil {
		b.create(parent, coord)
	}
	if b.handle == nil {
		return
	}
	b.syncProperties(b.handle)
	b.syncEvents(b.handle)
}

func placeable(parent mapkit.Map, coord mapkit.Coordinate) error {
	if !reflect.TypeOf(parent).Comparable() {
		return ErrUncomparableMap
	}
	return coord.Validate()
}

// Dispose removes and releases the annotation, if any. Further updates are
// ignored and no handler runs after Dispose returns. Dispose is idempotent.
func (b *Binding) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.teardown("disposed")
	b.spec = Marker{}
}

// Annotation returns the live annotation, or nil when there is none.
func (b *Binding) Annotation() mapkit.Annotation {
	if b.handle == nil {
		return nil
	}
	return b.handle.annotation
}

// Disposed reports whether Dispose has been called.
func (b *Binding) Disposed() bool {
	return b.disposed
}

// create builds an annotation, adds it to parent and only then publishes it
// as the binding's handle.
func (b *Binding) create(parent mapkit.Map, coord mapkit.Coordinate) {
	a := b.factory(coord)
	if a == nil {
		errors.Report(&errors.MapError{
			Op:         "marker.create",
			Kind:       errors.KindPlatform,
			Annotation: b.name,
			Err:        errNilAnnotation,
		})
		return
	}
	b.created++
	h := &handle{
		name:       b.name + "#" + strconv.Itoa(b.created),
		annotation: a,
		parent:     parent,
		coordinate: coord,
		listeners:  make(map[mapkit.EventType]*installedListener),
	}

	parent.AddAnnotation(a)
	h.onRelease(func() { parent.RemoveAnnotation(a) })
	b.handle = h

	b.observer.AnnotationCreated()
	b.log.Debug().Str("annotation", h.name).
		Float64("latitude", coord.Latitude).Float64("longitude", coord.Longitude).
		Msg("annotation created")
}

// teardown removes listeners, takes the annotation off its map and releases
// it. The handle is unpublished first so events fired during teardown are
// dropped.
func (b *Binding) teardown(reason string) {
	h := b.handle
	if h == nil {
		return
	}
	b.handle = nil
	h.release()

	b.observer.AnnotationDisposed()
	b.log.Debug().Str("annotation", h.name).Str("reason", reason).Msg("annotation disposed")
}
