package platform

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/go-drift/drift-maps/pkg/errors"
	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/google/uuid"
)

// Channel names used by the map bridge.
const (
	MapsChannel       = "drift/maps"
	MapsEventsChannel = "drift/maps/events"
)

// AnnotationRegistry owns the Go side of every native annotation and routes
// native events to their listeners.
//
// The native event stream is only open while at least one listener is
// installed on some annotation.
type AnnotationRegistry struct {
	channel *MethodChannel
	events  *EventChannel
	newID   func() string

	mu          sync.Mutex
	annotations map[string]*nativeAnnotation
	maps        map[string]*NativeMap
	listeners   int
	sub         *Subscription
}

var (
	annotationRegistryMu sync.Mutex
	annotationRegistry   *AnnotationRegistry
)

// GetAnnotationRegistry returns the global annotation registry.
func GetAnnotationRegistry() *AnnotationRegistry {
	annotationRegistryMu.Lock()
	defer annotationRegistryMu.Unlock()
	if annotationRegistry == nil {
		annotationRegistry = newAnnotationRegistry()
	}
	return annotationRegistry
}

// NewAnnotation creates a native annotation through the global registry.
// It satisfies [mapkit.AnnotationFactory].
func NewAnnotation(c mapkit.Coordinate) mapkit.Annotation {
	return GetAnnotationRegistry().NewAnnotation(c)
}

func newAnnotationRegistry() *AnnotationRegistry {
	r := &AnnotationRegistry{
		channel:     NewMethodChannel(MapsChannel),
		events:      NewEventChannel(MapsEventsChannel),
		newID:       uuid.NewString,
		annotations: make(map[string]*nativeAnnotation),
		maps:        make(map[string]*NativeMap),
	}
	r.channel.SetHandler(r.handleMethodCall)
	return r
}

func (r *AnnotationRegistry) reset() {
	r.mu.Lock()
	r.annotations = make(map[string]*nativeAnnotation)
	r.maps = make(map[string]*NativeMap)
	r.listeners = 0
	r.sub = nil
	r.newID = uuid.NewString
	r.mu.Unlock()
}

// NewAnnotation asks native to create an annotation at c. It returns nil and
// reports the failure when native refuses; a nil result is how
// [mapkit.AnnotationFactory] signals that nothing was created.
func (r *AnnotationRegistry) NewAnnotation(c mapkit.Coordinate) mapkit.Annotation {
	r.mu.Lock()
	a := &nativeAnnotation{
		id:         r.newID(),
		registry:   r,
		coordinate: c,
		listeners:  make(map[mapkit.EventType][]*mapkit.Listener),
	}
	r.annotations[a.id] = a
	r.mu.Unlock()

	var geometry []byte
	point, err := c.Point()
	if err == nil {
		geometry, err = point.MarshalJSON()
	}
	if err == nil {
		_, err = r.channel.Invoke("createAnnotation", map[string]any{
			"annotationId": a.id,
			"coordinate":   c,
			"geometry":     json.RawMessage(geometry),
		})
	}
	if err != nil {
		r.mu.Lock()
		delete(r.annotations, a.id)
		r.mu.Unlock()
		r.report("createAnnotation", a.id, "", err)
		return nil
	}
	return a
}

// SetIDGenerator replaces the generator used for new annotation ids, which
// makes ids deterministic in replays and tests. Nil restores random UUIDs.
func (r *AnnotationRegistry) SetIDGenerator(next func() string) {
	if next == nil {
		next = uuid.NewString
	}
	r.mu.Lock()
	r.newID = next
	r.mu.Unlock()
}

// Map returns the Go handle for the native map view with the given id,
// creating it on first use.
func (r *AnnotationRegistry) Map(id string) *NativeMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.maps[id]
	if !ok {
		m = &NativeMap{id: id, registry: r, members: make(map[string]struct{})}
		r.maps[id] = m
	}
	return m
}

// Annotation returns the live annotation with the given id, or nil.
func (r *AnnotationRegistry) Annotation(id string) mapkit.Annotation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.annotations[id]; ok {
		return a
	}
	return nil
}

// Len returns the number of live annotations.
func (r *AnnotationRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.annotations)
}

// AnnotationID returns the native id of a, or "" when a was not created by a
// registry.
func AnnotationID(a mapkit.Annotation) string {
	if na, ok := a.(*nativeAnnotation); ok {
		return na.id
	}
	return ""
}

func (r *AnnotationRegistry) invoke(method, annotationID, property string, args map[string]any) {
	if _, err := r.channel.Invoke(method, args); err != nil {
		r.report(method, annotationID, property, err)
	}
}

func (r *AnnotationRegistry) report(method, annotationID, property string, err error) {
	errors.Report(&errors.MapError{
		Op:         "platform." + method,
		Kind:       errors.KindPlatform,
		Channel:    r.channel.Name(),
		Annotation: annotationID,
		Property:   property,
		Err:        err,
	})
}

// retainEvents and releaseEvents count installed listeners across all
// annotations and open or close the native event stream at the edges.
func (r *AnnotationRegistry) retainEvents() {
	r.mu.Lock()
	r.listeners++
	open := r.listeners == 1 && r.sub == nil
	r.mu.Unlock()
	if !open {
		return
	}
	sub := r.events.Listen(EventHandler{
		OnEvent: r.handleEvent,
		OnError: func(err error) {
			errors.Report(&errors.MapError{
				Op:      "platform.annotationEvents",
				Kind:    errors.KindPlatform,
				Channel: MapsEventsChannel,
				Err:     err,
			})
		},
	})
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
}

func (r *AnnotationRegistry) releaseEvents(n int) {
	if n == 0 {
		return
	}
	r.mu.Lock()
	r.listeners -= n
	var sub *Subscription
	if r.listeners <= 0 {
		r.listeners = 0
		sub, r.sub = r.sub, nil
	}
	r.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// handleEvent decodes {annotationId, event, latitude?, longitude?} and
// delivers it on the UI thread. Events for unknown annotations are dropped:
// native may still be flushing events for an annotation Go just disposed.
func (r *AnnotationRegistry) handleEvent(data any) {
	m, ok := data.(map[string]any)
	id, _ := m["annotationId"].(string)
	name, _ := m["event"].(string)
	if !ok || id == "" || name == "" {
		errors.Report(&errors.MapError{
			Op:      "platform.parseAnnotationEvent",
			Kind:    errors.KindPlatform,
			Channel: MapsEventsChannel,
			Err:     &errors.ParseError{Channel: MapsEventsChannel, DataType: "AnnotationEvent", Got: data},
		})
		return
	}

	r.mu.Lock()
	a := r.annotations[id]
	r.mu.Unlock()
	if a == nil {
		log := logging.Component("platform")
		log.Debug().Str("annotation", id).Str("event", name).
			Msg("dropping event for unknown annotation")
		return
	}

	lat, latOK := m["latitude"].(float64)
	lng, lngOK := m["longitude"].(float64)
	if latOK && lngOK {
		a.setCoordinate(mapkit.Coordinate{Latitude: lat, Longitude: lng})
	}

	deliver := func() { a.fire(mapkit.EventType(name)) }
	if !Dispatch(deliver) {
		deliver()
	}
}

func (r *AnnotationRegistry) handleMethodCall(method string, args any) (any, error) {
	switch method {
	case "onAnnotationCreated", "onAnnotationDisposed":
		// Acknowledgements; nothing to do.
		return nil, nil
	case "getAnnotations":
		r.mu.Lock()
		defer r.mu.Unlock()
		ids := make([]string, 0, len(r.annotations))
		for id := range r.annotations {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		return ids, nil
	default:
		return nil, ErrMethodNotFound
	}
}

// NativeMap is a native map view as seen from Go. It implements mapkit.Map.
type NativeMap struct {
	id       string
	registry *AnnotationRegistry

	mu      sync.Mutex
	members map[string]struct{}
}

var _ mapkit.Map = (*NativeMap)(nil)

// ID returns the native map id.
func (m *NativeMap) ID() string { return m.id }

// AddAnnotation implements mapkit.Map.
func (m *NativeMap) AddAnnotation(a mapkit.Annotation) {
	na, ok := a.(*nativeAnnotation)
	if !ok || na.registry != m.registry {
		m.registry.report("addAnnotation", AnnotationID(a), "", ErrUnknownAnnotation)
		return
	}
	m.mu.Lock()
	_, dup := m.members[na.id]
	m.members[na.id] = struct{}{}
	m.mu.Unlock()
	if dup {
		return
	}
	m.registry.invoke("addAnnotation", na.id, "", map[string]any{
		"mapId":        m.id,
		"annotationId": na.id,
	})
}

// RemoveAnnotation implements mapkit.Map.
func (m *NativeMap) RemoveAnnotation(a mapkit.Annotation) {
	id := AnnotationID(a)
	m.mu.Lock()
	_, ok := m.members[id]
	delete(m.members, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	m.registry.invoke("removeAnnotation", id, "", map[string]any{
		"mapId":        m.id,
		"annotationId": id,
	})
}

// Contains reports whether a is on the map.
func (m *NativeMap) Contains(a mapkit.Annotation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.members[AnnotationID(a)]
	return ok
}

// Len returns the number of annotations on the map.
func (m *NativeMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members)
}

// nativeAnnotation forwards property and listener changes to native.
// Operations after Dispose are no-ops.
type nativeAnnotation struct {
	id       string
	registry *AnnotationRegistry

	mu         sync.Mutex
	coordinate mapkit.Coordinate
	listeners  map[mapkit.EventType][]*mapkit.Listener
	disposed   bool
}

var _ mapkit.Annotation = (*nativeAnnotation)(nil)

func (a *nativeAnnotation) Coordinate() mapkit.Coordinate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.coordinate
}

func (a *nativeAnnotation) setCoordinate(c mapkit.Coordinate) {
	a.mu.Lock()
	a.coordinate = c
	a.mu.Unlock()
}

func (a *nativeAnnotation) Set(p mapkit.Property, value any) {
	a.mu.Lock()
	disposed := a.disposed
	a.mu.Unlock()
	if disposed {
		return
	}
	a.registry.invoke("setProperty", a.id, string(p), map[string]any{
		"annotationId": a.id,
		"property":     string(p),
		"value":        encodeValue(value),
	})
}

// encodeValue converts property values to their wire form.
func encodeValue(v any) any {
	switch v := v.(type) {
	case mapkit.GlyphImage:
		return v.URLs()
	case mapkit.FeatureVisibility:
		return string(v)
	default:
		return v
	}
}

func (a *nativeAnnotation) AddEventListener(event mapkit.EventType, l *mapkit.Listener) {
	a.mu.Lock()
	if a.disposed || slices.Contains(a.listeners[event], l) {
		a.mu.Unlock()
		return
	}
	first := len(a.listeners[event]) == 0
	a.listeners[event] = append(a.listeners[event], l)
	a.mu.Unlock()

	a.registry.retainEvents()
	if first {
		a.registry.invoke("addEventListener", a.id, string(event), map[string]any{
			"annotationId": a.id,
			"event":        string(event),
		})
	}
}

func (a *nativeAnnotation) RemoveEventListener(event mapkit.EventType, l *mapkit.Listener) {
	a.mu.Lock()
	ls := a.listeners[event]
	i := slices.Index(ls, l)
	if i < 0 {
		a.mu.Unlock()
		return
	}
	a.listeners[event] = slices.Delete(ls, i, i+1)
	last := len(a.listeners[event]) == 0
	disposed := a.disposed
	a.mu.Unlock()

	if last && !disposed {
		a.registry.invoke("removeEventListener", a.id, string(event), map[string]any{
			"annotationId": a.id,
			"event":        string(event),
		})
	}
	a.registry.releaseEvents(1)
}

func (a *nativeAnnotation) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	remaining := 0
	for _, ls := range a.listeners {
		remaining += len(ls)
	}
	a.listeners = make(map[mapkit.EventType][]*mapkit.Listener)
	a.mu.Unlock()

	r := a.registry
	r.mu.Lock()
	delete(r.annotations, a.id)
	r.mu.Unlock()
	r.releaseEvents(remaining)

	r.invoke("disposeAnnotation", a.id, "", map[string]any{
		"annotationId": a.id,
	})
}

func (a *nativeAnnotation) fire(event mapkit.EventType) {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	ls := slices.Clone(a.listeners[event])
	a.mu.Unlock()

	for _, l := range ls {
		l.Invoke(mapkit.Event{Type: event, Annotation: a})
	}
}
