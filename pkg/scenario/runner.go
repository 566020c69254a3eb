package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/drift-maps/pkg/errors"
	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/go-drift/drift-maps/pkg/maptest"
	"github.com/go-drift/drift-maps/pkg/marker"
	"github.com/go-drift/drift-maps/pkg/platform"
	"github.com/rs/zerolog"
)

// Result is the outcome of a replay.
type Result struct {
	Name  string
	Trace []string
	// Violations lists misuse of the map contract seen by the in-memory map.
	// It is always empty for bridge replays.
	Violations []string
	// Live is the number of annotations not yet disposed when the replay
	// ended.
	Live int
}

// Bytes renders the trace one line per entry, followed by the live count.
func (r *Result) Bytes() []byte {
	var sb strings.Builder
	for _, line := range r.Trace {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	for _, v := range r.Violations {
		sb.WriteString("violation: ")
		sb.WriteString(v)
		sb.WriteByte('\n')
	}
	sb.WriteString("live ")
	sb.WriteString(strconv.Itoa(r.Live))
	sb.WriteByte('\n')
	return []byte(sb.String())
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	bridge   bool
	defaults marker.Defaults
	observer marker.Observer
	log      zerolog.Logger
}

// WithBridge replays through the platform bridge instead of the in-memory
// map. The trace then shows the native calls.
func WithBridge() Option {
	return func(c *runConfig) { c.bridge = true }
}

// WithDefaults sets the binding defaults.
func WithDefaults(d marker.Defaults) Option {
	return func(c *runConfig) { c.defaults = d }
}

// WithObserver passes o to the binding.
func WithObserver(o marker.Observer) Option {
	return func(c *runConfig) { c.observer = o }
}

// WithLogger sets the logger for the replay and the binding.
func WithLogger(l zerolog.Logger) Option {
	return func(c *runConfig) { c.log = l }
}

// world is where a replay runs: the in-memory recorder or the bridge.
type world interface {
	factory() mapkit.AnnotationFactory
	mapNamed(name string) mapkit.Map
	fire(a mapkit.Annotation, f FireSpec)
	record(line string)
	trace() []string
	violations() []string
	live() int
	close()
}

// Run replays s against a fresh binding. Errors reported while replaying
// appear in the trace as "report" lines and are passed on to the previous
// error handler.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	cfg := runConfig{
		defaults: marker.DefaultStyle(),
		log:      logging.Component("scenario"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var w world
	if cfg.bridge {
		w = newBridgeWorld()
	} else {
		w = newMemoryWorld()
	}
	defer w.close()

	prev := errors.DefaultHandler
	errors.SetHandler(&traceHandler{w: w, next: prev})
	defer errors.SetHandler(prev)

	bopts := []marker.Option{
		marker.WithDefaults(cfg.defaults),
		marker.WithLogger(cfg.log),
		marker.WithName(s.Name),
	}
	if cfg.observer != nil {
		bopts = append(bopts, marker.WithObserver(cfg.observer))
	}
	b := marker.New(w.factory(), bopts...)

	r := &replay{w: w, b: b}
	if s.Map != "" {
		r.parent = w.mapNamed(s.Map)
	}
	for i, step := range s.Steps {
		cfg.log.Debug().Int("step", i).Str("action", step.Kind()).Msg("replaying")
		w.record("step " + strconv.Itoa(i+1) + ": " + step.Kind())
		r.apply(step)
	}

	return &Result{
		Name:       s.Name,
		Trace:      w.trace(),
		Violations: w.violations(),
		Live:       w.live(),
	}, nil
}

type replay struct {
	w      world
	b      *marker.Binding
	parent mapkit.Map
	last   marker.Marker
	seen   bool
}

func (r *replay) apply(step Step) {
	switch {
	case step.Update != nil:
		r.last = r.toMarker(*step.Update)
		r.seen = true
		r.b.Update(r.parent, r.last)
	case step.Detach:
		r.parent = nil
		r.b.Update(nil, r.last)
	case step.Attach != "":
		r.parent = r.w.mapNamed(step.Attach)
		if r.seen {
			r.b.Update(r.parent, r.last)
		}
	case step.Fire != nil:
		a := r.b.Annotation()
		if a == nil {
			r.w.record("fire " + string(step.Fire.Event) + ": no annotation")
			return
		}
		r.w.fire(a, *step.Fire)
	case step.Dispose:
		r.b.Dispose()
	}
}

func (r *replay) toMarker(s MarkerSpec) marker.Marker {
	m := marker.Marker{
		Latitude:             s.Latitude,
		Longitude:            s.Longitude,
		Title:                s.Title,
		Subtitle:             s.Subtitle,
		AccessibilityLabel:   s.AccessibilityLabel,
		SubtitleVisibility:   s.SubtitleVisibility,
		TitleVisibility:      s.TitleVisibility,
		ClusteringIdentifier: s.ClusteringIdentifier,
		Color:                s.Color,
		GlyphColor:           s.GlyphColor,
		GlyphText:            s.GlyphText,
		GlyphImage:           s.GlyphImage,
		SelectedGlyphImage:   s.SelectedGlyphImage,
		Selected:             s.Selected,
		Animates:             s.Animates,
		AppearanceAnimation:  s.AppearanceAnimation,
		Draggable:            s.Draggable,
		Enabled:              s.Enabled,
	}
	if name := s.OnSelect; name != "" {
		m.OnSelect = r.handler(name, mapkit.EventSelect)
	}
	if name := s.OnDeselect; name != "" {
		m.OnDeselect = r.handler(name, mapkit.EventDeselect)
	}
	if name := s.OnDragStart; name != "" {
		m.OnDragStart = r.handler(name, mapkit.EventDragStart)
	}
	if name := s.OnDragEnd; name != "" {
		m.OnDragEnd = func(c mapkit.Coordinate) {
			r.w.record(fmt.Sprintf("call %s %s %s", name, mapkit.EventDragEnd, c))
		}
	}
	return m
}

func (r *replay) handler(name string, event mapkit.EventType) func() {
	return func() {
		r.w.record(fmt.Sprintf("call %s %s", name, event))
	}
}

// traceHandler records reported errors in the trace.
type traceHandler struct {
	w    world
	next errors.Handler
}

func (h *traceHandler) HandleError(err *errors.MapError) {
	line := "report " + err.Kind.String() + " " + err.Op
	if err.Property != "" {
		line += " property=" + err.Property
	}
	h.w.record(line)
	if h.next != nil {
		h.next.HandleError(err)
	}
}

func (h *traceHandler) HandlePanic(err *errors.PanicError) {
	h.w.record("panic " + err.Op)
	if h.next != nil {
		h.next.HandlePanic(err)
	}
}

// memoryWorld replays against maptest.
type memoryWorld struct {
	rec  *maptest.Recorder
	maps map[string]*maptest.Map
}

func newMemoryWorld() *memoryWorld {
	return &memoryWorld{rec: maptest.NewRecorder(), maps: make(map[string]*maptest.Map)}
}

func (w *memoryWorld) factory() mapkit.AnnotationFactory { return w.rec.Factory() }

func (w *memoryWorld) mapNamed(name string) mapkit.Map {
	m, ok := w.maps[name]
	if !ok {
		m = w.rec.NewMap(name)
		w.maps[name] = m
	}
	return m
}

func (w *memoryWorld) fire(a mapkit.Annotation, f FireSpec) {
	ann, ok := a.(*maptest.Annotation)
	if !ok {
		return
	}
	if to, ok := f.To(); ok {
		ann.MoveTo(to)
	}
	ann.Fire(f.Event)
}

func (w *memoryWorld) record(line string) { w.rec.Record(line) }
func (w *memoryWorld) trace() []string    { return w.rec.Trace() }
func (w *memoryWorld) violations() []string {
	return w.rec.Violations()
}
func (w *memoryWorld) live() int { return len(w.rec.Live()) }
func (w *memoryWorld) close()    {}

// bridgeWorld replays through the platform package with itself installed as
// the native bridge, so every native call lands in the trace.
type bridgeWorld struct {
	lines []string
	ids   int
	base  int
}

func newBridgeWorld() *bridgeWorld {
	w := &bridgeWorld{base: platform.GetAnnotationRegistry().Len()}
	platform.SetNativeBridge(w)
	platform.RegisterDispatch(func(cb func()) { cb() })
	platform.GetAnnotationRegistry().SetIDGenerator(func() string {
		w.ids++
		return "a" + strconv.Itoa(w.ids)
	})
	return w
}

func (w *bridgeWorld) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	w.record(method + " " + string(args))
	return platform.DefaultCodec.Encode(nil)
}

func (w *bridgeWorld) StartEventStream(channel string) error {
	w.record("stream start " + channel)
	return nil
}

func (w *bridgeWorld) StopEventStream(channel string) error {
	w.record("stream stop " + channel)
	return nil
}

func (w *bridgeWorld) factory() mapkit.AnnotationFactory { return platform.NewAnnotation }

func (w *bridgeWorld) mapNamed(name string) mapkit.Map {
	return platform.GetAnnotationRegistry().Map(name)
}

func (w *bridgeWorld) fire(a mapkit.Annotation, f FireSpec) {
	payload := map[string]any{
		"annotationId": platform.AnnotationID(a),
		"event":        string(f.Event),
	}
	if to, ok := f.To(); ok {
		payload["latitude"] = to.Latitude
		payload["longitude"] = to.Longitude
	}
	w.record("native " + string(f.Event) + " " + platform.AnnotationID(a))
	data, err := platform.DefaultCodec.Encode(payload)
	if err != nil {
		w.record("encode event: " + err.Error())
		return
	}
	// Failures are reported through the error handler and land in the trace.
	_ = platform.HandleEvent(platform.MapsEventsChannel, data)
}

func (w *bridgeWorld) record(line string)   { w.lines = append(w.lines, line) }
func (w *bridgeWorld) trace() []string      { return append([]string(nil), w.lines...) }
func (w *bridgeWorld) violations() []string { return nil }
func (w *bridgeWorld) live() int            { return platform.GetAnnotationRegistry().Len() - w.base }

func (w *bridgeWorld) close() {
	platform.SetNativeBridge(nil)
	platform.RegisterDispatch(nil)
	platform.GetAnnotationRegistry().SetIDGenerator(nil)
}
