package marker

import (
	"math"
	"testing"

	"github.com/go-drift/drift-maps/pkg/errors"
	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/go-drift/drift-maps/pkg/maptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureErrors installs an error handler for the duration of the test.
func captureErrors(t *testing.T) *[]*errors.MapError {
	t.Helper()
	var got []*errors.MapError
	prev := errors.DefaultHandler
	errors.SetHandler(&recordingHandler{errs: &got})
	t.Cleanup(func() { errors.SetHandler(prev) })
	return &got
}

type recordingHandler struct {
	errs *[]*errors.MapError
}

func (h *recordingHandler) HandleError(err *errors.MapError) { *h.errs = append(*h.errs, err) }
func (h *recordingHandler) HandlePanic(*errors.PanicError)   {}

func setup(t *testing.T) (*maptest.Recorder, *maptest.Map, *Binding) {
	t.Helper()
	rec := maptest.NewRecorder()
	m := rec.NewMap("m1")
	b := New(rec.Factory())
	t.Cleanup(func() {
		assert.Empty(t, rec.Violations(), "collaborator contract violations")
	})
	return rec, m, b
}

func home() Marker {
	return Marker{Latitude: 37.33, Longitude: -122.03}
}

func liveAnnotation(t *testing.T, b *Binding) *maptest.Annotation {
	t.Helper()
	a, ok := b.Annotation().(*maptest.Annotation)
	require.True(t, ok, "binding has no live annotation")
	return a
}

func TestBinding_CreatesWithDefaults(t *testing.T) {
	rec, m, b := setup(t)

	b.Update(m, home())

	a := liveAnnotation(t, b)
	assert.Equal(t, mapkit.Coordinate{Latitude: 37.33, Longitude: -122.03}, a.Coordinate())
	assert.Equal(t, []*maptest.Annotation{a}, m.Members())

	want := map[mapkit.Property]any{
		mapkit.PropTitle:                "",
		mapkit.PropSubtitle:             "",
		mapkit.PropAccessibilityLabel:   nil,
		mapkit.PropSubtitleVisibility:   mapkit.VisibilityAdaptive,
		mapkit.PropTitleVisibility:      mapkit.VisibilityAdaptive,
		mapkit.PropClusteringIdentifier: nil,
		mapkit.PropColor:                "#ff5b40",
		mapkit.PropGlyphColor:           "white",
		mapkit.PropGlyphText:            "",
		mapkit.PropGlyphImage:           nil,
		mapkit.PropSelectedGlyphImage:   nil,
		mapkit.PropSelected:             nil,
		mapkit.PropAnimates:             true,
		mapkit.PropAppearanceAnimation:  "",
		mapkit.PropDraggable:            false,
		mapkit.PropEnabled:              true,
	}
	for prop, v := range want {
		got, ok := a.Get(prop)
		assert.True(t, ok, "%s never assigned", prop)
		assert.Equal(t, v, got, "%s", prop)
	}

	trace := rec.Trace()
	require.GreaterOrEqual(t, len(trace), 2)
	assert.Equal(t, "create a1 (37.33, -122.03)", trace[0])
	assert.Equal(t, "add m1 a1", trace[1])
}

func TestBinding_NoMapIsQuiescent(t *testing.T) {
	rec, _, b := setup(t)
	errs := captureErrors(t)

	b.Update(nil, Marker{Latitude: 1, Longitude: 2, Title: "x", OnSelect: func() {}})

	assert.Nil(t, b.Annotation())
	assert.Empty(t, rec.Trace())
	assert.Empty(t, *errs)
}

func TestBinding_MapBecomesAvailable(t *testing.T) {
	rec, m, b := setup(t)

	b.Update(nil, home())
	b.Update(m, home())

	require.NotNil(t, b.Annotation())
	assert.Len(t, rec.Annotations(), 1)
	assert.True(t, m.Contains(b.Annotation()))
}

func TestBinding_PropertyChangeKeepsIdentity(t *testing.T) {
	rec, m, b := setup(t)
	b.Update(m, home())
	a := liveAnnotation(t, b)
	rec.Reset()

	next := home()
	next.Title = "Home"
	b.Update(m, next)

	assert.Same(t, a, liveAnnotation(t, b))
	title, _ := a.Get(mapkit.PropTitle)
	assert.Equal(t, "Home", title)
	assert.Equal(t, []string{`set a1 title="Home"`}, rec.Trace())
}

func TestBinding_UnchangedSpecIsIdempotent(t *testing.T) {
	rec, m, b := setup(t)
	spec := home()
	spec.AccessibilityLabel = String("pin")
	spec.GlyphImage = &mapkit.GlyphImage{Scale1: "pin.png"}
	spec.Selected = Bool(true)
	spec.OnSelect = func() {}
	b.Update(m, spec)
	rec.Reset()

	// Fresh pointers with equal values must not count as changes.
	again := spec
	again.AccessibilityLabel = String("pin")
	again.GlyphImage = &mapkit.GlyphImage{Scale1: "pin.png"}
	again.Selected = Bool(true)
	again.OnSelect = func() {}
	b.Update(m, again)
	b.Update(m, again)

	assert.Empty(t, rec.Trace())
}

func TestBinding_EachPropertyAppliedIndependently(t *testing.T) {
	rec, m, b := setup(t)
	b.Update(m, home())
	rec.Reset()

	next := home()
	next.TitleVisibility = VisibilityHidden
	next.Color = "#000000"
	next.Draggable = true
	b.Update(m, next)

	assert.Equal(t, []string{
		"set a1 titleVisibility=hidden",
		`set a1 color="#000000"`,
		"set a1 draggable=true",
	}, rec.Trace())
}

func TestBinding_OptionalValuesCanBeCleared(t *testing.T) {
	rec, m, b := setup(t)
	spec := home()
	spec.ClusteringIdentifier = String("cafes")
	spec.Selected = Bool(false)
	b.Update(m, spec)
	a := liveAnnotation(t, b)
	rec.Reset()

	b.Update(m, home())

	assert.Equal(t, []string{
		"set a1 clusteringIdentifier=nil",
		"set a1 selected=nil",
	}, rec.Trace())
	v, ok := a.Get(mapkit.PropSelected)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestBinding_ExplicitFalseOverridesDefaults(t *testing.T) {
	_, m, b := setup(t)
	spec := home()
	spec.Animates = Bool(false)
	spec.Enabled = Bool(false)
	b.Update(m, spec)

	a := liveAnnotation(t, b)
	animates, _ := a.Get(mapkit.PropAnimates)
	enabled, _ := a.Get(mapkit.PropEnabled)
	assert.Equal(t, false, animates)
	assert.Equal(t, false, enabled)
}

func TestBinding_CustomDefaults(t *testing.T) {
	rec := maptest.NewRecorder()
	m := rec.NewMap("m1")
	b := New(rec.Factory(), WithDefaults(Defaults{Color: "#0a84ff", GlyphColor: "black", Animates: false, Enabled: true}))

	b.Update(m, home())

	a := liveAnnotation(t, b)
	color, _ := a.Get(mapkit.PropColor)
	glyph, _ := a.Get(mapkit.PropGlyphColor)
	animates, _ := a.Get(mapkit.PropAnimates)
	assert.Equal(t, "#0a84ff", color)
	assert.Equal(t, "black", glyph)
	assert.Equal(t, false, animates)
}

func TestBinding_CoordinateChangeRecreates(t *testing.T) {
	rec, m, b := setup(t)
	b.Update(m, home())
	first := liveAnnotation(t, b)
	rec.Reset()

	next := home()
	next.Longitude = -122.04
	b.Update(m, next)

	second := liveAnnotation(t, b)
	assert.NotSame(t, first, second)
	assert.True(t, first.Disposed())
	assert.Equal(t, mapkit.Coordinate{Latitude: 37.33, Longitude: -122.04}, second.Coordinate())
	assert.Equal(t, []*maptest.Annotation{second}, m.Members())

	trace := rec.Trace()
	require.GreaterOrEqual(t, len(trace), 4)
	assert.Equal(t, []string{
		"remove m1 a1",
		"dispose a1",
		"create a2 (37.33, -122.04)",
		"add m1 a2",
	}, trace[:4])
}

func TestBinding_CoordinateSequenceKeepsOneLive(t *testing.T) {
	rec, m, b := setup(t)
	for i := range 5 {
		b.Update(m, Marker{Latitude: float64(i), Longitude: float64(-i)})
		assert.Len(t, m.Members(), 1)
		assert.Len(t, rec.Live(), 1)
	}
	assert.Len(t, rec.Annotations(), 5)
}

func TestBinding_MapLossDisposesOnce(t *testing.T) {
	rec, m, b := setup(t)
	spec := home()
	spec.OnSelect = func() {}
	spec.OnDragEnd = func(mapkit.Coordinate) {}
	b.Update(m, spec)
	a := liveAnnotation(t, b)
	rec.Reset()

	b.Update(nil, spec)
	b.Update(nil, spec)

	assert.Nil(t, b.Annotation())
	assert.True(t, a.Disposed())
	assert.Empty(t, m.Members())
	assert.Zero(t, a.ListenerCount(mapkit.EventSelect))
	assert.Zero(t, a.ListenerCount(mapkit.EventDragEnd))
	assert.Equal(t, []string{
		"unlisten a1 drag-end",
		"unlisten a1 select",
		"remove m1 a1",
		"dispose a1",
	}, rec.Trace())
}

func TestBinding_MapSwapMovesAnnotation(t *testing.T) {
	rec, m1, b := setup(t)
	m2 := rec.NewMap("m2")
	b.Update(m1, home())
	first := liveAnnotation(t, b)

	b.Update(m2, home())

	second := liveAnnotation(t, b)
	assert.True(t, first.Disposed())
	assert.Empty(t, m1.Members())
	assert.Equal(t, []*maptest.Annotation{second}, m2.Members())
}

func TestBinding_Dispose(t *testing.T) {
	rec, m, b := setup(t)
	errs := captureErrors(t)
	b.Update(m, home())
	a := liveAnnotation(t, b)

	b.Dispose()
	b.Dispose()

	assert.True(t, b.Disposed())
	assert.True(t, a.Disposed())
	assert.Empty(t, m.Members())

	b.Update(m, home())
	assert.Nil(t, b.Annotation())
	assert.Len(t, rec.Annotations(), 1)
	require.Len(t, *errs, 1)
	assert.Equal(t, errors.KindLifecycle, (*errs)[0].Kind)
	assert.ErrorIs(t, (*errs)[0], ErrDisposed)
}

func TestBinding_DisposeWithoutAnnotation(t *testing.T) {
	rec, _, b := setup(t)
	b.Update(nil, home())
	b.Dispose()
	assert.Empty(t, rec.Trace())
}

func TestBinding_InvalidVisibilityFallsBackToAdaptive(t *testing.T) {
	_, m, b := setup(t)
	errs := captureErrors(t)

	spec := home()
	spec.TitleVisibility = VisibilityVisible
	b.Update(m, spec)

	spec.TitleVisibility = FeatureVisibility(42)
	b.Update(m, spec)
	b.Update(m, spec)

	a := liveAnnotation(t, b)
	v, _ := a.Get(mapkit.PropTitleVisibility)
	assert.Equal(t, mapkit.VisibilityAdaptive, v)

	require.Len(t, *errs, 1, "reported once per change")
	assert.Equal(t, errors.KindInvalidValue, (*errs)[0].Kind)
	assert.Equal(t, "titleVisibility", (*errs)[0].Property)
}

func TestBinding_NilFactoryResultIsReported(t *testing.T) {
	errs := captureErrors(t)
	b := New(func(mapkit.Coordinate) mapkit.Annotation { return nil })
	m := maptest.NewRecorder().NewMap("m1")

	b.Update(m, home())

	assert.Nil(t, b.Annotation())
	require.Len(t, *errs, 1)
	assert.Equal(t, errors.KindPlatform, (*errs)[0].Kind)
}

type countingObserver struct {
	created, disposed, props, added, removed int
}

func (o *countingObserver) AnnotationCreated()               { o.created++ }
func (o *countingObserver) AnnotationDisposed()              { o.disposed++ }
func (o *countingObserver) PropertyApplied(mapkit.Property)  { o.props++ }
func (o *countingObserver) ListenerAdded(mapkit.EventType)   { o.added++ }
func (o *countingObserver) ListenerRemoved(mapkit.EventType) { o.removed++ }

func TestBinding_Observer(t *testing.T) {
	rec := maptest.NewRecorder()
	m := rec.NewMap("m1")
	obs := &countingObserver{}
	b := New(rec.Factory(), WithObserver(obs), WithName("pin"))

	spec := home()
	spec.OnSelect = func() {}
	b.Update(m, spec)
	spec.Latitude = 1
	b.Update(m, spec)
	b.Dispose()

	assert.Equal(t, 2, obs.created)
	assert.Equal(t, 2, obs.disposed)
	assert.Equal(t, 2*len(propertyOrder), obs.props)
	assert.Equal(t, 2, obs.added)
	assert.Equal(t, 2, obs.removed)
}

func TestBinding_InvalidCoordinateIsRejected(t *testing.T) {
	rec, m, b := setup(t)
	errs := captureErrors(t)

	nan := Marker{Latitude: math.NaN(), Longitude: 1}
	b.Update(m, nan)
	b.Update(m, nan)
	b.Update(m, nan)

	assert.Nil(t, b.Annotation())
	assert.Empty(t, rec.Annotations())
	require.Len(t, *errs, 3)
	for _, err := range *errs {
		assert.Equal(t, errors.KindInvalidValue, err.Kind)
		assert.ErrorIs(t, err, mapkit.ErrInvalidCoordinate)
	}
}

func TestBinding_InvalidCoordinateKeepsCurrentAnnotation(t *testing.T) {
	rec, m, b := setup(t)
	errs := captureErrors(t)

	spec := home()
	spec.Title = "Home"
	b.Update(m, spec)
	a := liveAnnotation(t, b)

	moved := spec
	moved.Latitude = 91
	moved.Title = "Away"
	b.Update(m, moved)

	assert.Same(t, a, b.Annotation())
	assert.Len(t, rec.Annotations(), 1)
	title, _ := a.Get(mapkit.PropTitle)
	assert.Equal(t, "Home", title)
	require.Len(t, *errs, 1)

	b.Update(nil, moved)
	assert.Nil(t, b.Annotation())
	assert.Empty(t, rec.Live())
}

// valueMap has a non-comparable dynamic type.
type valueMap struct {
	members map[mapkit.Annotation]bool
}

func (m valueMap) AddAnnotation(a mapkit.Annotation)    { m.members[a] = true }
func (m valueMap) RemoveAnnotation(a mapkit.Annotation) { delete(m.members, a) }

func TestBinding_UncomparableMapIsReported(t *testing.T) {
	rec := maptest.NewRecorder()
	b := New(rec.Factory())
	errs := captureErrors(t)
	m := valueMap{members: make(map[mapkit.Annotation]bool)}

	assert.NotPanics(t, func() {
		b.Update(m, home())
		b.Update(m, home())
	})

	assert.Nil(t, b.Annotation())
	assert.Empty(t, m.members)
	require.Len(t, *errs, 2)
	assert.ErrorIs(t, (*errs)[0], ErrUncomparableMap)
}

func TestBinding_InvalidVisibilityFromAdaptiveSendsNothing(t *testing.T) {
	rec, m, b := setup(t)
	errs := captureErrors(t)

	spec := home()
	b.Update(m, spec)
	rec.Reset()

	spec.TitleVisibility = FeatureVisibility(42)
	b.Update(m, spec)

	assert.Empty(t, rec.Trace(), "adaptive is already applied")
	require.Len(t, *errs, 1)
	assert.Equal(t, "titleVisibility", (*errs)[0].Property)

	spec.TitleVisibility = VisibilityHidden
	b.Update(m, spec)
	assert.Equal(t, []string{"set a1 titleVisibility=hidden"}, rec.Trace())
}

func TestBinding_ToggledHandlersDoNotGrowTheHandle(t *testing.T) {
	_, m, b := setup(t)

	spec := home()
	b.Update(m, spec)
	h := b.handle
	base := len(h.disposers)

	for range 100 {
		spec.OnSelect = func() {}
		b.Update(m, spec)
		spec.OnSelect = nil
		b.Update(m, spec)
	}

	assert.Same(t, h, b.handle)
	assert.Len(t, h.disposers, base)
}
