// Package marker binds a declarative map marker description to a live
// annotation object.
//
// A [Binding] owns at most one [mapkit.Annotation]. The host calls
// [Binding.Update] whenever its marker description or the parent map
// changes, and [Binding.Dispose] when the marker goes away for good:
//
//	b := marker.New(platform.NewAnnotation)
//	b.Update(mapView, marker.Marker{
//	    Latitude:  37.33,
//	    Longitude: -122.03,
//	    Title:     "Home",
//	    OnSelect:  func() { log.Println("selected") },
//	})
//	defer b.Dispose()
//
// The coordinate pair defines the annotation's identity: changing it removes
// the annotation from the map and creates a new one. Every other field is
// applied in place, one property at a time, and only when it changed.
package marker

import "github.com/go-drift/drift-maps/pkg/mapkit"

// Marker describes a map marker. Zero values of Color, GlyphColor, Animates
// and Enabled select the binding's [Defaults].
type Marker struct {
	// Latitude and Longitude position the marker. They define identity.
	Latitude  float64
	Longitude float64

	Title    string
	Subtitle string
	// AccessibilityLabel is read by assistive technologies. Nil clears it.
	AccessibilityLabel *string

	SubtitleVisibility FeatureVisibility
	TitleVisibility    FeatureVisibility

	// ClusteringIdentifier groups markers that may be clustered together.
	// Nil disables clustering.
	ClusteringIdentifier *string

	// Color is the balloon color as a CSS color string.
	Color string
	// GlyphColor is the glyph color as a CSS color string.
	GlyphColor string

	GlyphText string
	// GlyphImage replaces the glyph text. Nil clears it.
	GlyphImage *mapkit.GlyphImage
	// SelectedGlyphImage is shown while selected. Nil clears it.
	SelectedGlyphImage *mapkit.GlyphImage

	// Selected forces the selection state. Nil leaves it unspecified.
	Selected *bool
	// Animates enables the appearance animation. Nil means Defaults.Animates.
	Animates            *bool
	AppearanceAnimation string
	Draggable           bool
	// Enabled makes the marker respond to taps. Nil means Defaults.Enabled.
	Enabled *bool

	OnSelect    func()
	OnDeselect  func()
	OnDragStart func()
	// OnDragEnd receives the annotation's coordinate at the time the drag
	// ended.
	OnDragEnd func(mapkit.Coordinate)
}

// Coordinate returns the marker's identity-defining coordinate.
func (m Marker) Coordinate() mapkit.Coordinate {
	return mapkit.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}
}

func (m Marker) hasHandler(event mapkit.EventType) bool {
	switch event {
	case mapkit.EventSelect:
		return m.OnSelect != nil
	case mapkit.EventDeselect:
		return m.OnDeselect != nil
	case mapkit.EventDragStart:
		return m.OnDragStart != nil
	case mapkit.EventDragEnd:
		return m.OnDragEnd != nil
	}
	return false
}

// Defaults supplies values for Marker fields left at their zero value.
type Defaults struct {
	Color      string
	GlyphColor string
	Animates   bool
	Enabled    bool
}

// DefaultStyle returns the built-in defaults.
func DefaultStyle() Defaults {
	return Defaults{
		Color:      "#ff5b40",
		GlyphColor: "white",
		Animates:   true,
		Enabled:    true,
	}
}

// String returns a pointer to s, for optional Marker fields.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for optional Marker fields.
func Bool(b bool) *bool { return &b }
