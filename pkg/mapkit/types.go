package mapkit

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/peterstace/simplefeatures/geom"
)

// ErrInvalidCoordinate is returned by Coordinate.Validate.
var ErrInvalidCoordinate = errors.New("mapkit: invalid coordinate")

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate reports whether c is finite and within [-90, 90] x [-180, 180].
func (c Coordinate) Validate() error {
	switch {
	case math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0),
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0):
		return fmt.Errorf("%w: %s is not finite", ErrInvalidCoordinate, c)
	case c.Latitude < -90 || c.Latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	case c.Longitude < -180 || c.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// Point returns c as a 2D point with X=longitude and Y=latitude. It fails
// for NaN or infinite components.
func (c Coordinate) Point() (geom.Point, error) {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: c.Longitude, Y: c.Latitude},
		Type: geom.DimXY,
	})
}

// CoordinateFromPoint is the inverse of Coordinate.Point. An empty point
// yields the zero coordinate and false.
func CoordinateFromPoint(p geom.Point) (Coordinate, bool) {
	c, ok := p.Coordinates()
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: c.XY.Y, Longitude: c.XY.X}, true
}

func (c Coordinate) String() string {
	return "(" + strconv.FormatFloat(c.Latitude, 'f', -1, 64) + ", " +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64) + ")"
}

// Property names an annotation property.
type Property string

// Annotation properties.
const (
	PropTitle                Property = "title"
	PropSubtitle             Property = "subtitle"
	PropAccessibilityLabel   Property = "accessibilityLabel"
	PropSubtitleVisibility   Property = "subtitleVisibility"
	PropTitleVisibility      Property = "titleVisibility"
	PropClusteringIdentifier Property = "clusteringIdentifier"
	PropColor                Property = "color"
	PropGlyphColor           Property = "glyphColor"
	PropGlyphText            Property = "glyphText"
	PropGlyphImage           Property = "glyphImage"
	PropSelectedGlyphImage   Property = "selectedGlyphImage"
	PropSelected             Property = "selected"
	PropAnimates             Property = "animates"
	PropAppearanceAnimation  Property = "appearanceAnimation"
	PropDraggable            Property = "draggable"
	PropEnabled              Property = "enabled"
)

// EventType names an annotation event.
type EventType string

// Annotation events.
const (
	EventSelect    EventType = "select"
	EventDeselect  EventType = "deselect"
	EventDragStart EventType = "drag-start"
	EventDragEnd   EventType = "drag-end"
)

// Events lists every annotation event in a stable order.
var Events = []EventType{EventSelect, EventDeselect, EventDragStart, EventDragEnd}

// FeatureVisibility is the native representation of title and subtitle
// visibility.
type FeatureVisibility string

// Native visibility values.
const (
	VisibilityAdaptive FeatureVisibility = "adaptive"
	VisibilityHidden   FeatureVisibility = "hidden"
	VisibilityVisible  FeatureVisibility = "visible"
)

// GlyphImage is a set of image URLs for the 1x, 2x and 3x display scales.
// Empty entries are omitted on the wire.
type GlyphImage struct {
	Scale1 string `json:"1,omitempty" yaml:"1,omitempty"`
	Scale2 string `json:"2,omitempty" yaml:"2,omitempty"`
	Scale3 string `json:"3,omitempty" yaml:"3,omitempty"`
}

// URLs returns the non-empty entries keyed by scale ("1", "2", "3").
func (g GlyphImage) URLs() map[string]string {
	urls := make(map[string]string, 3)
	if g.Scale1 != "" {
		urls["1"] = g.Scale1
	}
	if g.Scale2 != "" {
		urls["2"] = g.Scale2
	}
	if g.Scale3 != "" {
		urls["3"] = g.Scale3
	}
	return urls
}
