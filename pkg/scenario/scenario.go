// Package scenario replays scripted host actions against a marker binding
// and records what the binding did to the map.
//
// A scenario is a YAML file:
//
//	name: drag-end
//	description: drag handler sees the coordinate at fire time
//	map: m1
//	steps:
//	  - update: {latitude: 37.33, longitude: -122.03, on_drag_end: moved}
//	  - fire: {event: drag-end, latitude: 37.34, longitude: -122.05}
//	  - update: {latitude: 37.33, longitude: -122.03}
//	  - dispose: true
//
// Every update step carries the complete marker: fields left out take their
// zero value, exactly as a host re-rendering the marker would pass them.
// Handler fields name the handler; when it runs the trace gets a
// "call <name> <event>" line.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"github.com/go-drift/drift-maps/pkg/mapkit"
	"github.com/go-drift/drift-maps/pkg/marker"
	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of host actions.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Map names the map the binding starts on. Empty starts without a map.
	Map   string `yaml:"map,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one host action. Exactly one field is set.
type Step struct {
	// Update passes a new marker to the binding on the current map.
	Update *MarkerSpec `yaml:"update,omitempty"`
	// Detach takes the map away, as when the host view is torn down.
	Detach bool `yaml:"detach,omitempty"`
	// Attach makes the named map current and updates with the last marker.
	Attach string `yaml:"attach,omitempty"`
	// Fire delivers a map event to the live annotation.
	Fire *FireSpec `yaml:"fire,omitempty"`
	// Dispose disposes the binding.
	Dispose bool `yaml:"dispose,omitempty"`
}

// Kind returns the step's action name.
func (s Step) Kind() string {
	switch {
	case s.Update != nil:
		return "update"
	case s.Detach:
		return "detach"
	case s.Attach != "":
		return "attach"
	case s.Fire != nil:
		return "fire"
	case s.Dispose:
		return "dispose"
	}
	return ""
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Update != nil, s.Detach, s.Attach != "", s.Fire != nil, s.Dispose} {
		if set {
			n++
		}
	}
	return n
}

// FireSpec describes a map event. A drag-end event with a coordinate moves
// the annotation there first.
type FireSpec struct {
	Event     mapkit.EventType `yaml:"event"`
	Latitude  *float64         `yaml:"latitude,omitempty"`
	Longitude *float64         `yaml:"longitude,omitempty"`
}

// To returns the drag destination, if any.
func (f FireSpec) To() (mapkit.Coordinate, bool) {
	if f.Latitude == nil || f.Longitude == nil {
		return mapkit.Coordinate{}, false
	}
	return mapkit.Coordinate{Latitude: *f.Latitude, Longitude: *f.Longitude}, true
}

// MarkerSpec is the YAML form of marker.Marker. Handlers are given by name.
type MarkerSpec struct {
	Latitude             float64                  `yaml:"latitude"`
	Longitude            float64                  `yaml:"longitude"`
	Title                string                   `yaml:"title,omitempty"`
	Subtitle             string                   `yaml:"subtitle,omitempty"`
	AccessibilityLabel   *string                  `yaml:"accessibility_label,omitempty"`
	SubtitleVisibility   marker.FeatureVisibility `yaml:"subtitle_visibility,omitempty"`
	TitleVisibility      marker.FeatureVisibility `yaml:"title_visibility,omitempty"`
	ClusteringIdentifier *string                  `yaml:"clustering_identifier,omitempty"`
	Color                string                   `yaml:"color,omitempty"`
	GlyphColor           string                   `yaml:"glyph_color,omitempty"`
	GlyphText            string                   `yaml:"glyph_text,omitempty"`
	GlyphImage           *mapkit.GlyphImage       `yaml:"glyph_image,omitempty"`
	SelectedGlyphImage   *mapkit.GlyphImage       `yaml:"selected_glyph_image,omitempty"`
	Selected             *bool                    `yaml:"selected,omitempty"`
	Animates             *bool                    `yaml:"animates,omitempty"`
	AppearanceAnimation  string                   `yaml:"appearance_animation,omitempty"`
	Draggable            bool                     `yaml:"draggable,omitempty"`
	Enabled              *bool                    `yaml:"enabled,omitempty"`

	OnSelect    string `yaml:"on_select,omitempty"`
	OnDeselect  string `yaml:"on_deselect,omitempty"`
	OnDragStart string `yaml:"on_drag_start,omitempty"`
	OnDragEnd   string `yaml:"on_drag_end,omitempty"`
}

// Coordinate returns the marker position.
func (m MarkerSpec) Coordinate() mapkit.Coordinate {
	return mapkit.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}
}

// Load reads and validates a scenario file. Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks required fields, step shapes and coordinates.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return fmt.Errorf("steps[%d]: want exactly one action, got %d", i, n)
		}
		switch {
		case step.Update != nil:
			if err := step.Update.Coordinate().Validate(); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		case step.Fire != nil:
			if !slices.Contains(mapkit.Events, step.Fire.Event) {
				return fmt.Errorf("steps[%d]: unknown event %q", i, step.Fire.Event)
			}
			if (step.Fire.Latitude == nil) != (step.Fire.Longitude == nil) {
				return fmt.Errorf("steps[%d]: latitude and longitude go together", i)
			}
			if to, ok := step.Fire.To(); ok {
				if err := to.Validate(); err != nil {
					return fmt.Errorf("steps[%d]: %w", i, err)
				}
			}
		}
	}
	return nil
}
