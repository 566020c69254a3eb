package marker

import (
	"fmt"
	"strings"

	"github.com/go-drift/drift-maps/pkg/mapkit"
)

// FeatureVisibility controls when a marker's title or subtitle is shown.
// The zero value is VisibilityAdaptive.
type FeatureVisibility int

const (
	// VisibilityAdaptive lets the map decide based on zoom and collisions.
	VisibilityAdaptive FeatureVisibility = iota
	// VisibilityVisible always shows the text.
	VisibilityVisible
	// VisibilityHidden never shows the text.
	VisibilityHidden
)

func (v FeatureVisibility) String() string {
	switch v {
	case VisibilityAdaptive:
		return "adaptive"
	case VisibilityVisible:
		return "visible"
	case VisibilityHidden:
		return "hidden"
	default:
		return fmt.Sprintf("FeatureVisibility(%d)", int(v))
	}
}

// ParseFeatureVisibility parses "adaptive", "visible" or "hidden"
// (case-insensitive). The empty string is adaptive.
func ParseFeatureVisibility(s string) (FeatureVisibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "adaptive":
		return VisibilityAdaptive, nil
	case "visible":
		return VisibilityVisible, nil
	case "hidden":
		return VisibilityHidden, nil
	}
	return VisibilityAdaptive, fmt.Errorf("marker: unknown feature visibility %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler so visibilities can be
// read from YAML and config files.
func (v *FeatureVisibility) UnmarshalText(text []byte) error {
	parsed, err := ParseFeatureVisibility(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v FeatureVisibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Native translates v to the map's representation. Values outside the enum
// translate to adaptive and return an error describing the rejected value;
// they never map onto visible or hidden.
func (v FeatureVisibility) Native() (mapkit.FeatureVisibility, error) {
	switch v {
	case VisibilityAdaptive:
		return mapkit.VisibilityAdaptive, nil
	case VisibilityVisible:
		return mapkit.VisibilityVisible, nil
	case VisibilityHidden:
		return mapkit.VisibilityHidden, nil
	}
	return mapkit.VisibilityAdaptive, fmt.Errorf("marker: unknown feature visibility %d, using adaptive", int(v))
}
