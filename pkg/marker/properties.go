package marker

import (
	"github.com/go-drift/drift-maps/pkg/errors"
	"github.com/go-drift/drift-maps/pkg/mapkit"
)

// propertyOrder fixes the order in which changed properties are applied.
var propertyOrder = [...]mapkit.Property{
	mapkit.PropTitle,
	mapkit.PropSubtitle,
	mapkit.PropAccessibilityLabel,
	mapkit.PropSubtitleVisibility,
	mapkit.PropTitleVisibility,
	mapkit.PropClusteringIdentifier,
	mapkit.PropColor,
	mapkit.PropGlyphColor,
	mapkit.PropGlyphText,
	mapkit.PropGlyphImage,
	mapkit.PropSelectedGlyphImage,
	mapkit.PropSelected,
	mapkit.PropAnimates,
	mapkit.PropAppearanceAnimation,
	mapkit.PropDraggable,
	mapkit.PropEnabled,
}

// snapshot holds resolved declarative values, indexed like propertyOrder.
// Every entry is nil or a comparable value, so entries compare with ==.
type snapshot [len(propertyOrder)]any

func resolve(m Marker, d Defaults) snapshot {
	color := m.Color
	if color == "" {
		color = d.Color
	}
	glyphColor := m.GlyphColor
	if glyphColor == "" {
		glyphColor = d.GlyphColor
	}
	animates := d.Animates
	if m.Animates != nil {
		animates = *m.Animates
	}
	enabled := d.Enabled
	if m.Enabled != nil {
		enabled = *m.Enabled
	}

	return snapshot{
		m.Title,
		m.Subtitle,
		optional(m.AccessibilityLabel),
		m.SubtitleVisibility,
		m.TitleVisibility,
		optional(m.ClusteringIdentifier),
		color,
		glyphColor,
		m.GlyphText,
		optional(m.GlyphImage),
		optional(m.SelectedGlyphImage),
		optional(m.Selected),
		animates,
		m.AppearanceAnimation,
		m.Draggable,
		enabled,
	}
}

// optional dereferences p, mapping a nil pointer to an untyped nil so that
// absent values compare equal regardless of their static type.
func optional[T comparable](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// syncProperties assigns every property whose native value differs from the
// one last written to h. A handle that never received properties gets all of
// them. Translation, and with it the invalid value report, only runs when the
// declarative value changed.
func (b *Binding) syncProperties(h *handle) {
	next := resolve(b.spec, b.defaults)
	first := h.applied == nil
	if first {
		h.native = &snapshot{}
	}
	for i, prop := range propertyOrder {
		if !first && h.applied[i] == next[i] {
			continue
		}
		v := b.nativeValue(h, prop, next[i])
		if !first && h.native[i] == v {
			continue
		}
		h.native[i] = v
		h.annotation.Set(prop, v)
		b.observer.PropertyApplied(prop)
	}
	h.applied = &next
}

// nativeValue converts a resolved value to what the annotation expects.
func (b *Binding) nativeValue(h *handle, prop mapkit.Property, v any) any {
	vis, ok := v.(FeatureVisibility)
	if !ok {
		return v
	}
	native, err := vis.Native()
	if err != nil {
		errors.Report(&errors.MapError{
			Op:         "marker.syncProperties",
			Kind:       errors.KindInvalidValue,
			Annotation: h.name,
			Property:   string(prop),
			Err:        err,
		})
		b.log.Warn().Str("annotation", h.name).Str("property", string(prop)).
			Int("value", int(vis)).Msg("unknown visibility, using adaptive")
	}
	return native
}
