package marker

import (
	"slices"

	"github.com/go-drift/drift-maps/pkg/mapkit"
)

// handle is the binding's exclusive reference to one live annotation.
type handle struct {
	name       string
	annotation mapkit.Annotation
	parent     mapkit.Map
	coordinate mapkit.Coordinate

	// applied is the resolved snapshot of the last property pass; nil until
	// the first one.
	applied   *snapshot
	// native holds the values last passed to Set, after translation.
	native    *snapshot
	listeners map[mapkit.EventType]*installedListener

	disposers []*disposer
	released  bool
}

type disposer struct {
	run func()
}

// onRelease registers cleanup to run when the handle is released. Cleanups
// run in reverse registration order, so anything attached after the handle
// joined its map is detached before it leaves the map. The returned func
// unregisters cleanup without running it and frees its slot.
func (h *handle) onRelease(cleanup func()) func() {
	if h.released {
		cleanup()
		return func() {}
	}
	d := &disposer{run: cleanup}
	h.disposers = append(h.disposers, d)
	return func() {
		if i := slices.Index(h.disposers, d); i >= 0 {
			h.disposers = slices.Delete(h.disposers, i, i+1)
		}
	}
}

// release runs the registered cleanups LIFO, then disposes the annotation.
// It runs at most once.
func (h *handle) release() {
	if h.released {
		return
	}
	h.released = true
	ds := h.disposers
	h.disposers = nil
	for i := len(ds) - 1; i >= 0; i-- {
		ds[i].run()
	}
	h.listeners = nil
	h.annotation.Dispose()
}
