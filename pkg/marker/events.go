package marker

import "github.com/go-drift/drift-maps/pkg/mapkit"

// installedListener is a live registration on a handle.
type installedListener struct {
	listener   *mapkit.Listener
	detach     func()
	unregister func()
}

// syncEvents makes the handle's listeners match the handlers present in the
// current spec: one listener per non-nil handler, none otherwise. Events are
// independent; touching one never reinstalls another.
//
// Listeners dispatch to the handler in b.spec at fire time, so replacing a
// handler with another non-nil one needs no re-registration and the old
// handler cannot run once the update that replaced it has been processed.
func (b *Binding) syncEvents(h *handle) {
	for _, event := range mapkit.Events {
		want := b.spec.hasHandler(event)
		installed, ok := h.listeners[event]
		switch {
		case want && !ok:
			b.installListener(h, event)
		case !want && ok:
			installed.unregister()
			installed.detach()
			delete(h.listeners, event)
		}
	}
}

func (b *Binding) installListener(h *handle, event mapkit.EventType) {
	l := mapkit.NewListener(func(mapkit.Event) {
		b.dispatch(h, event)
	})
	h.annotation.AddEventListener(event, l)
	b.observer.ListenerAdded(event)
	b.log.Debug().Str("annotation", h.name).Str("event", string(event)).Msg("listener added")

	detach := func() {
		h.annotation.RemoveEventListener(event, l)
		b.observer.ListenerRemoved(event)
		b.log.Debug().Str("annotation", h.name).Str("event", string(event)).Msg("listener removed")
	}
	h.listeners[event] = &installedListener{
		listener:   l,
		detach:     detach,
		unregister: h.onRelease(detach),
	}
}

// dispatch runs the current handler for event. Events for a handle that is
// no longer the binding's live handle are dropped. Handler panics propagate.
func (b *Binding) dispatch(h *handle, event mapkit.EventType) {
	if h.released || b.handle != h {
		return
	}
	switch event {
	case mapkit.EventSelect:
		if fn := b.spec.OnSelect; fn != nil {
			fn()
		}
	case mapkit.EventDeselect:
		if fn := b.spec.OnDeselect; fn != nil {
			fn()
		}
	case mapkit.EventDragStart:
		if fn := b.spec.OnDragStart; fn != nil {
			fn()
		}
	case mapkit.EventDragEnd:
		if fn := b.spec.OnDragEnd; fn != nil {
			fn(h.annotation.Coordinate())
		}
	}
}
