// Package pointer maintains the per-target bookkeeping of live pointers:
// arrival order, initial down events, latest move events, and native
// capture sets. The registry is mutated only by the event router; every
// other component queries it read-only.
package pointer

import (
	"sync"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/scene"
)

// targetState tracks the live pointers of one target element.
type targetState struct {
	order    []int64
	down     map[int64]events.PointerEvent
	move     map[int64]events.PointerEvent
	captured map[int64]struct{}
}

func newTargetState() *targetState {
	return &targetState{
		down:     make(map[int64]events.PointerEvent),
		move:     make(map[int64]events.PointerEvent),
		captured: make(map[int64]struct{}),
	}
}

// Registry tracks live pointers per target element.
type Registry struct {
	mu      sync.Mutex
	targets map[*scene.Element]*targetState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[*scene.Element]*targetState)}
}

func (r *Registry) state(target *scene.Element) *targetState {
	st := r.targets[target]
	if st == nil {
		st = newTargetState()
		r.targets[target] = st
	}
	return st
}

// AddPointer records a pointer-down on target. A second down for the same
// pointer replaces the first.
func (r *Registry) AddPointer(target *scene.Element, ev events.PointerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(target)
	if _, exists := st.down[ev.PointerID]; !exists {
		st.order = append(st.order, ev.PointerID)
	}
	st.down[ev.PointerID] = ev
	delete(st.move, ev.PointerID)
}

// UpdatePointer records the latest move event for a live pointer. Moves for
// pointers the registry does not know are dropped.
func (r *Registry) UpdatePointer(target *scene.Element, ev events.PointerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return
	}
	if _, live := st.down[ev.PointerID]; live {
		st.move[ev.PointerID] = ev
	}
}

// RemovePointer forgets a pointer on target (up or cancel) and clears any
// capture for it.
func (r *Registry) RemovePointer(target *scene.Element, pointerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return
	}
	delete(st.down, pointerID)
	delete(st.move, pointerID)
	delete(st.captured, pointerID)
	for i, id := range st.order {
		if id == pointerID {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	if len(st.down) == 0 && len(st.captured) == 0 {
		delete(r.targets, target)
	}
}

// LivePointers returns the live pointer IDs on target in arrival order.
func (r *Registry) LivePointers(target *scene.Element) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return nil
	}
	ids := make([]int64, len(st.order))
	copy(ids, st.order)
	return ids
}

// DownEvent returns the initial down event of a live pointer on target.
func (r *Registry) DownEvent(target *scene.Element, pointerID int64) (events.PointerEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return events.PointerEvent{}, false
	}
	ev, ok := st.down[pointerID]
	return ev, ok
}

// CurrentEvent returns the most recent event of a live pointer on target,
// falling back to the down event when no move has occurred yet.
func (r *Registry) CurrentEvent(target *scene.Element, pointerID int64) (events.PointerEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return events.PointerEvent{}, false
	}
	if ev, ok := st.move[pointerID]; ok {
		return ev, true
	}
	ev, ok := st.down[pointerID]
	return ev, ok
}

// Capture marks a pointer as captured by target.
func (r *Registry) Capture(target *scene.Element, pointerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(target).captured[pointerID] = struct{}{}
}

// ReleaseCapture clears a capture. It reports whether the pointer was held.
func (r *Registry) ReleaseCapture(target *scene.Element, pointerID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return false
	}
	if _, held := st.captured[pointerID]; !held {
		return false
	}
	delete(st.captured, pointerID)
	if len(st.down) == 0 && len(st.captured) == 0 {
		delete(r.targets, target)
	}
	return true
}

// CaptureSet returns the pointer IDs currently captured by target.
func (r *Registry) CaptureSet(target *scene.Element) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.targets[target]
	if st == nil {
		return nil
	}
	ids := make([]int64, 0, len(st.captured))
	for id := range st.captured {
		ids = append(ids, id)
	}
	return ids
}

// CaptureTargetOf returns the element capturing pointerID, if any.
func (r *Registry) CaptureTargetOf(pointerID int64) (*scene.Element, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for target, st := range r.targets {
		if _, held := st.captured[pointerID]; held {
			return target, true
		}
	}
	return nil, false
}
