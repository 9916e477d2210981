package gestures

import (
	"fmt"
	"strings"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/pointer"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/settings"
	"github.com/go-mil/mil/pkg/timing"
)

// maxQueuedEvents bounds the per-target ring buffer of queued down events.
const maxQueuedEvents = 64

// Host owns all gesture state of one SVG root: the registered gestures, the
// pointer registry, queued events awaiting recognition, capture bookkeeping,
// and the timers driving recognition windows and hover dwell.
//
// The host is cooperatively scheduled: ProcessEvent and every handler it
// dispatches must run on a single goroutine, exactly like the event loop the
// engine models. Handlers may re-enter the host (cancel a gesture, add or
// remove gestures, start inks); timer callbacks delivered by the host's
// clock are part of the same loop.
type Host struct {
	svg      *scene.Element
	group    *scene.Element
	clock    timing.Clock
	settings *settings.Settings
	registry *pointer.Registry

	gestures     []*Gesture
	nextOrder    int
	uniqueSuffix int
	groups       map[string]bool

	queues  map[*scene.Element][]events.PointerEvent
	pending map[*scene.Element]*pendingRecognition
	hover   map[int64]*hoverState

	activeByPointer map[int64]*Gesture
}

// pendingRecognition tracks a target whose queued pointers prefix-match at
// least one gesture that needs more pointers or more time.
type pendingRecognition struct {
	gestures []*Gesture
	timer    timing.Timer
}

// hoverState tracks a hover pointer during its dwell.
type hoverState struct {
	target *scene.Element
	last   events.PointerEvent
	timer  timing.Timer
	live   bool
}

// NewHost wires a host around an SVG root element, creating the primary
// transformable group child that inks and gestures attach to.
func NewHost(svg *scene.Element, clock timing.Clock) *Host {
	if clock == nil {
		clock = timing.SystemClock{}
	}
	group := scene.NewGroup()
	group.AddClass("mil-group")
	svg.AppendChild(group)
	return &Host{
		svg:             svg,
		group:           group,
		clock:           clock,
		settings:        settings.NewSettings(),
		registry:        pointer.NewRegistry(),
		groups:          make(map[string]bool),
		queues:          make(map[*scene.Element][]events.PointerEvent),
		pending:         make(map[*scene.Element]*pendingRecognition),
		hover:           make(map[int64]*hoverState),
		activeByPointer: make(map[int64]*Gesture),
	}
}

// SVG returns the host's root element.
func (h *Host) SVG() *scene.Element {
	return h.svg
}

// Group returns the host's primary transformable group.
func (h *Host) Group() *scene.Element {
	return h.group
}

// Clock returns the host's clock.
func (h *Host) Clock() timing.Clock {
	return h.clock
}

// Settings returns the host's settings.
func (h *Host) Settings() *settings.Settings {
	return h.settings
}

// Registry returns the host's pointer registry for read-only queries.
func (h *Host) Registry() *pointer.Registry {
	return h.registry
}

// CreateGesture constructs a gesture, applying the process-wide
// construction defaults unless ignoreDefaults is set.
func (h *Host) CreateGesture(name string, ignoreDefaults bool) *Gesture {
	g := NewGesture(name)
	if !ignoreDefaults {
		Defaults().apply(g)
	}
	if g.target == nil {
		g.target = h.group
	}
	return g
}

// AddGesture registers a gesture with the host. Configuration errors
// deferred by the fluent setters surface here. A name ending in "*" is
// uniquified by replacing the star with a numeric suffix unused on this
// host; any other
// name must be unused.
func (h *Host) AddGesture(g *Gesture) error {
	const op = "gestures.AddGesture"
	if g == nil {
		return milerr.InvalidArgument(op, "nil gesture")
	}
	if err := g.Err(); err != nil {
		return err
	}
	if g.added {
		return milerr.InvalidState(op, "gesture %q is already registered", g.name)
	}
	if g.target == nil {
		return milerr.InvalidSpec(op, "gesture %q has no target", g.name)
	}
	if len(g.permutations) == 0 {
		return milerr.InvalidSpec(op, "gesture %q has no pointer type", g.name)
	}
	if strings.HasSuffix(g.name, "*") {
		base := strings.TrimSuffix(g.name, "*")
		for {
			h.uniqueSuffix++
			candidate := fmt.Sprintf("%s_%d", base, h.uniqueSuffix)
			if h.GetGestureByName(candidate) == nil {
				g.name = candidate
				break
			}
		}
	} else if h.GetGestureByName(g.name) != nil {
		return milerr.InvalidSpec(op, "gesture name %q is already in use", g.name)
	}
	g.host = h
	g.added = true
	g.creationOrder = h.nextOrder
	h.nextOrder++
	h.gestures = append(h.gestures, g)
	return nil
}

// RemoveGestureByName cancels and unregisters the named gesture.
func (h *Host) RemoveGestureByName(name string) bool {
	for i, g := range h.gestures {
		if g.name == name {
			g.Cancel("gesture removed")
			h.gestures = append(h.gestures[:i], h.gestures[i+1:]...)
			g.added = false
			g.host = nil
			return true
		}
	}
	return false
}

// RemoveGesturesByTarget removes every gesture on target, optionally only
// those whose name starts with namePrefix.
func (h *Host) RemoveGesturesByTarget(target *scene.Element, namePrefix string) int {
	removed := 0
	kept := h.gestures[:0]
	for _, g := range h.gestures {
		if g.target == target && strings.HasPrefix(g.name, namePrefix) {
			g.Cancel("gesture removed")
			g.added = false
			g.host = nil
			removed++
			continue
		}
		kept = append(kept, g)
	}
	h.gestures = kept
	return removed
}

// GetGestureByName returns the named gesture, or nil.
func (h *Host) GetGestureByName(name string) *Gesture {
	for _, g := range h.gestures {
		if g.name == name {
			return g
		}
	}
	return nil
}

// ActiveGestureCount returns the number of active gestures on target.
func (h *Host) ActiveGestureCount(target *scene.Element) int {
	count := 0
	for _, g := range h.gestures {
		if g.target == target && g.IsActive() {
			count++
		}
	}
	return count
}

// EnableGestureGroup enables or disables every gesture in the named group.
// Unknown groups default to enabled.
func (h *Host) EnableGestureGroup(name string, enable bool) {
	h.groups[name] = enable
}

// IsGestureGroupEnabled reports whether the named group is enabled.
func (h *Host) IsGestureGroupEnabled(name string) bool {
	enabled, known := h.groups[name]
	return !known || enabled
}

// isRecognizing reports whether g is part of a pending recognition.
func (h *Host) isRecognizing(g *Gesture) bool {
	p := h.pending[g.target]
	if p == nil {
		return false
	}
	for _, pg := range p.gestures {
		if pg == g {
			return true
		}
	}
	return false
}

// unbindPointers drops the gesture's claim on the given pointers and
// releases any captures it took. Called from Gesture.Cancel and from the
// router's end path.
func (h *Host) unbindPointers(g *Gesture, ids []int64) {
	for _, id := range ids {
		if h.activeByPointer[id] == g {
			delete(h.activeByPointer, id)
		}
		if g.capturesPointers {
			h.registry.ReleaseCapture(g.target, id)
		}
	}
}

// ReleaseCapture releases a native capture held by target on pointerID.
func (h *Host) ReleaseCapture(target *scene.Element, pointerID int64) error {
	if !h.registry.ReleaseCapture(target, pointerID) {
		return milerr.InvalidState("gestures.ReleaseCapture", "pointer %d is not captured by %s", pointerID, target)
	}
	return nil
}

// boundGesture returns the active gesture binding pointerID, or nil.
func (h *Host) boundGesture(pointerID int64) *Gesture {
	return h.activeByPointer[pointerID]
}
