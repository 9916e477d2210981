package gestures

import (
	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/scene"
)

// ProcessEvent is the host's single entry point for raw pointer events.
// Hover pointers go through dwell promotion; everything else is routed by
// phase. Events with a zero Time are stamped from the host clock.
func (h *Host) ProcessEvent(target *scene.Element, ev events.PointerEvent) {
	if ev.Time.IsZero() {
		ev.Time = h.clock.Now()
	}
	if ev.Kind == events.KindHover {
		h.processHover(target, ev)
		return
	}
	switch ev.Phase {
	case events.PhaseDown:
		h.processDown(target, ev)
	case events.PhaseMove:
		h.processMove(target, ev)
	case events.PhaseUp:
		h.processUp(target, ev)
	case events.PhaseCancel:
		h.processCancel(target, ev)
	}
}

// processHover promotes a hover pointer to a live pointer after the dwell
// elapses, then routes its traffic like any other pointer. A hover that
// leaves before the dwell fires is forgotten silently.
func (h *Host) processHover(target *scene.Element, ev events.PointerEvent) {
	state := h.hover[ev.PointerID]
	switch ev.Phase {
	case events.PhaseDown, events.PhaseMove:
		if state != nil && state.live {
			move := ev
			move.Phase = events.PhaseMove
			h.processMove(target, move)
			return
		}
		if state == nil {
			state = &hoverState{target: target, last: ev}
			h.hover[ev.PointerID] = state
			dwell := h.settings.HoverTimeout()
			if ev.Phase == events.PhaseDown || dwell <= 0 {
				h.promoteHover(ev.PointerID)
			} else {
				state.timer = h.clock.AfterFunc(dwell, func() {
					h.promoteHover(ev.PointerID)
				})
			}
			return
		}
		state.last = ev
	case events.PhaseUp, events.PhaseCancel:
		if state == nil {
			return
		}
		if state.timer != nil {
			state.timer.Stop()
		}
		delete(h.hover, ev.PointerID)
		if state.live {
			up := ev
			if ev.Phase == events.PhaseUp {
				h.processUp(target, up)
			} else {
				h.processCancel(target, up)
			}
		}
	}
}

// promoteHover synthesizes the down event that makes a dwelling hover
// pointer visible to the recognizer.
func (h *Host) promoteHover(pointerID int64) {
	state := h.hover[pointerID]
	if state == nil || state.live {
		return
	}
	state.live = true
	state.timer = nil
	down := state.last
	down.Phase = events.PhaseDown
	down.Time = h.clock.Now()
	h.processDown(state.target, down)
}

func (h *Host) processDown(target *scene.Element, ev events.PointerEvent) {
	if ev.Kind == events.KindMouse && ev.Buttons&events.ButtonSecondary != 0 &&
		!h.settings.IsRightMouseClickAllowed() {
		debugf("right mouse down on %s suppressed by settings", target)
		return
	}
	h.enqueue(target, ev)
	h.registry.AddPointer(target, ev)
	h.runRecognition(target)
}

func (h *Host) processMove(target *scene.Element, ev events.PointerEvent) {
	owner := h.findOwner(target, ev.PointerID)
	if owner == nil {
		return
	}
	h.registry.UpdatePointer(owner, ev)
	if g := h.boundGesture(ev.PointerID); g != nil && !g.silentOccurrence {
		g.dispatchMove(ev)
	}
}

func (h *Host) processUp(target *scene.Element, ev events.PointerEvent) {
	owner := h.findOwner(target, ev.PointerID)
	if owner == nil {
		return
	}
	g := h.boundGesture(ev.PointerID)
	if g == nil {
		// Give the best full candidate its last chance before the pointer
		// disappears, so short taps are not lost to recognition deferral.
		if got := h.lastChanceRecognition(owner); got != nil && h.boundGesture(ev.PointerID) == got {
			h.endGesture(got, ev)
			return
		}
		h.registry.RemovePointer(owner, ev.PointerID)
		h.dropQueuedFor(owner, []int64{ev.PointerID})
		h.runRecognition(owner)
		return
	}
	h.endGesture(g, ev)
}

func (h *Host) processCancel(target *scene.Element, ev events.PointerEvent) {
	owner := h.findOwner(target, ev.PointerID)
	if owner == nil {
		return
	}
	if g := h.boundGesture(ev.PointerID); g != nil {
		g.Cancel("pointer cancelled by host")
	}
	h.registry.RemovePointer(owner, ev.PointerID)
	h.dropQueuedFor(owner, []int64{ev.PointerID})
}

// endGesture runs the Ending transition: the first bound pointer to lift
// ends the whole instance. Intermediate repeat occurrences end silently and
// arm the repeat-gap timer instead of firing the end handler.
func (h *Host) endGesture(g *Gesture, ev events.PointerEvent) {
	g.stopTimers()
	bound := g.activePointers
	g.activePointers = nil
	g.boundOrdinals = nil
	h.unbindPointers(g, bound)
	h.registry.RemovePointer(g.target, ev.PointerID)
	h.dropQueuedFor(g.target, bound)

	now := h.clock.Now()
	if g.repeatCount > 1 && g.repeatOccurrence < g.repeatCount {
		g.lastOccurrence = now
		gap := g.repeatTimeout
		g.repeatTimer = h.clock.AfterFunc(gap, func() {
			g.repeatTimer = nil
			debugf("%s: repeat abandoned after %v", g, gap)
			g.repeatOccurrence = 0
			h.runRecognition(g.target)
		})
		h.afterEnd(g)
		return
	}

	g.endedTime = now
	g.wasCancelled = false
	g.repeatOccurrence = 0
	g.dispatchEnd(ev.PointerID)
	if g.endedHandler != nil {
		g.endedHandler(g, ev.PointerID)
	}
	h.afterEnd(g)
}

// afterEnd re-runs recognition for gestures that allow downgrading to a
// smaller gesture over the still-down pointers. Downgrading binds
// immediately: the remaining pointers were placed long ago, so deferring
// for a larger gesture's window makes no sense here.
func (h *Host) afterEnd(g *Gesture) {
	if !g.checkForGesturesOnEnd {
		return
	}
	for {
		cand, _ := h.computeMatches(g.target, true)
		if cand == nil {
			return
		}
		h.activate(cand)
	}
}

// findOwner resolves which element's pointer pool an event belongs to:
// the capture target when captured, the event target when live there, or
// the nearest ancestor the pointer was replayed to.
func (h *Host) findOwner(target *scene.Element, pointerID int64) *scene.Element {
	if captureTarget, ok := h.registry.CaptureTargetOf(pointerID); ok {
		return captureTarget
	}
	if _, ok := h.registry.DownEvent(target, pointerID); ok {
		return target
	}
	for _, ancestor := range target.Ancestors() {
		if _, ok := h.registry.DownEvent(ancestor, pointerID); ok {
			return ancestor
		}
	}
	return nil
}

// enqueue appends a down event to the target's ring buffer, dropping the
// oldest entry when full.
func (h *Host) enqueue(target *scene.Element, ev events.PointerEvent) {
	queue := h.queues[target]
	if len(queue) >= maxQueuedEvents {
		queue = queue[1:]
	}
	h.queues[target] = append(queue, ev)
}

// dropQueuedFor removes queued events carrying any of the given pointers.
// Events bound by an active gesture never reach the ancestor chain.
func (h *Host) dropQueuedFor(target *scene.Element, ids []int64) {
	queue := h.queues[target]
	if len(queue) == 0 {
		return
	}
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := queue[:0]
	for _, ev := range queue {
		if !drop[ev.PointerID] {
			kept = append(kept, ev)
		}
	}
	if len(kept) == 0 {
		delete(h.queues, target)
		return
	}
	h.queues[target] = kept
}

// replayQueue forwards the target's queued, unclaimed down events to the
// parent chain so ancestor gestures may match them. The replayed pointers
// leave this target's pool.
func (h *Host) replayQueue(target *scene.Element) {
	queue := h.queues[target]
	if len(queue) == 0 {
		return
	}
	delete(h.queues, target)
	parent := target.Parent()
	for _, ev := range queue {
		if h.boundGesture(ev.PointerID) != nil {
			continue
		}
		h.registry.RemovePointer(target, ev.PointerID)
		if parent == nil {
			debugf("pointer %d dropped: no gesture matched and %s has no parent", ev.PointerID, target)
			continue
		}
		debugf("replaying pointer %d from %s to %s", ev.PointerID, target, parent)
		h.ProcessEvent(parent, ev)
	}
}
