package gestures

import (
	"sort"
	"time"

	"github.com/go-mil/mil/pkg/scene"
)

// candidate is a gesture whose permutation can be fully bound right now.
type candidate struct {
	gesture   *Gesture
	permIndex int
	ordinals  []Ordinal
	ids       []int64
}

// partial is a gesture that could still complete: every unbound live pointer
// fits into one of its permutations with slots left over, and the
// recognition window has not yet closed.
type partial struct {
	gesture  *Gesture
	deadline time.Time
	hasLimit bool
}

// outranks reports whether gesture a beats gesture b: exclusive gestures
// outrank non-exclusive ones on the same target, then earlier creation
// order wins.
func outranks(a, b *Gesture) bool {
	if a.isExclusive != b.isExclusive {
		return a.isExclusive
	}
	return a.creationOrder < b.creationOrder
}

// runRecognition drives the matching loop for a target: activate every
// candidate that no still-possible partial outranks, then either arm the
// recognition-window timer for the surviving partials or replay the queued
// events up the ancestor chain.
func (h *Host) runRecognition(target *scene.Element) {
	tried := map[*Gesture]bool{}
	for {
		cand, partials := h.computeMatches(target, false)
		if cand == nil {
			h.settlePending(target, partials)
			return
		}
		// A started handler that synchronously cancels its own gesture
		// would otherwise re-match forever.
		if tried[cand.gesture] {
			h.settlePending(target, partials)
			return
		}
		tried[cand.gesture] = true
		blocked := false
		for _, p := range partials {
			// A gesture's own larger permutation also defers its smaller
			// one, so "pen|touch+touch" waits for the third pointer.
			if p.gesture == cand.gesture || outranks(p.gesture, cand.gesture) {
				blocked = true
				break
			}
		}
		if blocked {
			debugf("%s deferred: larger gesture still recognizing on %s", cand.gesture, target)
			h.settlePending(target, partials)
			return
		}
		h.activate(cand)
	}
}

// lastChanceRecognition runs when an unbound pointer is about to lift:
// deferral no longer makes sense, so the best full candidate (if any)
// activates immediately and the up is delivered to it.
func (h *Host) lastChanceRecognition(target *scene.Element) *Gesture {
	cand, _ := h.computeMatches(target, true)
	if cand == nil {
		return nil
	}
	h.activate(cand)
	return cand.gesture
}

// settlePending arms or clears the pending-recognition state for target.
// With no partials left, queued events replay to the ancestor chain.
func (h *Host) settlePending(target *scene.Element, partials []partial) {
	if p := h.pending[target]; p != nil && p.timer != nil {
		p.timer.Stop()
	}
	delete(h.pending, target)

	if len(partials) == 0 {
		h.replayQueue(target)
		return
	}

	state := &pendingRecognition{}
	earliest := time.Time{}
	haveDeadline := false
	for _, p := range partials {
		state.gestures = append(state.gestures, p.gesture)
		if p.hasLimit && (!haveDeadline || p.deadline.Before(earliest)) {
			earliest = p.deadline
			haveDeadline = true
		}
	}
	if haveDeadline {
		delay := earliest.Sub(h.clock.Now())
		if delay < 0 {
			delay = 0
		}
		state.timer = h.clock.AfterFunc(delay, func() {
			delete(h.pending, target)
			h.runRecognition(target)
		})
	}
	h.pending[target] = state
}

// computeMatches scans the registered gestures for target and splits them
// into the best full candidate and the list of still-possible partials.
// On the last-chance path partial bookkeeping is skipped entirely.
func (h *Host) computeMatches(target *scene.Element, lastChance bool) (*candidate, []partial) {
	live := h.registry.LivePointers(target)
	var unbound []int64
	for _, id := range live {
		if h.activeByPointer[id] == nil {
			unbound = append(unbound, id)
		}
	}
	if len(unbound) == 0 {
		return nil, nil
	}

	exclusiveActive := false
	for _, g := range h.gestures {
		if g.target == target && g.IsActive() && g.isExclusive {
			exclusiveActive = true
			break
		}
	}

	var best *candidate
	var partials []partial
	for _, g := range h.gestures {
		if g.target != target || !g.isEnabled || g.IsActive() {
			continue
		}
		if !h.IsGestureGroupEnabled(g.groupName) {
			continue
		}
		if g.isExclusive && exclusiveActive {
			continue
		}
		if cand := h.fullMatch(g, unbound, lastChance); cand != nil {
			if best == nil || outranks(g, best.gesture) {
				best = cand
			}
			continue
		}
		if lastChance {
			continue
		}
		if p, ok := h.partialMatch(g, unbound); ok {
			partials = append(partials, p)
		}
	}
	return best, partials
}

// fullMatch tries to bind a complete permutation of g from the unbound
// pool, preferring permutations that consume more pointers. In normal
// recognition the window runs from the first-placed pointer to now; on the
// last-chance and downgrade paths only the arrival span of the assigned
// pointers is checked, since those pointers were placed while a different
// gesture held them. The conditional predicate has the final say.
func (h *Host) fullMatch(g *Gesture, unbound []int64, lastChance bool) *candidate {
	order := make([]int, len(g.permutations))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return g.permutations[order[a]].PointerCount() > g.permutations[order[b]].PointerCount()
	})

	for _, permIndex := range order {
		perm := g.permutations[permIndex]
		ids, ok := h.assignSlots(g.target, perm, unbound)
		if !ok {
			continue
		}
		if g.recognitionTimeout > 0 {
			var elapsed time.Duration
			if lastChance {
				elapsed = h.arrivalSpan(g.target, ids)
			} else if first, ok := h.earliestDown(g.target, ids); ok {
				elapsed = h.clock.Now().Sub(first)
			}
			if elapsed > g.recognitionTimeout {
				debugf("%s: permutation %s exceeded recognition window", g, perm)
				continue
			}
		}
		cand := &candidate{gesture: g, permIndex: permIndex, ordinals: perm.Ordinals, ids: ids}
		if !h.checkConditional(g, cand) {
			debugf("%s: conditional declined", g)
			continue
		}
		return cand
	}
	return nil
}

// assignSlots fills the permutation's slots from the unbound pool, earliest
// arrival first. Returned ids align with perm.Ordinals.
func (h *Host) assignSlots(target *scene.Element, perm Permutation, unbound []int64) ([]int64, bool) {
	used := make(map[int64]bool, len(unbound))
	ids := make([]int64, 0, len(perm.Ordinals))
	for _, slot := range perm.Ordinals {
		filled := false
		for _, id := range unbound {
			if used[id] {
				continue
			}
			ev, ok := h.registry.DownEvent(target, id)
			if !ok || !slot.Matches(ev.Kind) {
				continue
			}
			used[id] = true
			ids = append(ids, id)
			filled = true
			break
		}
		if !filled {
			return nil, false
		}
	}
	return ids, true
}

// partialMatch reports whether every unbound pointer fits into one of g's
// permutations with slots left unfilled, and the recognition window still
// has room for the missing pointers.
func (h *Host) partialMatch(g *Gesture, unbound []int64) (partial, bool) {
	now := h.clock.Now()
	for _, perm := range g.permutations {
		if perm.PointerCount() <= len(unbound) {
			continue
		}
		if !h.prefixFits(g.target, perm, unbound) {
			continue
		}
		first, ok := h.earliestDown(g.target, unbound)
		if !ok {
			continue
		}
		if g.recognitionTimeout <= 0 {
			return partial{gesture: g}, true
		}
		deadline := first.Add(g.recognitionTimeout)
		if !now.Before(deadline) {
			continue
		}
		return partial{gesture: g, deadline: deadline, hasLimit: true}, true
	}
	return partial{}, false
}

// prefixFits checks that every unbound pointer can occupy a distinct slot
// of perm.
func (h *Host) prefixFits(target *scene.Element, perm Permutation, unbound []int64) bool {
	usedSlot := make([]bool, len(perm.Ordinals))
	for _, id := range unbound {
		ev, ok := h.registry.DownEvent(target, id)
		if !ok {
			return false
		}
		placed := false
		for i, slot := range perm.Ordinals {
			if usedSlot[i] || !slot.Matches(ev.Kind) {
				continue
			}
			usedSlot[i] = true
			placed = true
			break
		}
		if !placed {
			return false
		}
	}
	return true
}

// arrivalSpan returns the spread between the earliest and latest down times
// of the assigned pointers.
func (h *Host) arrivalSpan(target *scene.Element, ids []int64) time.Duration {
	var earliest, latest time.Time
	for i, id := range ids {
		ev, ok := h.registry.DownEvent(target, id)
		if !ok {
			continue
		}
		if i == 0 || ev.Time.Before(earliest) {
			earliest = ev.Time
		}
		if i == 0 || ev.Time.After(latest) {
			latest = ev.Time
		}
	}
	return latest.Sub(earliest)
}

// earliestDown returns the earliest down time among the given pointers.
func (h *Host) earliestDown(target *scene.Element, ids []int64) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, id := range ids {
		ev, ok := h.registry.DownEvent(target, id)
		if !ok {
			continue
		}
		if !found || ev.Time.Before(earliest) {
			earliest = ev.Time
			found = true
		}
	}
	return earliest, found
}

// checkConditional binds the candidate state long enough for the predicate
// to query pointers, treating a panic as a veto.
func (h *Host) checkConditional(g *Gesture, cand *candidate) (ok bool) {
	if g.conditional == nil {
		return true
	}
	g.activePointers = cand.ids
	g.boundOrdinals = cand.ordinals
	g.permutationIndex = cand.permIndex
	defer func() {
		g.activePointers = nil
		g.boundOrdinals = nil
		if r := recover(); r != nil {
			warnf("%s: conditional panicked: %v", g, r)
			ok = false
		}
	}()
	return g.conditional(g)
}

// activate binds a candidate as the gesture's live instance: pointers
// claimed, capture taken, repeat accounting advanced, the started handler
// fired, and the completion timer armed.
func (h *Host) activate(cand *candidate) {
	g := cand.gesture
	now := h.clock.Now()

	g.activePointers = cand.ids
	g.boundOrdinals = cand.ordinals
	g.permutationIndex = cand.permIndex
	g.startedTime = now
	g.endedTime = time.Time{}
	g.wasCancelled = false

	for _, id := range cand.ids {
		h.activeByPointer[id] = g
		if g.capturesPointers {
			h.registry.Capture(g.target, id)
		}
	}
	h.dropQueuedFor(g.target, cand.ids)
	if !g.allowEventPropagation {
		delete(h.queues, g.target)
	}

	if g.repeatCount > 1 {
		if g.repeatTimer != nil {
			g.repeatTimer.Stop()
			g.repeatTimer = nil
		}
		if g.repeatOccurrence > 0 && now.Sub(g.lastOccurrence) > g.repeatTimeout {
			g.repeatOccurrence = 0
		}
		g.repeatOccurrence++
		g.lastOccurrence = now
		g.silentOccurrence = g.repeatOccurrence < g.repeatCount
	} else {
		g.silentOccurrence = false
	}

	debugf("%s active: permutation %s pointers %v", g, Permutation{Ordinals: cand.ordinals}, cand.ids)
	if !g.silentOccurrence && g.startedHandler != nil {
		g.startedHandler(g)
	}

	if g.IsActive() && g.completionTimeout > 0 {
		timeout := g.completionTimeout
		g.completionTimer = h.clock.AfterFunc(timeout, func() {
			g.completionTimer = nil
			g.Cancel("completion timeout of " + timeout.String() + " exceeded")
			h.runRecognition(g.target)
		})
	}
}
