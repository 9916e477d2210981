package ink

import (
	"sync"

	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/scene"
)

// Arena indexes every live ink of one host by ID and maps composite path
// and hull elements back to their ink, so scene elements carry no
// reference to an ink. A gesture reaches its latest ink only through the
// gestures.InkHandle interface.
type Arena struct {
	inks    map[string]*Ink
	order   []string
	byPath  map[int64]string
	byHull  map[int64]string
}

func newArena() *Arena {
	return &Arena{
		inks:   make(map[string]*Ink),
		byPath: make(map[int64]string),
		byHull: make(map[int64]string),
	}
}

var (
	arenasMu sync.Mutex
	arenas   = map[*gestures.Host]*Arena{}
)

// ArenaFor returns the ink arena of a host, creating it on first use.
func ArenaFor(host *gestures.Host) *Arena {
	arenasMu.Lock()
	defer arenasMu.Unlock()
	a := arenas[host]
	if a == nil {
		a = newArena()
		arenas[host] = a
	}
	return a
}

// DropArena forgets a host's arena. Call when tearing a host down.
func DropArena(host *gestures.Host) {
	arenasMu.Lock()
	defer arenasMu.Unlock()
	delete(arenas, host)
}

func (a *Arena) add(ink *Ink) {
	a.inks[ink.id] = ink
	a.order = append(a.order, ink.id)
}

func (a *Arena) remove(ink *Ink) {
	delete(a.inks, ink.id)
	for i, id := range a.order {
		if id == ink.id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	if ink.pathElement != nil {
		delete(a.byPath, ink.pathElement.ID())
	}
	if ink.hullElement != nil {
		delete(a.byHull, ink.hullElement.ID())
	}
}

func (a *Arena) indexPath(ink *Ink) {
	if ink.pathElement != nil {
		a.byPath[ink.pathElement.ID()] = ink.id
	}
	if ink.hullElement != nil {
		a.byHull[ink.hullElement.ID()] = ink.id
	}
}

// ByID returns the ink with the given ID, or nil.
func (a *Arena) ByID(id string) *Ink {
	return a.inks[id]
}

// ByElement resolves a composite path or hull element back to its ink.
func (a *Arena) ByElement(e *scene.Element) *Ink {
	if e == nil {
		return nil
	}
	if id, ok := a.byPath[e.ID()]; ok {
		return a.inks[id]
	}
	if id, ok := a.byHull[e.ID()]; ok {
		return a.inks[id]
	}
	return nil
}

// All returns the live inks in creation order.
func (a *Arena) All() []*Ink {
	out := make([]*Ink, 0, len(a.order))
	for _, id := range a.order {
		if ink := a.inks[id]; ink != nil {
			out = append(out, ink)
		}
	}
	return out
}

// Count returns the number of live inks.
func (a *Arena) Count() int {
	return len(a.inks)
}
