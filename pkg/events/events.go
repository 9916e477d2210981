// Package events defines the pointer event model routed through the input
// engine: pointer kinds (pen, touch, mouse, hover), event phases, and the
// raw event struct delivered by the host embedder.
package events

import (
	"strings"
	"time"

	"github.com/go-mil/mil/pkg/geometry"
)

// PointerKind identifies the class of input contact behind a pointer.
type PointerKind int

const (
	// KindUnknown indicates a kind that could not be determined.
	KindUnknown PointerKind = iota
	// KindPen indicates a stylus contact.
	KindPen
	// KindTouch indicates a finger contact.
	KindTouch
	// KindMouse indicates a mouse button contact.
	KindMouse
	// KindHover indicates a pen or mouse hovering without contact.
	KindHover
	// KindAny matches every kind. It is only legal inside pointer-type
	// expressions, never on a live pointer.
	KindAny
)

// String returns the lowercase expression-syntax name of the kind.
func (k PointerKind) String() string {
	switch k {
	case KindPen:
		return "pen"
	case KindTouch:
		return "touch"
	case KindMouse:
		return "mouse"
	case KindHover:
		return "hover"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// ParseKind maps a case-insensitive kind name onto a PointerKind.
// Unrecognized names return KindUnknown.
func ParseKind(name string) PointerKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pen":
		return KindPen
	case "touch":
		return KindTouch
	case "mouse":
		return KindMouse
	case "hover":
		return KindHover
	case "any":
		return KindAny
	default:
		return KindUnknown
	}
}

// Phase represents the phase of a pointer event.
type Phase int

const (
	// PhaseDown indicates the pointer made contact with the surface.
	PhaseDown Phase = iota
	// PhaseMove indicates the pointer moved while in contact.
	PhaseMove
	// PhaseUp indicates the pointer lifted from the surface.
	PhaseUp
	// PhaseCancel indicates the pointer interaction was cancelled by the host.
	PhaseCancel
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	case PhaseCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Button bits reported in PointerEvent.Buttons, matching the browser
// pointer-event button mask.
const (
	// ButtonPrimary is the left mouse button, pen tip, or touch contact.
	ButtonPrimary = 1 << 0
	// ButtonSecondary is the right mouse button or pen barrel button.
	ButtonSecondary = 1 << 1
	// ButtonAuxiliary is the middle mouse button.
	ButtonAuxiliary = 1 << 2
	// ButtonEraser is the pen eraser.
	ButtonEraser = 1 << 5
)

// PointerEvent represents a raw pointer event arriving at a scene element.
type PointerEvent struct {
	// PointerID uniquely identifies the contact for its lifetime.
	PointerID int64
	// Kind is the class of contact.
	Kind PointerKind
	// Phase is the event phase.
	Phase Phase
	// Position is the pointer location in screen coordinates.
	Position geometry.Point
	// Buttons is the depressed-button mask at event time.
	Buttons int
	// Pressure is the normalized pen pressure in [0, 1]; 0.5 for contacts
	// without pressure support.
	Pressure float64
	// Time is the host timestamp of the event.
	Time time.Time
}

// IsEraser reports whether the event was produced with the pen eraser.
func (e PointerEvent) IsEraser() bool {
	return e.Kind == KindPen && e.Buttons&ButtonEraser != 0
}
