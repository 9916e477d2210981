// Package mil provides the main entry point for hosting the multi-modal
// input engine on an SVG root: host registration, per-host settings, and
// lookup of the engine pieces behind one facade.
package mil

import (
	"sync"

	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/ink"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/settings"
	"github.com/go-mil/mil/pkg/timing"
)

var (
	hostsMu sync.Mutex
	hosts   = map[*scene.Element]*gestures.Host{}
)

// Initialize wires the engine onto an SVG root and returns its primary
// transformable group element. Initializing an already-initialized root is
// an error.
func Initialize(svg *scene.Element) (*scene.Element, error) {
	return InitializeWithClock(svg, timing.SystemClock{})
}

// InitializeWithClock is Initialize with an explicit clock, so timers can be
// driven manually (for example with timing.Manual).
func InitializeWithClock(svg *scene.Element, clock timing.Clock) (*scene.Element, error) {
	const op = "mil.Initialize"
	if svg == nil {
		return nil, milerr.InvalidArgument(op, "nil svg root")
	}
	hostsMu.Lock()
	defer hostsMu.Unlock()
	if _, exists := hosts[svg]; exists {
		return nil, milerr.InvalidState(op, "svg root %s is already initialized", svg)
	}
	h := gestures.NewHost(svg, clock)
	hosts[svg] = h
	return h.Group(), nil
}

// HostOf returns the host bound to an initialized SVG root, or nil.
func HostOf(svg *scene.Element) *gestures.Host {
	hostsMu.Lock()
	defer hostsMu.Unlock()
	return hosts[svg]
}

// SettingsOf returns the settings of an initialized SVG root, or nil.
func SettingsOf(svg *scene.Element) *settings.Settings {
	if h := HostOf(svg); h != nil {
		return h.Settings()
	}
	return nil
}

// RemoveHost tears the engine down for an SVG root: the ink arena is
// dropped and the host group detached.
func RemoveHost(svg *scene.Element) error {
	hostsMu.Lock()
	h := hosts[svg]
	delete(hosts, svg)
	hostsMu.Unlock()
	if h == nil {
		return milerr.InvalidState("mil.RemoveHost", "svg root %s is not initialized", svg)
	}
	ink.DropArena(h)
	h.Group().Remove()
	return nil
}
