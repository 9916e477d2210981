// Package settings holds per-host configuration for the input engine and
// its YAML persistence: zoom bounds, ink auto-combine policy, hover dwell,
// and the right-click policy.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-mil/mil/pkg/milerr"
)

// CombineMode is a bitmask selecting the containment relations that trigger
// auto-combining a just-consolidated ink with an existing one.
type CombineMode int

const (
	// CombineNone disables auto-combine.
	CombineNone CombineMode = 0
	// CombineContainedWithin combines when every point of the new ink lies
	// inside an existing ink's outline.
	CombineContainedWithin CombineMode = 1 << iota
	// CombineStartsWithin combines when the new ink's first point lies
	// inside an existing ink's outline.
	CombineStartsWithin
	// CombineEndsWithin combines when the new ink's last point lies inside
	// an existing ink's outline.
	CombineEndsWithin
	// CombineAnyPointWithin combines when any point of the new ink lies
	// inside an existing ink's outline.
	CombineAnyPointWithin
)

// String returns a "+"-joined list of the enabled relations.
func (m CombineMode) String() string {
	if m == CombineNone {
		return "none"
	}
	var parts []string
	if m&CombineContainedWithin != 0 {
		parts = append(parts, "contained-within")
	}
	if m&CombineStartsWithin != 0 {
		parts = append(parts, "starts-within")
	}
	if m&CombineEndsWithin != 0 {
		parts = append(parts, "ends-within")
	}
	if m&CombineAnyPointWithin != 0 {
		parts = append(parts, "any-point-within")
	}
	return strings.Join(parts, "+")
}

// ParseCombineMode parses the String form back into a mask.
func ParseCombineMode(s string) (CombineMode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return CombineNone, nil
	}
	var mode CombineMode
	for _, part := range strings.Split(s, "+") {
		switch strings.TrimSpace(part) {
		case "contained-within":
			mode |= CombineContainedWithin
		case "starts-within":
			mode |= CombineStartsWithin
		case "ends-within":
			mode |= CombineEndsWithin
		case "any-point-within":
			mode |= CombineAnyPointWithin
		default:
			return CombineNone, fmt.Errorf("unknown combine mode %q", part)
		}
	}
	return mode, nil
}

// Default values applied by NewSettings.
const (
	DefaultMinZoomLevel = 1.0
	DefaultMaxZoomLevel = 4.0
	DefaultHoverTimeout = 300 * time.Millisecond
)

// Settings is the per-host configuration. One Settings lives for each host
// SVG root.
type Settings struct {
	minZoomLevel             float64
	maxZoomLevel             float64
	inkAutoCombineMode       CombineMode
	hoverTimeout             time.Duration
	isRightMouseClickAllowed bool
}

// NewSettings creates settings with engine defaults.
func NewSettings() *Settings {
	return &Settings{
		minZoomLevel:             DefaultMinZoomLevel,
		maxZoomLevel:             DefaultMaxZoomLevel,
		inkAutoCombineMode:       CombineNone,
		hoverTimeout:             DefaultHoverTimeout,
		isRightMouseClickAllowed: true,
	}
}

// SetZoomLimits sets the host zoom bounds.
func (s *Settings) SetZoomLimits(min, max float64) error {
	const op = "settings.SetZoomLimits"
	if min <= 0 {
		return milerr.InvalidArgument(op, "min zoom %v must be positive", min)
	}
	if max < min {
		return milerr.InvalidArgument(op, "max zoom %v must be >= min zoom %v", max, min)
	}
	s.minZoomLevel = min
	s.maxZoomLevel = max
	return nil
}

// MinZoomLevel returns the minimum zoom factor.
func (s *Settings) MinZoomLevel() float64 {
	return s.minZoomLevel
}

// MaxZoomLevel returns the maximum zoom factor.
func (s *Settings) MaxZoomLevel() float64 {
	return s.maxZoomLevel
}

// SetInkAutoCombineMode selects the auto-combine policy.
func (s *Settings) SetInkAutoCombineMode(mode CombineMode) *Settings {
	s.inkAutoCombineMode = mode
	return s
}

// InkAutoCombineMode returns the auto-combine policy.
func (s *Settings) InkAutoCombineMode() CombineMode {
	return s.inkAutoCombineMode
}

// SetHoverTimeout sets the dwell before a hover pointer goes live.
func (s *Settings) SetHoverTimeout(d time.Duration) error {
	if d < 0 {
		return milerr.InvalidArgument("settings.SetHoverTimeout", "negative dwell %v", d)
	}
	s.hoverTimeout = d
	return nil
}

// HoverTimeout returns the hover dwell.
func (s *Settings) HoverTimeout() time.Duration {
	return s.hoverTimeout
}

// SetRightMouseClickAllowed controls whether secondary-button mouse downs
// enter the engine.
func (s *Settings) SetRightMouseClickAllowed(allowed bool) *Settings {
	s.isRightMouseClickAllowed = allowed
	return s
}

// IsRightMouseClickAllowed reports the right-click policy.
func (s *Settings) IsRightMouseClickAllowed() bool {
	return s.isRightMouseClickAllowed
}
