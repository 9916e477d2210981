// Package script loads and replays recorded pointer-event scripts against
// an input-engine host on a manual clock.
package script

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/ink"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/settings"
	"github.com/go-mil/mil/pkg/timing"
)

// Script is the YAML shape of a replay: gesture specifications plus a
// timeline of pointer events.
type Script struct {
	Name        string        `yaml:"name"`
	AutoCombine string        `yaml:"autoCombine"`
	Gestures    []GestureSpec `yaml:"gestures"`
	Events      []Event       `yaml:"events"`
}

// GestureSpec declares one gesture to register before the replay.
type GestureSpec struct {
	Name                 string `yaml:"name"`
	PointerType          string `yaml:"pointerType"`
	Group                string `yaml:"group"`
	Exclusive            bool   `yaml:"exclusive"`
	CheckOnEnd           bool   `yaml:"checkOnEnd"`
	RecognitionTimeoutMs int    `yaml:"recognitionTimeoutMs"`
	CompletionTimeoutMs  int    `yaml:"completionTimeoutMs"`
	RepeatCount          int    `yaml:"repeatCount"`
	RepeatTimeoutMs      int    `yaml:"repeatTimeoutMs"`
	Ink                  bool   `yaml:"ink"`
	HullType             string `yaml:"hullType"`
}

// Event is one timeline entry.
type Event struct {
	Pointer int64   `yaml:"pointer"`
	Kind    string  `yaml:"kind"`
	Phase   string  `yaml:"phase"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	AtMs    int     `yaml:"atMs"`
}

// Load reads a script from a YAML file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if len(s.Events) == 0 {
		return nil, fmt.Errorf("script %s has no events", path)
	}
	return &s, nil
}

func parsePhase(name string) (events.Phase, error) {
	switch name {
	case "down":
		return events.PhaseDown, nil
	case "move":
		return events.PhaseMove, nil
	case "up":
		return events.PhaseUp, nil
	case "cancel":
		return events.PhaseCancel, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", name)
	}
}

func parseHullType(name string) ink.HullType {
	switch name {
	case "concave":
		return ink.HullConcave
	case "convex":
		return ink.HullConvex
	default:
		return ink.HullNone
	}
}

// Replay registers the script's gestures on a fresh host and feeds the
// event timeline through a manual clock, logging every lifecycle
// transition to out.
func Replay(s *Script, out io.Writer) error {
	clock := timing.NewManual(time.Unix(0, 0))
	start := clock.Now()
	host := gestures.NewHost(scene.NewSVG(), clock)
	defer ink.DropArena(host)

	if s.AutoCombine != "" {
		mode, err := settings.ParseCombineMode(s.AutoCombine)
		if err != nil {
			return err
		}
		host.Settings().SetInkAutoCombineMode(mode)
	}

	logf := func(format string, args ...any) {
		elapsed := clock.Now().Sub(start).Milliseconds()
		fmt.Fprintf(out, "t=%4dms  %s\n", elapsed, fmt.Sprintf(format, args...))
	}

	for _, spec := range s.Gestures {
		spec := spec
		g := host.CreateGesture(spec.Name, true).
			SetTarget(host.Group()).
			SetPointerType(spec.PointerType).
			SetExclusive(spec.Exclusive).
			SetCheckForGesturesOnEnd(spec.CheckOnEnd).
			SetStartedHandler(func(g *gestures.Gesture) {
				logf("started   %s  pointers=%v", g.Name(), g.ActivePointerIDs())
				if spec.Ink {
					stroke := ink.New(g, "{P1}").SetHullType(parseHullType(spec.HullType))
					if err := stroke.Start(); err != nil {
						logf("ink error %s: %v", g.Name(), err)
					}
				}
			}).
			SetEndedHandler(func(g *gestures.Gesture, lifted int64) {
				logf("ended     %s  lifted=%d", g.Name(), lifted)
			}).
			SetCancelledHandler(func(g *gestures.Gesture, reason string) {
				logf("cancelled %s  reason=%q", g.Name(), reason)
			})
		if spec.Group != "" {
			g.SetGroupName(spec.Group)
		}
		if spec.RecognitionTimeoutMs > 0 {
			g.SetRecognitionTimeout(time.Duration(spec.RecognitionTimeoutMs) * time.Millisecond)
		}
		if spec.CompletionTimeoutMs > 0 {
			g.SetCompletionTimeout(time.Duration(spec.CompletionTimeoutMs) * time.Millisecond)
		}
		if spec.RepeatCount > 1 {
			g.SetRepeatCount(spec.RepeatCount)
			if spec.RepeatTimeoutMs > 0 {
				g.SetRepeatTimeout(time.Duration(spec.RepeatTimeoutMs) * time.Millisecond)
			}
		}
		if err := host.AddGesture(g); err != nil {
			return fmt.Errorf("gesture %q: %w", spec.Name, err)
		}
	}

	timeline := make([]Event, len(s.Events))
	copy(timeline, s.Events)
	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].AtMs < timeline[j].AtMs })

	elapsed := 0
	for _, ev := range timeline {
		if ev.AtMs > elapsed {
			clock.Advance(time.Duration(ev.AtMs-elapsed) * time.Millisecond)
			elapsed = ev.AtMs
		}
		kind := events.ParseKind(ev.Kind)
		if kind == events.KindUnknown || kind == events.KindAny {
			return fmt.Errorf("event at %dms: unknown kind %q", ev.AtMs, ev.Kind)
		}
		phase, err := parsePhase(ev.Phase)
		if err != nil {
			return fmt.Errorf("event at %dms: %w", ev.AtMs, err)
		}
		host.ProcessEvent(host.Group(), events.PointerEvent{
			PointerID: ev.Pointer,
			Kind:      kind,
			Phase:     phase,
			Position:  geometry.Point{X: ev.X, Y: ev.Y},
			Buttons:   events.ButtonPrimary,
			Pressure:  0.5,
		})
	}

	// Flush outstanding timers (completion, repeat, fades).
	clock.Advance(5 * time.Second)

	if n := ink.ArenaFor(host).Count(); n > 0 {
		logf("inks      %d stroke(s) live", n)
	}
	return nil
}
