package gestures

import (
	"sync"
	"time"

	"github.com/go-mil/mil/pkg/scene"
)

// Engine defaults applied at gesture construction.
const (
	// DefaultRecognitionTimeout is the window within which every pointer of
	// a multi-pointer gesture must be observed.
	DefaultRecognitionTimeout = 150 * time.Millisecond
	// DefaultRepeatTimeout is the maximum gap between repeat occurrences.
	DefaultRepeatTimeout = 250 * time.Millisecond
)

// GestureDefaults holds the process-wide construction defaults consulted by
// Host.CreateGesture. It is safe for concurrent use.
type GestureDefaults struct {
	mu                 sync.Mutex
	target             *scene.Element
	startedHandler     StartedHandler
	endedHandler       EndedHandler
	cancelledHandler   CancelledHandler
	groupName          string
	recognitionTimeout time.Duration
}

var processDefaults = &GestureDefaults{recognitionTimeout: DefaultRecognitionTimeout}

// Defaults returns the process-wide gesture construction defaults.
func Defaults() *GestureDefaults {
	return processDefaults
}

// SetTarget sets the default target element.
func (d *GestureDefaults) SetTarget(target *scene.Element) *GestureDefaults {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = target
	return d
}

// SetStartedHandler sets the default started handler.
func (d *GestureDefaults) SetStartedHandler(fn StartedHandler) *GestureDefaults {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startedHandler = fn
	return d
}

// SetEndedHandler sets the default ended handler.
func (d *GestureDefaults) SetEndedHandler(fn EndedHandler) *GestureDefaults {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endedHandler = fn
	return d
}

// SetCancelledHandler sets the default cancelled handler.
func (d *GestureDefaults) SetCancelledHandler(fn CancelledHandler) *GestureDefaults {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelledHandler = fn
	return d
}

// SetGroupName sets the default gesture group.
func (d *GestureDefaults) SetGroupName(name string) *GestureDefaults {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groupName = name
	return d
}

// SetRecognitionTimeout sets the default recognition window.
func (d *GestureDefaults) SetRecognitionTimeout(timeout time.Duration) *GestureDefaults {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recognitionTimeout = timeout
	return d
}

// Reset restores the built-in defaults. Tests use this to keep process
// state from leaking between cases.
func (d *GestureDefaults) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = nil
	d.startedHandler = nil
	d.endedHandler = nil
	d.cancelledHandler = nil
	d.groupName = ""
	d.recognitionTimeout = DefaultRecognitionTimeout
}

// apply copies the defaults onto a freshly constructed gesture.
func (d *GestureDefaults) apply(g *Gesture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g.target = d.target
	g.startedHandler = d.startedHandler
	g.endedHandler = d.endedHandler
	g.cancelledHandler = d.cancelledHandler
	g.groupName = d.groupName
	g.recognitionTimeout = d.recognitionTimeout
}
