package gestures

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/timing"
)

// State describes where a gesture currently is in its lifecycle.
type State int

const (
	// StatePending means the spec is registered but no pointers are bound.
	StatePending State = iota
	// StateRecognizing means pointers are queued on the gesture's target and
	// at least one of this gesture's permutations prefix-matches them.
	StateRecognizing
	// StateActive means every slot of a permutation is bound and the started
	// handler has been dispatched (or suppressed by an intermediate repeat
	// occurrence).
	StateActive
)

func (s State) String() string {
	switch s {
	case StateRecognizing:
		return "recognizing"
	case StateActive:
		return "active"
	default:
		return "pending"
	}
}

// CompletionTimeoutInfinite disables the completion timer.
const CompletionTimeoutInfinite = time.Duration(-1)

// Handler types. The gesture is passed explicitly; handlers never rely on a
// dispatcher-controlled receiver.
type (
	// StartedHandler runs when the gesture becomes active.
	StartedHandler func(g *Gesture)
	// EndedHandler runs when the first bound pointer lifts.
	EndedHandler func(g *Gesture, liftedPointerID int64)
	// CancelledHandler runs when the gesture is cancelled, with the reason.
	CancelledHandler func(g *Gesture, reason string)
	// MoveHandler runs for every move of a bound pointer while active.
	MoveHandler func(g *Gesture, ev events.PointerEvent)
	// Conditional vetoes recognition when it returns false. A panicking
	// conditional is treated as false.
	Conditional func(g *Gesture) bool
)

// InkHandle is the hook the ink engine registers on its parent gesture so
// cancellation tears the open stroke down without the gesture package
// depending on the ink package.
type InkHandle interface {
	// Cancel aborts the open stroke.
	Cancel() error
	// IsOpen reports whether the stroke is still accumulating points.
	IsOpen() bool
}

// Gesture is a declarative gesture specification plus the runtime state of
// its single in-flight instance. Setters are chainable; configuration errors
// are deferred and surfaced by Host.AddGesture.
type Gesture struct {
	name                  string
	target                *scene.Element
	expression            string
	permutations          []Permutation
	conditional           Conditional
	groupName             string
	isExclusive           bool
	isEnabled             bool
	recognitionTimeout    time.Duration
	completionTimeout     time.Duration
	repeatCount           int
	repeatTimeout         time.Duration
	capturesPointers      bool
	allowEventPropagation bool
	checkForGesturesOnEnd bool

	startedHandler   StartedHandler
	endedHandler     EndedHandler
	cancelledHandler CancelledHandler
	moveHandler      MoveHandler

	deferredErr error

	// Runtime state, owned by the host's event loop.
	host             *Host
	added            bool
	creationOrder    int
	activePointers   []int64
	boundOrdinals    []Ordinal
	permutationIndex int
	startedTime      time.Time
	endedTime        time.Time
	wasCancelled     bool
	repeatOccurrence int
	lastOccurrence   time.Time
	completionTimer  timing.Timer
	repeatTimer      timing.Timer
	currentInk       InkHandle
	moveObservers    map[int]func(*Gesture, events.PointerEvent)
	endObservers     map[int]func(*Gesture, int64)
	nextObserverID   int
	silentOccurrence bool
}

// NewGesture creates an unregistered gesture with engine defaults. Most
// callers go through Host.CreateGesture so process-wide defaults apply.
func NewGesture(name string) *Gesture {
	return &Gesture{
		name:                  name,
		isEnabled:             true,
		recognitionTimeout:    DefaultRecognitionTimeout,
		completionTimeout:     CompletionTimeoutInfinite,
		repeatTimeout:         DefaultRepeatTimeout,
		capturesPointers:      true,
		allowEventPropagation: true,
		moveObservers:         make(map[int]func(*Gesture, events.PointerEvent)),
		endObservers:          make(map[int]func(*Gesture, int64)),
	}
}

func (g *Gesture) recordErr(err error) *Gesture {
	if g.deferredErr == nil && err != nil {
		g.deferredErr = err
	}
	return g
}

// Err returns the first configuration error recorded by a setter.
func (g *Gesture) Err() error {
	return g.deferredErr
}

// Name returns the gesture's (possibly uniquified) name.
func (g *Gesture) Name() string {
	return g.name
}

// SetTarget sets the element whose events this gesture matches.
func (g *Gesture) SetTarget(target *scene.Element) *Gesture {
	if g.added {
		return g.recordErr(milerr.InvalidSpec("gestures.SetTarget", "gesture %q: target is immutable once added", g.name))
	}
	g.target = target
	return g
}

// Target returns the gesture's target element.
func (g *Gesture) Target() *scene.Element {
	return g.target
}

// SetPointerType compiles and installs the pointer-type expression.
func (g *Gesture) SetPointerType(expression string) *Gesture {
	if g.added {
		return g.recordErr(milerr.InvalidSpec("gestures.SetPointerType", "gesture %q: pointer type is immutable once added", g.name))
	}
	perms, err := CompileExpression(expression)
	if err != nil {
		return g.recordErr(err)
	}
	g.expression = expression
	g.permutations = perms
	return g
}

// PointerType returns the raw pointer-type expression.
func (g *Gesture) PointerType() string {
	return g.expression
}

// Permutations returns the compiled permutations of the pointer type.
func (g *Gesture) Permutations() []Permutation {
	return g.permutations
}

// SetConditional installs a predicate consulted at recognition time.
func (g *Gesture) SetConditional(fn Conditional) *Gesture {
	g.conditional = fn
	return g
}

// SetGroupName assigns the gesture to a named enable/disable group.
func (g *Gesture) SetGroupName(name string) *Gesture {
	g.groupName = name
	return g
}

// GroupName returns the gesture's group, or "" when ungrouped.
func (g *Gesture) GroupName() string {
	return g.groupName
}

// SetExclusive marks the gesture as exclusive on its target.
func (g *Gesture) SetExclusive(exclusive bool) *Gesture {
	g.isExclusive = exclusive
	return g
}

// IsExclusive reports the exclusivity flag.
func (g *Gesture) IsExclusive() bool {
	return g.isExclusive
}

// SetEnabled enables or disables the gesture.
func (g *Gesture) SetEnabled(enabled bool) *Gesture {
	g.isEnabled = enabled
	return g
}

// IsEnabled reports whether the gesture itself is enabled. Group enablement
// is consulted separately by the recognizer.
func (g *Gesture) IsEnabled() bool {
	return g.isEnabled
}

// SetRecognitionTimeout sets the window within which every required pointer
// must be observed, measured from the first-placed pointer. Zero disables
// the window.
func (g *Gesture) SetRecognitionTimeout(d time.Duration) *Gesture {
	if d < 0 {
		return g.recordErr(milerr.InvalidArgument("gestures.SetRecognitionTimeout", "negative window %v", d))
	}
	g.recognitionTimeout = d
	return g
}

// RecognitionTimeout returns the recognition window.
func (g *Gesture) RecognitionTimeout() time.Duration {
	return g.recognitionTimeout
}

// SetCompletionTimeout sets the maximum time from recognition to the first
// pointer-up. CompletionTimeoutInfinite disables it.
func (g *Gesture) SetCompletionTimeout(d time.Duration) *Gesture {
	if d < 0 && d != CompletionTimeoutInfinite {
		return g.recordErr(milerr.InvalidArgument("gestures.SetCompletionTimeout", "negative timeout %v", d))
	}
	g.completionTimeout = d
	return g
}

// CompletionTimeout returns the completion timeout.
func (g *Gesture) CompletionTimeout() time.Duration {
	return g.completionTimeout
}

// SetRepeatCount requires the gesture to be recognized count times in a row
// (e.g. 2 for a double tap) before handlers fire.
func (g *Gesture) SetRepeatCount(count int) *Gesture {
	if count < 2 {
		return g.recordErr(milerr.InvalidArgument("gestures.SetRepeatCount", "repeat count %d must be >= 2", count))
	}
	g.repeatCount = count
	return g
}

// RepeatCount returns the required occurrence count, or 0 when unset.
func (g *Gesture) RepeatCount() int {
	return g.repeatCount
}

// SetRepeatTimeout sets the maximum gap between repeat occurrences.
func (g *Gesture) SetRepeatTimeout(d time.Duration) *Gesture {
	if d <= 0 {
		return g.recordErr(milerr.InvalidArgument("gestures.SetRepeatTimeout", "repeat gap %v must be positive", d))
	}
	g.repeatTimeout = d
	return g
}

// RepeatTimeout returns the repeat gap timeout.
func (g *Gesture) RepeatTimeout() time.Duration {
	return g.repeatTimeout
}

// SetCapturesPointers controls whether activation takes native pointer
// capture on the target for every bound pointer.
func (g *Gesture) SetCapturesPointers(captures bool) *Gesture {
	g.capturesPointers = captures
	return g
}

// CapturesPointers reports the capture flag.
func (g *Gesture) CapturesPointers() bool {
	return g.capturesPointers
}

// SetAllowEventPropagation controls whether queued events on the target that
// this gesture does not bind may still replay to the ancestor chain once it
// activates. With false, activation drops them.
func (g *Gesture) SetAllowEventPropagation(allow bool) *Gesture {
	g.allowEventPropagation = allow
	return g
}

// AllowsEventPropagation reports the propagation flag.
func (g *Gesture) AllowsEventPropagation() bool {
	return g.allowEventPropagation
}

// SetCheckForGesturesOnEnd re-runs the recognizer over the still-down
// pointers when this gesture ends, permitting gesture downgrading.
func (g *Gesture) SetCheckForGesturesOnEnd(check bool) *Gesture {
	g.checkForGesturesOnEnd = check
	return g
}

// ChecksForGesturesOnEnd reports the check-on-end flag.
func (g *Gesture) ChecksForGesturesOnEnd() bool {
	return g.checkForGesturesOnEnd
}

// SetStartedHandler installs the activation handler.
func (g *Gesture) SetStartedHandler(fn StartedHandler) *Gesture {
	g.startedHandler = fn
	return g
}

// SetEndedHandler installs the end handler.
func (g *Gesture) SetEndedHandler(fn EndedHandler) *Gesture {
	g.endedHandler = fn
	return g
}

// SetCancelledHandler installs the cancellation handler.
func (g *Gesture) SetCancelledHandler(fn CancelledHandler) *Gesture {
	g.cancelledHandler = fn
	return g
}

// SetMoveHandler installs the move handler. A target must be set first so
// the handler has an element space to be interpreted in.
func (g *Gesture) SetMoveHandler(fn MoveHandler) *Gesture {
	if g.target == nil {
		return g.recordErr(milerr.InvalidSpec("gestures.SetMoveHandler", "gesture %q: set a target before the move handler", g.name))
	}
	g.moveHandler = fn
	return g
}

// State returns the gesture's current lifecycle state.
func (g *Gesture) State() State {
	if len(g.activePointers) > 0 {
		return StateActive
	}
	if g.host != nil && g.host.isRecognizing(g) {
		return StateRecognizing
	}
	return StatePending
}

// IsActive reports whether a full permutation is currently bound.
func (g *Gesture) IsActive() bool {
	return len(g.activePointers) > 0
}

// ActivePointerIDs returns the bound pointer IDs in slot order.
func (g *Gesture) ActivePointerIDs() []int64 {
	ids := make([]int64, len(g.activePointers))
	copy(ids, g.activePointers)
	return ids
}

// BoundOrdinals returns the matched permutation's ordinal list.
func (g *Gesture) BoundOrdinals() []Ordinal {
	ords := make([]Ordinal, len(g.boundOrdinals))
	copy(ords, g.boundOrdinals)
	return ords
}

// PermutationIndex returns the index of the matched permutation, or -1 when
// not active.
func (g *Gesture) PermutationIndex() int {
	if !g.IsActive() {
		return -1
	}
	return g.permutationIndex
}

// StartedTime returns when the gesture last became active.
func (g *Gesture) StartedTime() time.Time {
	return g.startedTime
}

// EndedTime returns when the gesture last ended, or the zero time while
// active or never recognized.
func (g *Gesture) EndedTime() time.Time {
	return g.endedTime
}

// WasCancelled reports whether the most recent instance ended by
// cancellation.
func (g *Gesture) WasCancelled() bool {
	return g.wasCancelled
}

// RepeatOccurrence returns how many occurrences of an in-progress repeat
// sequence have been observed.
func (g *Gesture) RepeatOccurrence() int {
	return g.repeatOccurrence
}

// SetCurrentInk records the gesture's latest associated ink. The ink engine
// calls this; the previous handle is replaced.
func (g *Gesture) SetCurrentInk(ink InkHandle) {
	g.currentInk = ink
}

// CurrentInk returns the gesture's latest associated ink, or nil.
func (g *Gesture) CurrentInk() InkHandle {
	return g.currentInk
}

// AddMoveObserver registers a callback run for every bound-pointer move
// after the gesture's own move handler. The returned function removes it.
// The ink engine uses this to accumulate stroke points.
func (g *Gesture) AddMoveObserver(fn func(*Gesture, events.PointerEvent)) func() {
	id := g.nextObserverID
	g.nextObserverID++
	g.moveObservers[id] = fn
	return func() {
		delete(g.moveObservers, id)
	}
}

// Host returns the host this gesture is registered with, or nil.
func (g *Gesture) Host() *Host {
	return g.host
}

// PointerID resolves a pointer specifier against the bound pointers:
// "{P2}" names the second slot, "touch" the first bound touch, "touch:2"
// the second bound touch.
func (g *Gesture) PointerID(spec string) (int64, error) {
	const op = "gestures.PointerID"
	if !g.IsActive() {
		return 0, milerr.InvalidState(op, "gesture %q is not active", g.name)
	}
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "{") {
		inner := strings.TrimSuffix(strings.TrimPrefix(spec, "{"), "}")
		if !strings.HasPrefix(strings.ToUpper(inner), "P") {
			return 0, milerr.InvalidArgument(op, "malformed ordinal specifier %q", spec)
		}
		n, err := strconv.Atoi(inner[1:])
		if err != nil || n < 1 {
			return 0, milerr.InvalidArgument(op, "malformed ordinal specifier %q", spec)
		}
		if n > len(g.activePointers) {
			return 0, milerr.InvalidArgument(op, "ordinal %q exceeds %d bound pointers", spec, len(g.activePointers))
		}
		return g.activePointers[n-1], nil
	}

	name, suffix, hasSuffix := strings.Cut(spec, ":")
	kind := events.ParseKind(name)
	if kind == events.KindUnknown {
		return 0, milerr.InvalidArgument(op, "unknown pointer kind %q", spec)
	}
	index := 1
	if hasSuffix {
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return 0, milerr.InvalidArgument(op, "malformed pointer specifier %q", spec)
		}
		index = n
	}
	seen := 0
	for i, ord := range g.boundOrdinals {
		if ord.Kind == kind || kind == events.KindAny {
			seen++
			if seen == index {
				return g.activePointers[i], nil
			}
		}
	}
	return 0, milerr.InvalidArgument(op, "no bound pointer matches %q", spec)
}

// StartEvent returns the initial down event of the specified pointer.
func (g *Gesture) StartEvent(spec string) (events.PointerEvent, error) {
	id, err := g.PointerID(spec)
	if err != nil {
		return events.PointerEvent{}, err
	}
	ev, ok := g.host.registry.DownEvent(g.target, id)
	if !ok {
		return events.PointerEvent{}, milerr.InvalidState("gestures.StartEvent", "pointer %d is no longer live", id)
	}
	return ev, nil
}

// CurrentEvent returns the most recent event of the specified pointer.
func (g *Gesture) CurrentEvent(spec string) (events.PointerEvent, error) {
	id, err := g.PointerID(spec)
	if err != nil {
		return events.PointerEvent{}, err
	}
	ev, ok := g.host.registry.CurrentEvent(g.target, id)
	if !ok {
		return events.PointerEvent{}, milerr.InvalidState("gestures.CurrentEvent", "pointer %d is no longer live", id)
	}
	return ev, nil
}

// StartScreenPoint returns the screen-space down position of the pointer.
func (g *Gesture) StartScreenPoint(spec string) (geometry.Point, error) {
	ev, err := g.StartEvent(spec)
	if err != nil {
		return geometry.Point{}, err
	}
	return ev.Position, nil
}

// CurrentScreenPoint returns the screen-space current position of the pointer.
func (g *Gesture) CurrentScreenPoint(spec string) (geometry.Point, error) {
	ev, err := g.CurrentEvent(spec)
	if err != nil {
		return geometry.Point{}, err
	}
	return ev.Position, nil
}

// StartScenePoint returns the down position transposed into the host
// group's coordinate space.
func (g *Gesture) StartScenePoint(spec string) (geometry.Point, error) {
	p, err := g.StartScreenPoint(spec)
	if err != nil {
		return geometry.Point{}, err
	}
	return scene.ToScene(g.host.Group(), p), nil
}

// CurrentScenePoint returns the current position transposed into the host
// group's coordinate space.
func (g *Gesture) CurrentScenePoint(spec string) (geometry.Point, error) {
	p, err := g.CurrentScreenPoint(spec)
	if err != nil {
		return geometry.Point{}, err
	}
	return scene.ToScene(g.host.Group(), p), nil
}

// Distance returns the screen-space distance between the current positions
// of two bound pointers.
func (g *Gesture) Distance(specA, specB string) (float64, error) {
	a, err := g.CurrentScreenPoint(specA)
	if err != nil {
		return 0, err
	}
	b, err := g.CurrentScreenPoint(specB)
	if err != nil {
		return 0, err
	}
	return a.DistanceTo(b), nil
}

// Cancel tears down the in-flight instance: timers stopped, capture
// released, any open ink cancelled, the cancel handler invoked with reason,
// and bound pointer slots cleared. Cancelling an inactive gesture is a no-op.
func (g *Gesture) Cancel(reason string) {
	if !g.IsActive() {
		return
	}
	g.stopTimers()
	bound := g.activePointers
	g.activePointers = nil
	g.boundOrdinals = nil
	g.wasCancelled = true
	g.endedTime = g.host.clock.Now()
	g.repeatOccurrence = 0
	g.silentOccurrence = false
	g.host.unbindPointers(g, bound)
	if g.currentInk != nil && g.currentInk.IsOpen() {
		if err := g.currentInk.Cancel(); err != nil {
			debugf("gesture %q: cancel ink: %v", g.name, err)
		}
	}
	if g.cancelledHandler != nil {
		g.cancelledHandler(g, reason)
	}
}

func (g *Gesture) stopTimers() {
	if g.completionTimer != nil {
		g.completionTimer.Stop()
		g.completionTimer = nil
	}
	if g.repeatTimer != nil {
		g.repeatTimer.Stop()
		g.repeatTimer = nil
	}
}

// AddEndObserver registers a callback run when the gesture ends, before the
// ended handler. The ink engine uses this to consolidate open strokes.
// The returned function removes it.
func (g *Gesture) AddEndObserver(fn func(*Gesture, int64)) func() {
	id := g.nextObserverID
	g.nextObserverID++
	g.endObservers[id] = fn
	return func() {
		delete(g.endObservers, id)
	}
}

// dispatchEnd runs the end observers.
func (g *Gesture) dispatchEnd(liftedPointerID int64) {
	for _, fn := range g.endObservers {
		fn(g, liftedPointerID)
	}
}

// dispatchMove runs the move handler and every move observer.
func (g *Gesture) dispatchMove(ev events.PointerEvent) {
	if g.moveHandler != nil {
		g.moveHandler(g, ev)
	}
	for _, fn := range g.moveObservers {
		fn(g, ev)
	}
}

// String returns a short description for logs.
func (g *Gesture) String() string {
	return fmt.Sprintf("gesture %q (%s)", g.name, g.expression)
}
