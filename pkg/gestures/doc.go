// Package gestures turns raw pointer events arriving at scene elements into
// named gestures: declarative specifications with pointer-type expressions,
// conditional predicates, recognition and completion timeouts, repeat
// counts, per-pointer capture, and group enablement, driven by a per-host
// recognizer and event router.
package gestures
