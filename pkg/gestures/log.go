package gestures

import "log"

// Debug enables recognition trace logging: transient misses, queue replay,
// and timer activity. Recognition misses are not errors, so they only show
// up here.
var Debug = false

func debugf(format string, args ...any) {
	if Debug {
		log.Printf("gestures: "+format, args...)
	}
}

func warnf(format string, args ...any) {
	log.Printf("gestures: warning: "+format, args...)
}
