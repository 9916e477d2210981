package settings

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-reads a settings file whenever it changes on disk and publishes
// each successfully parsed revision through an observable. Rapid successive
// writes (editor save-all) are debounced into a single reload.
type Watcher struct {
	Settings *Observable[*Settings]

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch loads path and starts watching it for changes.
func Watch(path string) (*Watcher, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	// Watch the directory: editors replace files, which drops a watch
	// registered on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch settings dir: %w", err)
	}

	w := &Watcher{
		Settings: NewObservable(initial),
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.run(path)
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run(path string) {
	const debounceDelay = 250 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounceDelay)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			reloaded, err := Load(path)
			if err != nil {
				log.Printf("settings: reload %s: %v", path, err)
				continue
			}
			w.Settings.Set(reloaded)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("settings: watch error: %v", err)
		}
	}
}
