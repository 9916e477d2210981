package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-mil/mil/cmd/milsim/internal/errors"
	"github.com/go-mil/mil/cmd/milsim/internal/script"
)

func init() {
	RegisterCommand(&Command{
		Name:  "watch",
		Short: "Replay a script on every change",
		Usage: "milsim watch <script.yaml>",
		Run:   runWatch,
	})
}

// runWatch replays the script, then re-replays it whenever the file
// changes. Rapid successive writes are debounced into a single replay.
func runWatch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("a script file is required\n\nUsage: milsim watch <script.yaml>")
	}
	path := args[0]

	replay := func() {
		s, err := script.Load(path)
		if err != nil {
			errors.PrintError(err)
			return
		}
		if err := script.Replay(s, os.Stdout); err != nil {
			errors.PrintError(err)
		}
	}
	replay()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors replace files, which drops a watch
	// registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Println()
	fmt.Println("Watching for changes... (Ctrl+C to stop)")

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)

	const debounceDelay = 250 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-sigC:
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
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
			fmt.Println()
			fmt.Println("Replaying...")
			replay()
			fmt.Println()
			fmt.Println("Watching for changes...")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			errors.Warningf("watch error: %v", err)
		}
	}
}
