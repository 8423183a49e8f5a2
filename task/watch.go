package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amonks/taskprompt/section"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an atomic state write produces.
const watchDebounce = 50 * time.Millisecond

// Watch calls fn with the task's sections now and again whenever they change,
// until ctx is done. Errors from fn stop the watch and are returned.
func (m *Manager) Watch(ctx context.Context, taskID string, fn func(section.Sections) error) error {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return err
	}
	dir := m.store.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// The state file is replaced by rename, so watch its directory.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	last, err := m.Sections(taskID)
	if err != nil {
		return err
	}
	if err := fn(last); err != nil {
		return err
	}

	statePath := filepath.Clean(m.StatePath())
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != statePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			next, err := m.Sections(taskID)
			if err != nil {
				return err
			}
			if next == last {
				continue
			}
			last = next
			if err := fn(next); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch state: %w", err)
		}
	}
}
