package store

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes the JSON session file for changes made by other
// processes. The in-memory directory stays authoritative for this process;
// the watcher only reports, it never reloads.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// WatchFile starts watching path and invokes onChange for every write,
// create, or rename touching it. The parent directory is watched rather
// than the file itself because SaveAll replaces the file via rename.
func WatchFile(path string, logger *zap.Logger, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					logger.Debug("session file changed on disk", zap.String("op", event.Op.String()))
					onChange()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("session file watcher error", zap.Error(err))
			}
		}
	}()
	return w, nil
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}
