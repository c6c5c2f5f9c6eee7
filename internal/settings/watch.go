package settings

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/kvlite/kvlite/internal/kvlog"
)

// Watcher delivers a freshly loaded and validated Settings each time the
// watched file changes on disk.
type Watcher struct {
	Changes <-chan Settings
	Errors  <-chan error

	fsw *fsnotify.Watcher
}

// Watch starts watching path for writes and re-runs Load on each one,
// publishing successful reloads on Changes and failures on Errors. Stop
// must be called to release the underlying fsnotify watcher.
func Watch(ctx context.Context, path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	changes := make(chan Settings, 1)
	errs := make(chan error, 1)
	w := &Watcher{Changes: changes, Errors: errs, fsw: fsw}

	go func() {
		defer close(changes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					kvlog.Warnf("settings: reload of %s failed: %v", path, err)
					select {
					case errs <- err:
					default:
					}
					continue
				}
				select {
				case changes <- cfg:
				default:
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return w, nil
}

// Stop releases the watcher's filesystem resources.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}
