package script

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/milk9111/scenecore/logging"
	"go.uber.org/zap"
)

// Watcher reports script files changed on disk. Events are delivered on a
// channel and applied to a runtime by Poll on the frame-loop goroutine.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Poll drains pending change events without blocking and reloads the matching
// scripts. It returns the names whose source actually changed.
func (w *Watcher) Poll(rt *TengoRuntime) []string {
	if w == nil || rt == nil {
		return nil
	}
	var changed []string
	for {
		select {
		case path := <-w.Events:
			name, ok := rt.Loader().Name(path)
			if !ok {
				continue
			}
			ok, err := rt.Reload(name)
			if err != nil {
				logging.Logger().Warn("script reload failed", zap.String("script", name), zap.Error(err))
				continue
			}
			if ok {
				changed = append(changed, name)
			}
		case err := <-w.Errors:
			logging.Logger().Warn("script watcher error", zap.Error(err))
		default:
			return changed
		}
	}
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !IsScriptFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
