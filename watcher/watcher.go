package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vcnkl/browserprobe/logger"
)

const DefaultDelay = 300 * time.Millisecond

// Watcher reports changes to a fixed set of files. It watches their parent
// directories so files replaced by rename are still picked up.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	delay    time.Duration
	onChange func(path string)
	fsw      *fsnotify.Watcher
	log      logger.Logger
	mu       sync.Mutex
}

func NewWatcher(files []string, delay time.Duration, log logger.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	w := &Watcher{
		files: make(map[string]bool, len(files)),
		delay: delay,
		log:   log,
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw

	return w, nil
}

func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", dir, err)
		}
	}

	debouncer := NewDebouncer(w.delay)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if !w.matches(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				name := event.Name
				w.log.Debug("file changed", logger.String("path", name), logger.String("op", event.Op.String()))
				debouncer.Trigger(func() {
					w.mu.Lock()
					fn := w.onChange
					w.mu.Unlock()

					if fn != nil {
						fn(name)
					}
				})
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", logger.Err(err))
		}
	}
}

func (w *Watcher) Stop() {
	w.fsw.Close()
}

func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
