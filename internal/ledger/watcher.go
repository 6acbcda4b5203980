package ledger

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
)

const debounceInterval = 150 * time.Millisecond

// Watcher calls back when the database file behind the ledger changes,
// e.g. when the CLI records an item while the TUI is open.
type Watcher struct {
	watcher       *fsnotify.Watcher
	onChange      func()
	onError       func(error)
	stopChan      chan struct{}
	debounceTimer *time.Timer
	base          string
	mu            sync.Mutex
	closeOnce     sync.Once
}

// Watch starts watching dbPath. The SQLite WAL and journal files next to it
// count as changes too.
func Watch(dbPath string, onChange func(), onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory to catch the WAL file being created.
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		if closeErr := fw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		onError:  onError,
		stopChan: make(chan struct{}),
		base:     filepath.Base(dbPath),
	}
	go w.watchLoop()
	return w, nil
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	return base == w.base || strings.HasPrefix(base, w.base+"-")
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.mu.Lock()
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, w.fire)
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) fire() {
	select {
	case <-w.stopChan:
		return
	default:
	}
	if w.onChange != nil {
		w.onChange()
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
