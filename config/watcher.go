package config

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/logger"
)

// Watcher watches a config file for changes and triggers reload
// callbacks. The context registry is built once at startup and stays
// static; the watcher serves settings that can change at runtime, like
// log output and the analyzer grouping window.
type Watcher struct {
	configPath     string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration

	isOwnWrite      bool
	isOwnWriteMutex sync.Mutex
}

// ReloadCallback is called with the freshly loaded config after a
// detected change.
type ReloadCallback func(*Config) error

// globalWatcher holds the singleton config watcher instance.
var (
	globalWatcher   *Watcher
	globalWatcherMu sync.Mutex
)

// NewWatcher creates a watcher over the given config file.
func NewWatcher(configPath string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch config file %s", configPath)
	}

	return &Watcher{
		configPath:     configPath,
		watcher:        watcher,
		callbacks:      make([]ReloadCallback, 0),
		debouncePeriod: 500 * time.Millisecond, // Debounce rapid file changes
	}, nil
}

// OnReload registers a callback to be called when config is reloaded.
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite marks the next write as coming from us (prevents reload loops).
func (w *Watcher) MarkOwnWrite() {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()
	w.isOwnWrite = true
}

func (w *Watcher) checkOwnWrite() bool {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()

	if w.isOwnWrite {
		w.isOwnWrite = false
		return true
	}
	return false
}

// Start begins watching for config file changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if isBackupFile(event.Name) {
					continue
				}
				if w.checkOwnWrite() {
					logger.Debugw("Config watcher ignoring own write", "file", event.Name)
					continue
				}

				logger.Infow("Config watcher detected change",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.reload(); err != nil {
			logger.Errorw("Config reload failed", "error", err)
		}
	})
}

func (w *Watcher) reload() error {
	Reset()

	newConfig, err := Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger.Infow("Config reloaded", "path", w.configPath)

	w.mu.RLock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(newConfig); err != nil {
			logger.Warnw("Config reload callback failed", "error", err)
		}
	}
	return nil
}

// StartGlobalWatcher starts the singleton watcher for the given path.
func StartGlobalWatcher(configPath string) (*Watcher, error) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()

	if globalWatcher != nil {
		return globalWatcher, nil
	}

	watcher, err := NewWatcher(configPath)
	if err != nil {
		return nil, err
	}
	watcher.Start()
	globalWatcher = watcher
	return watcher, nil
}

func isBackupFile(path string) bool {
	return strings.Contains(path, ".back")
}
