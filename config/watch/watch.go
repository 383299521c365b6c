package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xalexb/hjarta-config/config"
)

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 100 * time.Millisecond

// ErrNothingToWatch is returned when no source of the merge is a file or a
// secrets directory.
var ErrNothingToWatch = errors.New("no file sources to watch")

// Config tunes a Watcher.
type Config[T any] struct {
	// Debounce is the quiet period after the last event before reloading.
	// Zero means DefaultDebounce.
	Debounce time.Duration
	Logger   *slog.Logger
	// OnChange receives every successfully reloaded value.
	OnChange func(*T)
	// OnError receives every failed reload.
	OnError func(error)
}

// Watcher keeps a configuration in sync with its files.
type Watcher[T any] struct {
	merge  config.Merge
	opts   []config.LoadOption
	config Config[T]
	logger *slog.Logger

	fsw     *fsnotify.Watcher
	files   map[string]struct{}
	secrets map[string]struct{}

	current atomic.Pointer[T]

	mu       sync.Mutex
	timer    *time.Timer
	closed   bool
	reloadMu sync.Mutex

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// New loads m and starts watching its sources. opts are passed to every
// load.
func New[T any](m config.Merge, cfg Config[T], opts ...config.LoadOption) (*Watcher[T], error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher[T]{
		merge:   m,
		opts:    opts,
		config:  cfg,
		logger:  logger,
		files:   make(map[string]struct{}),
		secrets: make(map[string]struct{}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	dirs, err := w.collectPaths()
	if err != nil {
		return nil, err
	}

	loaded, err := config.LoadMerged[T](m, opts...)
	if err != nil {
		return nil, err
	}

	w.current.Store(loaded)

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			_ = w.fsw.Close()

			return nil, fmt.Errorf("watching %q: %w", dir, err)
		}
	}

	logger.Debug("configuration watcher started", slog.Any("dirs", dirs), slog.Duration("debounce", cfg.Debounce))

	go w.run()

	return w, nil
}

// collectPaths records the watched files and secrets directories and
// returns the directories to subscribe to.
func (w *Watcher[T]) collectPaths() ([]string, error) {
	seen := make(map[string]struct{})

	var dirs []string

	addDir := func(dir string) {
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	for _, src := range w.merge.Sources {
		kind, err := src.Kind()
		if err != nil {
			return nil, err
		}

		if kind == config.KindEnv {
			continue
		}

		path, err := filepath.Abs(src.File)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", src.File, err)
		}

		if kind == config.KindDockerSecrets {
			w.secrets[path] = struct{}{}
			addDir(path)

			continue
		}

		w.files[path] = struct{}{}
		addDir(filepath.Dir(path))
	}

	if len(dirs) == 0 {
		return nil, ErrNothingToWatch
	}

	return dirs, nil
}

// Current returns the latest successfully loaded value.
func (w *Watcher[T]) Current() *T {
	return w.current.Load()
}

// Close stops watching. Pending reloads are dropped and a reload already
// running is waited for, so no callback runs once Close returns. Close must
// not be called from OnChange or OnError.
func (w *Watcher[T]) Close() error {
	var err error

	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true

		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()

		w.reloadMu.Lock()
		//nolint:staticcheck // empty critical section waits for a running reload.
		w.reloadMu.Unlock()

		close(w.stopCh)
		<-w.doneCh

		if closeErr := w.fsw.Close(); closeErr != nil {
			err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
		}
	})

	return err
}

func (w *Watcher[T]) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("configuration file event", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			w.logger.Warn("configuration watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher[T]) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Clean(event.Name)

	if _, ok := w.files[name]; ok {
		return true
	}

	_, ok := w.secrets[filepath.Dir(name)]

	return ok
}

// schedule restarts the debounce timer.
func (w *Watcher[T]) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.config.Debounce, w.reload)
}

func (w *Watcher[T]) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closed
}

func (w *Watcher[T]) reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if w.isClosed() {
		return
	}

	loaded, err := config.LoadMerged[T](w.merge, w.opts...)

	if w.isClosed() {
		return
	}

	if err != nil {
		w.logger.Warn("configuration reload failed", slog.String("error", err.Error()))

		if w.config.OnError != nil {
			w.config.OnError(err)
		}

		return
	}

	w.current.Store(loaded)
	w.logger.Info("configuration reloaded")

	if w.config.OnChange != nil {
		w.config.OnChange(loaded)
	}
}
