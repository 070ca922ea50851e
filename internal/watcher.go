package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a chat directory and hands changed session files to
// a single worker. Filesystem events are debounced, then queued; the
// worker consumes the queue serially, so handlers never run
// concurrently no matter how events arrive.
type Watcher struct {
	dir      string
	debounce time.Duration
	handle   func(path string)
	flush    func()
	logger   *slog.Logger

	mu      sync.Mutex
	fw      *fsnotify.Watcher
	stop    chan struct{}
	queue   chan string
	loopWG  sync.WaitGroup
	workWG  sync.WaitGroup
	flushed sync.Once
}

func NewWatcher(dir string, debounce time.Duration, handle func(string), flush func(), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		handle:   handle,
		flush:    flush,
		logger:   logger,
	}
}

// Start begins watching. Calling Start on a running watcher is an error;
// use Restart to pick up a changed directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fw != nil {
		return fmt.Errorf("watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fw = fw
	w.stop = make(chan struct{})
	w.queue = make(chan string, 64)
	w.flushed = sync.Once{}

	w.workWG.Add(1)
	go w.worker(w.queue)

	w.loopWG.Add(1)
	go w.loop(fw, w.stop, w.queue)

	w.logger.Info("watching chat directory", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop tears the watcher down, drains the queue and flushes exactly
// once. Safe to call on a stopped watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.fw == nil {
		return
	}

	close(w.stop)
	w.fw.Close()
	w.loopWG.Wait()

	close(w.queue)
	w.workWG.Wait()

	w.fw = nil
	if w.flush != nil {
		w.flushed.Do(w.flush)
	}
}

// Restart stops the current watch, if any, and starts a fresh one.
func (w *Watcher) Restart() error {
	w.mu.Lock()
	w.stopLocked()
	w.mu.Unlock()
	return w.Start()
}

func (w *Watcher) loop(fw *fsnotify.Watcher, stop chan struct{}, queue chan string) {
	defer w.loopWG.Done()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-stop:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[event.Name] = struct{}{}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			for path := range pending {
				select {
				case queue <- path:
				case <-stop:
					return
				}
			}
			pending = make(map[string]struct{})
		}
	}
}

func (w *Watcher) worker(queue chan string) {
	defer w.workWG.Done()
	for path := range queue {
		w.handle(path)
	}
}

func relevantEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".json") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
