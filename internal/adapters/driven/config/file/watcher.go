package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/aisle/internal/logger"
)

// defaultDebounce batches the burst of events an editor emits on save.
const defaultDebounce = 200 * time.Millisecond

// PromptWatcher reloads a PromptStore when prompt files change on disk.
type PromptWatcher struct {
	store    *PromptStore
	debounce time.Duration

	// onReload is called after each reload. Used by tests.
	onReload func()
}

// NewPromptWatcher creates a watcher for the store's prompt directory.
func NewPromptWatcher(store *PromptStore) *PromptWatcher {
	return &PromptWatcher{store: store, debounce: defaultDebounce}
}

// Run watches until ctx is cancelled. It blocks and returns nil on
// cancellation, so it can run in an errgroup.
func (w *PromptWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.store.Dir(), 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.store.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.store.Dir(), err)
	}
	logger.Debug("Watching prompts in %s", w.store.Dir())

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".txt" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Prompt changed: %s (%s)", filepath.Base(event.Name), event.Op)
			pending = time.After(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)

		case <-pending:
			pending = nil
			w.store.Reload()
			logger.Info("Prompts reloaded from %s", w.store.Dir())
			if w.onReload != nil {
				w.onReload()
			}
		}
	}
}
