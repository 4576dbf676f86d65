package ingestion

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// DefaultDebounce is how long a path must stay quiet before a change is
// reported; a log being copied in produces many writes.
const DefaultDebounce = 500 * time.Millisecond

// FileWatcher monitors the log directory tree for changes using fsnotify
// and reports each changed path once it has settled.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	events   chan string
	errors   chan error
	logger   *pterm.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewFileWatcher watches root and every directory below it.
func NewFileWatcher(root string, debounce time.Duration, logger *pterm.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithCaller().Error("Failed to create file watcher", logger.Args("error", err))
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw := &FileWatcher{
		watcher:  watcher,
		debounce: debounce,
		events:   make(chan string, 100),
		errors:   make(chan error, 10),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	watched, err := fw.addTree(root)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	fw.wg.Add(1)
	go fw.eventLoop()

	logger.Info("File watcher initialized", logger.Args("root", root, "directories", watched))
	return fw, nil
}

// addTree adds dir and its subdirectories to the watch list.
func (fw *FileWatcher) addTree(dir string) (int, error) {
	watched := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			fw.logger.Warn("Cannot access directory, skipping watch", fw.logger.Args("path", path, "error", err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("Failed to watch directory", fw.logger.Args("path", path, "error", err))
			return nil
		}
		fw.logger.Debug("Started watching directory", fw.logger.Args("path", path))
		watched++
		return nil
	})
	return watched, err
}

// eventLoop processes file system events
func (fw *FileWatcher) eventLoop() {
	defer fw.wg.Done()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(fw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-fw.stopCh:
			fw.logger.Debug("File watcher stopped")
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				fw.logger.Warn("File watcher events channel closed")
				return
			}

			switch {
			case event.Has(fsnotify.Create):
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.logger.Debug("Directory created", fw.logger.Args("path", event.Name))
					if _, err := fw.addTree(event.Name); err != nil {
						fw.logger.WithCaller().Warn("Failed to watch new directory", fw.logger.Args("path", event.Name, "error", err))
					}
					continue
				}
				fw.logger.Debug("File created", fw.logger.Args("file", event.Name))
			case event.Has(fsnotify.Write):
				fw.logger.Trace("File write detected", fw.logger.Args("file", event.Name))
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				fw.logger.Debug("File removed or renamed", fw.logger.Args("file", event.Name))
			default:
				continue
			}
			pending[event.Name] = time.Now()

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < fw.debounce {
					continue
				}
				delete(pending, path)
				select {
				case fw.events <- path:
				default:
					fw.logger.Warn("Event channel full, dropping event", fw.logger.Args("file", path))
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				fw.logger.Warn("File watcher errors channel closed")
				return
			}
			fw.logger.WithCaller().Error("File watcher error", fw.logger.Args("error", err))
			select {
			case fw.errors <- err:
			default:
				fw.logger.Warn("Error channel full, dropping error")
			}
		}
	}
}

// Events returns settled paths that were created, written, removed or renamed.
func (fw *FileWatcher) Events() <-chan string {
	return fw.events
}

// Errors returns the channel for watcher errors
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// Run forwards every settled change to the coordinator until ctx is done.
func (fw *FileWatcher) Run(ctx context.Context, c *Coordinator) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-fw.events:
			if !ok {
				return
			}
			if err := c.HandleChange(ctx, path); err != nil {
				fw.logger.Warn("Failed to apply file change", fw.logger.Args("path", path, "error", err))
			}
		}
	}
}

// Close stops the file watcher and cleans up resources
func (fw *FileWatcher) Close() error {
	fw.logger.Debug("Closing file watcher...")
	close(fw.stopCh)
	fw.wg.Wait()

	if err := fw.watcher.Close(); err != nil {
		fw.logger.WithCaller().Error("Failed to close file watcher", fw.logger.Args("error", err))
		return err
	}

	close(fw.events)
	close(fw.errors)
	fw.logger.Info("File watcher closed")
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
