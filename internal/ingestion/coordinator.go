// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"logsight/internal/analytics"
	"logsight/internal/database/models"
	"logsight/internal/database/repositories"
	"logsight/internal/realtime"

	"github.com/pterm/pterm"
)

// State of one catalogued log inside the coordinator.
type State string

const (
	StatePending State = "pending"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateInvalid State = "invalid"
	StateFailed  State = "failed"
)

// LogStatus is the catalog view of one log together with its load state.
type LogStatus struct {
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Label   string    `json:"label"`
	Path    string    `json:"-"`
	Valid   bool      `json:"valid"`
	Records int       `json:"records"`
	ParseMs int64     `json:"parse_ms"`
	State   State     `json:"state"`
	Loaded  bool      `json:"loaded"`
	Error   string    `json:"error,omitempty"`
}

type logEntry struct {
	file  *models.LogFile
	state State
	log   *analytics.Log
	err   error
}

// Coordinator owns the parsed logs. Files are loaded one at a time and a
// log is only visible to readers once it is fully parsed.
type Coordinator struct {
	repo   repositories.LogFileRepository
	loader *Loader
	events *realtime.Broadcaster
	logger *pterm.Logger

	// rescan refreshes the catalog from disk before Sync; optional.
	rescan func() error

	mu   sync.RWMutex
	logs map[string]*logEntry

	// loadMu serialises parsing across LoadAll, Reload and the watcher.
	loadMu sync.Mutex
}

// NewCoordinator creates a coordinator over the catalog. rescan may be nil.
func NewCoordinator(
	repo repositories.LogFileRepository,
	loader *Loader,
	events *realtime.Broadcaster,
	logger *pterm.Logger,
	rescan func() error,
) *Coordinator {
	return &Coordinator{
		repo:   repo,
		loader: loader,
		events: events,
		logger: logger,
		rescan: rescan,
		logs:   make(map[string]*logEntry),
	}
}

// Sync reconciles the in-memory set with the catalog: new files become
// pending and files gone from the catalog are dropped.
func (c *Coordinator) Sync() error {
	files, err := c.repo.FindAll()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	present := make(map[string]struct{}, len(files))
	var removed []string

	c.mu.Lock()
	for _, file := range files {
		present[file.Name] = struct{}{}
		if e, ok := c.logs[file.Name]; ok {
			e.file = file
			continue
		}
		c.logs[file.Name] = &logEntry{file: file, state: StatePending}
		c.logger.Trace("Log queued", c.logger.Args("log", file.Name))
	}
	for name := range c.logs {
		if _, ok := present[name]; !ok {
			delete(c.logs, name)
			removed = append(removed, name)
		}
	}
	c.mu.Unlock()

	for _, name := range removed {
		c.logger.Info("Log dropped from catalog", c.logger.Args("log", name))
		c.publish(realtime.Event{Type: realtime.EventRemoved, Log: name})
	}
	return nil
}

// LoadAll syncs with the catalog and loads every pending log in
// chronological order. Cancellation is checked between files.
func (c *Coordinator) LoadAll(ctx context.Context) error {
	if err := c.Sync(); err != nil {
		return err
	}

	pending := c.names(func(e *logEntry) bool { return e.state == StatePending })
	c.logger.Info("Loading logs", c.logger.Args("pending", len(pending)))

	loaded := 0
	for _, name := range pending {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("Log loading interrupted", c.logger.Args("loaded", loaded, "remaining", len(pending)-loaded))
			return err
		}
		if err := c.load(ctx, name); err != nil {
			c.logger.Debug("Log not loaded", c.logger.Args("log", name, "error", err))
		}
		loaded++
	}

	c.logger.Info("Log loading completed", c.logger.Args("processed", loaded))
	return nil
}

// Reload re-reads and re-parses one log, replacing the previous result.
func (c *Coordinator) Reload(ctx context.Context, name string) error {
	c.mu.RLock()
	_, ok := c.logs[name]
	c.mu.RUnlock()
	if !ok {
		return ErrUnknownLog
	}
	return c.load(ctx, name)
}

func (c *Coordinator) load(ctx context.Context, name string) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	e, ok := c.logs[name]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownLog
	}
	path := e.file.Path
	if e.log == nil {
		e.state = StateLoading
	}
	c.mu.Unlock()

	c.logger.Debug("Loading log", c.logger.Args("log", name, "path", path))
	log, err := c.loader.Load(path)

	c.mu.Lock()
	e, ok = c.logs[name]
	if !ok {
		// Dropped from the catalog while parsing.
		c.mu.Unlock()
		return ErrUnknownLog
	}
	var ev realtime.Event
	switch {
	case err == nil:
		e.state, e.log, e.err = StateLoaded, log, nil
		ev = realtime.Event{Type: realtime.EventLoaded, Log: name, Records: log.Len(), ParseMs: log.ParseDuration().Milliseconds()}
	case errors.Is(err, ErrInvalidFormat):
		e.state, e.log, e.err = StateInvalid, nil, err
		ev = realtime.Event{Type: realtime.EventInvalid, Log: name}
	default:
		e.state, e.log, e.err = StateFailed, nil, err
		ev = realtime.Event{Type: realtime.EventFailed, Log: name, Error: err.Error()}
	}
	c.mu.Unlock()

	c.recordStats(name, log, err)
	c.publish(ev)

	if err != nil && !errors.Is(err, ErrInvalidFormat) {
		c.logger.WithCaller().Warn("Failed to load log", c.logger.Args("log", name, "error", err))
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return err
}

func (c *Coordinator) recordStats(name string, log *analytics.Log, err error) {
	valid, records, parseMs := false, 0, int64(0)
	if err == nil {
		valid, records, parseMs = true, log.Len(), log.ParseDuration().Milliseconds()
	} else if !errors.Is(err, ErrInvalidFormat) {
		return
	}

	if err := c.repo.UpdateParseStats(name, valid, records, parseMs); err != nil {
		c.logger.Warn("Failed to record parse statistics", c.logger.Args("log", name, "error", err))
		return
	}

	c.mu.Lock()
	if e, ok := c.logs[name]; ok {
		e.file.Valid, e.file.Records, e.file.ParseMs = valid, records, parseMs
	}
	c.mu.Unlock()
}

func (c *Coordinator) publish(ev realtime.Event) {
	if c.events != nil {
		c.events.Publish(ev)
	}
}

// Get returns the parsed log. Errors are ErrUnknownLog, ErrNotLoaded,
// ErrInvalidFormat or a wrapped ErrLoadFailed.
func (c *Coordinator) Get(name string) (*analytics.Log, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.logs[name]
	if !ok {
		return nil, ErrUnknownLog
	}

	switch e.state {
	case StateLoaded:
		return e.log, nil
	case StateInvalid:
		return nil, ErrInvalidFormat
	case StateFailed:
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, e.err)
	default:
		if e.log != nil {
			return e.log, nil
		}
		return nil, ErrNotLoaded
	}
}

// Status lists every log oldest first.
func (c *Coordinator) Status() []LogStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]LogStatus, 0, len(c.logs))
	for _, e := range c.logs {
		s := LogStatus{
			Name:    e.file.Name,
			Date:    e.file.Period,
			Label:   e.file.Label,
			Path:    e.file.Path,
			Valid:   e.file.Valid,
			Records: e.file.Records,
			ParseMs: e.file.ParseMs,
			State:   e.state,
			Loaded:  e.log != nil,
		}
		if e.err != nil {
			s.Error = e.err.Error()
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Totals returns how many logs are loaded and their record count.
func (c *Coordinator) Totals() (logs int, records int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.logs {
		if e.log != nil {
			logs++
			records += e.log.Len()
		}
	}
	return logs, records
}

// HandleChange reacts to a filesystem change under the log directory.
// Known files are reloaded; anything else triggers a rescan so new files
// are catalogued and vanished ones dropped.
func (c *Coordinator) HandleChange(ctx context.Context, path string) error {
	if name, ok := c.nameForPath(path); ok {
		if _, err := c.repo.FindByName(name); err == nil && fileExists(path) {
			c.logger.Info("Log changed on disk, reloading", c.logger.Args("log", name))
			return c.Reload(ctx, name)
		}
	}

	if c.rescan != nil {
		if err := c.rescan(); err != nil {
			return fmt.Errorf("rescan failed: %w", err)
		}
	}
	return c.LoadAll(ctx)
}

func (c *Coordinator) nameForPath(path string) (string, bool) {
	clean := filepath.Clean(path)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, e := range c.logs {
		if filepath.Clean(e.file.Path) == clean {
			return name, true
		}
	}
	return "", false
}

// names returns the matching logs in chronological order.
func (c *Coordinator) names(match func(*logEntry) bool) []string {
	var names []string
	for _, s := range c.Status() {
		c.mu.RLock()
		e, ok := c.logs[s.Name]
		keep := ok && match(e)
		c.mu.RUnlock()
		if keep {
			names = append(names, s.Name)
		}
	}
	return names
}
