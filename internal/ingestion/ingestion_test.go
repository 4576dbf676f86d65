package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"logsight/internal/database"
	"logsight/internal/database/models"
	"logsight/internal/database/repositories"
	parsers "logsight/internal/parser"
	"logsight/internal/realtime"

	"github.com/pterm/pterm"
)

const combinedLine = `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326 "http://example.com/" "Mozilla/5.0"`

type fixture struct {
	dir    string
	repo   repositories.LogFileRepository
	events *realtime.Broadcaster
	coord  *Coordinator
}

func newFixture(t *testing.T, rescan func() error) *fixture {
	t.Helper()

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	db, err := database.NewConnection(&database.Config{Path: "file:" + t.Name() + "?mode=memory&cache=shared"}, logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	f := &fixture{
		dir:    t.TempDir(),
		repo:   repositories.NewLogFileRepository(db),
		events: realtime.NewBroadcaster(logger),
	}
	loader := NewLoader(parsers.NewRegistry(logger), logger)
	f.coord = NewCoordinator(f.repo, loader, f.events, logger, rescan)
	return f
}

// add writes contents to a new file, unless empty, and catalogues it.
func (f *fixture) add(t *testing.T, name string, month time.Month, contents string) string {
	t.Helper()

	path := filepath.Join(f.dir, name)
	if contents != "" {
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	err := f.repo.Create(&models.LogFile{
		Name:   name,
		Path:   path,
		Label:  fmt.Sprintf("%s-2023", month),
		Month:  month.String(),
		Year:   2023,
		Period: time.Date(2023, month, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func lines(n int) string {
	return strings.Repeat(combinedLine+"\n", n)
}

func TestCoordinator_LoadAll(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "site-November-2023", time.November, lines(3))
	f.add(t, "site-October-2023", time.October, lines(5))
	f.add(t, "site-December-2023", time.December, "this is not an access log\n")

	events, cancel := f.events.Subscribe()
	defer cancel()

	if err := f.coord.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	var order []string
	for i := 0; i < 3; i++ {
		select {
		case ev := <-events:
			order = append(order, ev.Type+":"+ev.Log)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	want := []string{"loaded:site-October-2023", "loaded:site-November-2023", "invalid:site-December-2023"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("Expected events %v, got %v", want, order)
	}

	log, err := f.coord.Get("site-October-2023")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if log.Len() != 5 {
		t.Errorf("Expected 5 records, got %d", log.Len())
	}

	if _, err := f.coord.Get("site-December-2023"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
	if _, err := f.coord.Get("nope"); !errors.Is(err, ErrUnknownLog) {
		t.Errorf("Expected ErrUnknownLog, got %v", err)
	}

	stored, err := f.repo.FindByName("site-November-2023")
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Valid || stored.Records != 3 || stored.LastParsedAt == nil {
		t.Errorf("Expected parse stats to be stored, got %+v", stored)
	}

	status := f.coord.Status()
	if len(status) != 3 || status[0].Name != "site-October-2023" || !status[0].Loaded {
		t.Errorf("Unexpected status %+v", status)
	}
	if status[2].State != StateInvalid || status[2].Valid {
		t.Errorf("Expected invalid December log, got %+v", status[2])
	}

	if logs, records := f.coord.Totals(); logs != 2 || records != 8 {
		t.Errorf("Expected 2 logs with 8 records, got %d and %d", logs, records)
	}
}

func TestCoordinator_NotLoaded(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "site-October-2023", time.October, lines(1))

	if err := f.coord.Sync(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.coord.Get("site-October-2023"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded, got %v", err)
	}
}

func TestCoordinator_Cancelled(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "site-October-2023", time.October, lines(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.coord.LoadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, err := f.coord.Get("site-October-2023"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded after cancel, got %v", err)
	}
}

func TestCoordinator_MissingFile(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "site-October-2023", time.October, "")

	if err := f.coord.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if _, err := f.coord.Get("site-October-2023"); !errors.Is(err, ErrLoadFailed) {
		t.Errorf("Expected ErrLoadFailed, got %v", err)
	}
}

func TestCoordinator_Reload(t *testing.T) {
	f := newFixture(t, nil)
	path := f.add(t, "site-October-2023", time.October, lines(2))

	ctx := context.Background()
	if err := f.coord.LoadAll(ctx); err != nil {
		t.Fatal(err)
	}
	before, _ := f.coord.Get("site-October-2023")

	if err := os.WriteFile(path, []byte(lines(7)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.coord.Reload(ctx, "site-October-2023"); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	after, _ := f.coord.Get("site-October-2023")
	if after == before || after.Len() != 7 {
		t.Errorf("Expected a new log with 7 records, got %d", after.Len())
	}
	if before.Len() != 2 {
		t.Errorf("Expected previous log to stay intact, got %d records", before.Len())
	}

	if err := f.coord.Reload(ctx, "nope"); !errors.Is(err, ErrUnknownLog) {
		t.Errorf("Expected ErrUnknownLog, got %v", err)
	}
}

func TestCoordinator_HandleChange(t *testing.T) {
	var f *fixture
	rescans := 0
	f = newFixture(t, func() error {
		rescans++
		if rescans == 1 {
			f.add(t, "site-November-2023", time.November, lines(4))
		}
		return nil
	})
	path := f.add(t, "site-October-2023", time.October, lines(1))

	ctx := context.Background()
	if err := f.coord.LoadAll(ctx); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(lines(3)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.coord.HandleChange(ctx, path); err != nil {
		t.Fatalf("HandleChange failed: %v", err)
	}
	if log, _ := f.coord.Get("site-October-2023"); log == nil || log.Len() != 3 {
		t.Error("Expected known file to be reloaded")
	}
	if rescans != 0 {
		t.Errorf("Expected no rescan for a known file, got %d", rescans)
	}

	if err := f.coord.HandleChange(ctx, filepath.Join(f.dir, "site-November-2023")); err != nil {
		t.Fatalf("HandleChange failed: %v", err)
	}
	if log, err := f.coord.Get("site-November-2023"); err != nil || log.Len() != 4 {
		t.Errorf("Expected new file to be loaded, got %v", err)
	}
}

func TestFileWatcher_Events(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	dir := t.TempDir()

	fw, err := NewFileWatcher(dir, 50*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	defer fw.Close()

	path := filepath.Join(dir, "site-October-2023")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(lines(i+1)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-fw.Events():
		if got != path {
			t.Errorf("Expected event for %s, got %s", path, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}

func TestNewFileWatcher_MissingRoot(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	if _, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing"), 0, logger); err == nil {
		t.Error("Expected error for missing root")
	}
}
