package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"logsight/internal/database"
	"logsight/internal/database/repositories"

	"github.com/pterm/pterm"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name   string
		ok     bool
		label  string
		period time.Time
	}{
		{"example.com-October-2023", true, "October-2023", time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"example.com-October-2023.log", true, "October-2023", time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"audio.live.webuild.sg-Jan-2016", true, "January-2016", time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"my-site-march-2024.gz", true, "March-2024", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"access.log", false, "", time.Time{}},
		{"site-Smarch-2024", false, "", time.Time{}},
		{"site-October-23", false, "", time.Time{}},
		{"site-Oct-2023.log.1", true, "October-2023", time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"site-Oct-20231", false, "", time.Time{}},
		{"site-Oct-2023backup", false, "", time.Time{}},
		{"site-Oct-2023-old", false, "", time.Time{}},
	}

	for _, tt := range tests {
		file, ok := ParseName(tt.name)
		if ok != tt.ok {
			t.Errorf("ParseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if file.Name != tt.name || file.Label != tt.label || !file.Period.Equal(tt.period) {
			t.Errorf("ParseName(%q) = %+v", tt.name, file)
		}
	}
}

func TestMonthlyDetector_Detect(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "site-March-2024"))
	writeFile(t, filepath.Join(dir, "archive", "site-December-2023.log"))
	writeFile(t, filepath.Join(dir, "site-January-2024"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "not-a-date"))

	files, err := NewMonthlyDetector(dir, "", logger).Detect()
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	want := []string{"site-December-2023.log", "site-January-2024", "site-March-2024"}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %d", len(want), len(files))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("File %d: expected %s, got %s", i, name, files[i].Name)
		}
	}
	if files[0].Path != filepath.Join(dir, "archive", "site-December-2023.log") {
		t.Errorf("Unexpected path %s", files[0].Path)
	}
}

func TestMonthlyDetector_Errors(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)

	if _, err := NewMonthlyDetector(filepath.Join(t.TempDir(), "missing"), "", logger).Detect(); err == nil {
		t.Error("Expected error for missing directory")
	}
	if _, err := NewMonthlyDetector(t.TempDir(), "[", logger).Detect(); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestEngine_Run(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	db, err := database.NewConnection(&database.Config{Path: "file:" + t.Name() + "?mode=memory&cache=shared"}, logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	repo := repositories.NewLogFileRepository(db)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "site-May-2024"))
	writeFile(t, filepath.Join(dir, "site-April-2024"))

	engine := NewEngine(repo, logger, NewMonthlyDetector(dir, "", logger))

	added, err := engine.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(added) != 2 {
		t.Errorf("Expected 2 new files, got %v", added)
	}

	added, err = engine.Run()
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("Expected no new files on second run, got %v", added)
	}

	// moved file keeps its entry
	if err := os.Rename(filepath.Join(dir, "site-May-2024"), filepath.Join(dir, "moved-site-May-2024")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub", "site-May-2024"))
	if _, err := engine.Run(); err != nil {
		t.Fatalf("Third run failed: %v", err)
	}
	moved, err := repo.FindByName("site-May-2024")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if moved.Path != filepath.Join(dir, "sub", "site-May-2024") {
		t.Errorf("Expected updated path, got %s", moved.Path)
	}

	listing, err := engine.Listing()
	if err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	if len(listing.Files) != 3 || listing.Files[0].Name != "site-April-2024" {
		t.Errorf("Unexpected listing: %+v", listing.Files)
	}
}
