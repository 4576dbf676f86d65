package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logsight/internal/ingestion"
)

const combinedLine = `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326 "http://example.com/" "Mozilla/5.0"`

func writeLog(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}

func TestInspect(t *testing.T) {
	path := writeLog(t, t.TempDir(), "access-October-2023.log", strings.Repeat(combinedLine+"\n", 4))

	if err := run(t, "inspect", path, "--top", "3", "--host", "127.0.0.1"); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
}

func TestInspect_InvalidFormat(t *testing.T) {
	path := writeLog(t, t.TempDir(), "notes.txt", "just some notes\n")

	err := run(t, "inspect", path)
	if !errors.Is(err, ingestion.ErrInvalidFormat) {
		t.Fatalf("Expected ErrInvalidFormat, got %v", err)
	}
}

func TestInspect_MissingFile(t *testing.T) {
	if err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.log")); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "site-October-2023", combinedLine+"\n")
	writeLog(t, dir, "site-September-2023.log", combinedLine+"\n")
	writeLog(t, dir, "README", "not catalogued\n")

	t.Setenv("DB_PATH", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err := run(t, "list", "--dir", dir); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := run(t, "list", "--dir", dir, "--json"); err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
}
