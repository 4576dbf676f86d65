package parsers

import (
	"testing"

	"logsight/internal/model"

	"github.com/pterm/pterm"
)

type fakeParser struct {
	name   string
	accept bool
}

func (f *fakeParser) Name() string { return f.name }
func (f *fakeParser) Parse(line string) model.Record { return model.Record{Host: line} }
func (f *fakeParser) CanParse(sample string) bool { return f.accept }

func TestRegistry_Detect(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	registry := NewRegistry(logger)

	parser, ok := registry.Detect(`127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 10`)
	if !ok {
		t.Fatal("Expected CLF content to be detected")
	}
	if parser.Name() != "clf" {
		t.Errorf("Expected parser 'clf', got '%s'", parser.Name())
	}

	if _, ok := registry.Detect("not a log line at all"); ok {
		t.Error("Expected free text not to be detected")
	}
}

func TestRegistry_DetectOrder(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	registry := NewRegistry(logger)
	registry.Register("catch-all", &fakeParser{name: "catch-all", accept: true})

	parser, ok := registry.Detect("anything")
	if !ok || parser.Name() != "catch-all" {
		t.Fatalf("Expected fallback parser, got %v", parser)
	}

	// Registered parsers are tried in order, clf first.
	parser, _ = registry.Detect(`127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 10`)
	if parser.Name() != "clf" {
		t.Errorf("Expected 'clf' to win, got '%s'", parser.Name())
	}
}

func TestRegistry_Get(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	registry := NewRegistry(logger)

	if _, err := registry.Get("clf"); err != nil {
		t.Errorf("Expected clf parser, got error: %v", err)
	}
	if _, err := registry.Get("traefik"); err == nil {
		t.Error("Expected error for unknown parser")
	}
	if len(registry.GetAll()) != 1 {
		t.Errorf("Expected 1 registered parser, got %d", len(registry.GetAll()))
	}
}
