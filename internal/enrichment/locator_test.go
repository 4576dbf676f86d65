package enrichment

import (
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
)

func TestHostLocator_Disabled(t *testing.T) {
	l := NewHostLocator(Config{}, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))
	defer l.Close()

	if l.Enabled() {
		t.Fatal("Expected locator without databases to be disabled")
	}
	if _, ok := l.Lookup("8.8.8.8"); ok {
		t.Error("Expected no location when disabled")
	}
	if l.CacheSize() != 0 {
		t.Errorf("Expected empty cache, got %d", l.CacheSize())
	}
}

func TestHostLocator_MissingDatabase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	l := NewHostLocator(Config{CityDB: missing}, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))
	defer l.Close()

	if l.Enabled() {
		t.Error("Expected unreadable database to be skipped")
	}
}

func TestHostLocator_Store(t *testing.T) {
	l := NewHostLocator(Config{CacheSize: 10}, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	for i := 0; i < 25; i++ {
		l.store(string(rune('a'+i)), &Location{Country: "IT"})
	}
	if size := l.CacheSize(); size > 10 {
		t.Errorf("Expected cache to stay within 10 entries, got %d", size)
	}
}

func TestLocation_Empty(t *testing.T) {
	if !(&Location{}).Empty() {
		t.Error("Expected zero location to be empty")
	}
	if (&Location{ASN: 15169}).Empty() {
		t.Error("Expected location with ASN not to be empty")
	}
}
