package analytics

import (
	"reflect"
	"testing"

	"logsight/internal/parser/clf"

	"github.com/pterm/pterm"
)

func TestParse_SkipsBlankLines(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	line := entry{host: "1.2.3.4", request: "/"}.combined()
	contents := line + "\r\n\r\n" + line + "\n\n" + line

	log := Parse(contents, clf.NewParser(logger), logger)
	if log.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", log.Len())
	}
	if log.ParserName() != clf.Name {
		t.Errorf("Expected parser %s, got %s", clf.Name, log.ParserName())
	}

	for i, rec := range log.Records() {
		if rec.UserAgent != "" || rec.Host != "1.2.3.4" {
			t.Errorf("Record %d: unexpected %+v", i, rec)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	log := Parse("", clf.NewParser(logger), logger)
	if log.Len() != 0 {
		t.Errorf("Expected no records, got %d", log.Len())
	}
	if rows := log.Hosts(10, NoFilter); len(rows) != 0 {
		t.Errorf("Expected no hosts, got %v", rows)
	}
	if points := log.Traffic(NoFilter); len(points) != 0 {
		t.Errorf("Expected no traffic, got %v", points)
	}
}

func TestRecords_ReturnsCopy(t *testing.T) {
	log := buildLog(t, repeat(entry{host: "A", request: "/"}, 2))

	recs := log.Records()
	recs[0].Host = "changed"

	if log.Records()[0].Host != "A" {
		t.Error("Expected Records to return a copy")
	}
}

func TestUserAgent(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/", userAgent: ""}, 1),
		repeat(entry{host: "A", request: "/", userAgent: "Mozilla/5.0 (X11; Linux x86_64)"}, 1),
		repeat(entry{host: "A", request: "/", userAgent: "curl/8.0"}, 1),
	)

	ua, ok := log.UserAgent("A")
	if !ok || ua != "Mozilla/5.0 (X11; Linux x86_64)" {
		t.Errorf("Expected first non-empty user agent, got %q (%v)", ua, ok)
	}

	if _, ok := log.UserAgent("missing"); ok {
		t.Error("Expected no user agent for unknown host")
	}
}

func TestOverview(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/a", referrer: "https://example.com/"}, 3),
		repeat(entry{host: "B", request: "/missing", status: "404"}, 2),
	)

	first := log.Overview()
	second := log.Overview()
	if first != second {
		t.Error("Expected the overview to be computed once")
	}

	if !reflect.DeepEqual(first.Hosts, log.Hosts(DefaultTopN, NoFilter)) {
		t.Errorf("Overview hosts differ: %v", first.Hosts)
	}
	if !reflect.DeepEqual(first.Errors, log.Errors(DefaultTopN, NoFilter)) {
		t.Errorf("Overview errors differ: %v", first.Errors)
	}
	if !reflect.DeepEqual(first.RefDomains, []RankedRow{{Key: "example.com", Count: 3}}) {
		t.Errorf("Unexpected overview ref domains: %v", first.RefDomains)
	}
	if len(first.Traffic) != 1 || first.Traffic[0].Hits != 5 {
		t.Errorf("Unexpected overview traffic: %+v", first.Traffic)
	}
}

func TestOverview_Concurrent(t *testing.T) {
	log := buildLog(t, repeat(entry{host: "A", request: "/"}, 10))

	results := make(chan *Overview, 8)
	for i := 0; i < 8; i++ {
		go func() { results <- log.Overview() }()
	}

	first := <-results
	for i := 1; i < 8; i++ {
		if got := <-results; got != first {
			t.Fatal("Expected all goroutines to share one overview")
		}
	}
}
