package analytics

import (
	"reflect"
	"testing"
)

func TestHosts_Ranking(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/"}, 5),
		repeat(entry{host: "B", request: "/"}, 3),
		repeat(entry{host: "C", request: "/"}, 3),
	)

	rows := log.Hosts(2, NoFilter)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Key != "A" || rows[0].Count != 5 {
		t.Errorf("Expected A with 5 hits first, got %+v", rows[0])
	}
	if (rows[1].Key != "B" && rows[1].Key != "C") || rows[1].Count != 3 {
		t.Errorf("Expected B or C with 3 hits second, got %+v", rows[1])
	}
}

func TestRanking_TiesKeepFirstOccurrence(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "C", request: "/"}, 2),
		repeat(entry{host: "B", request: "/"}, 2),
		repeat(entry{host: "A", request: "/"}, 2),
	)

	got := keys(log.Hosts(10, NoFilter))
	want := []string{"C", "B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRanking_Idempotent(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/x"}, 4),
		repeat(entry{host: "B", request: "/y"}, 4),
		repeat(entry{host: "C", request: "/z"}, 1),
	)

	for i := 0; i < 3; i++ {
		first := log.Requests(10, Filter{Column: "host", Value: "A"})
		second := log.Requests(10, Filter{Column: "host", Value: "A"})
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Expected identical results, got %v and %v", first, second)
		}
	}
}

func TestRanking_Truncation(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/"}, 2),
		repeat(entry{host: "B", request: "/"}, 1),
	)

	if rows := log.Hosts(100, NoFilter); len(rows) != 2 {
		t.Errorf("Expected 2 rows when fewer keys than n, got %d", len(rows))
	}
	if rows := log.Hosts(1, NoFilter); len(rows) != 1 || rows[0].Key != "A" {
		t.Errorf("Expected only A, got %v", rows)
	}
	if rows := log.Hosts(0, NoFilter); rows == nil || len(rows) != 0 {
		t.Errorf("Expected empty non-nil slice for n=0, got %v", rows)
	}
}

func TestRequests_FilterByHost(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/a"}, 3),
		repeat(entry{host: "A", request: "/b"}, 1),
		repeat(entry{host: "B", request: "/a"}, 7),
		repeat(entry{host: "B", request: "/c"}, 2),
	)

	rows := log.Requests(10, Filter{Column: "host", Value: "A"})
	want := []RankedRow{{Key: "/a", Count: 3}, {Key: "/b", Count: 1}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Expected %v, got %v", want, rows)
	}
}

func TestFilter_Inactive(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/a"}, 2),
		repeat(entry{host: "B", request: "/a"}, 1),
	)

	for _, f := range []Filter{{}, {Column: "host"}, {Value: "A"}} {
		if count, _ := countOf(log.Requests(10, f), "/a"); count != 3 {
			t.Errorf("Expected filter %+v to be ignored, got count %d", f, count)
		}
	}
}

func TestFilter_UnknownColumn(t *testing.T) {
	log := buildLog(t, repeat(entry{host: "A", request: "/a"}, 2))

	if rows := log.Hosts(10, Filter{Column: "nope", Value: "A"}); len(rows) != 0 {
		t.Errorf("Expected no rows for unknown column, got %v", rows)
	}
}

func TestFilter_PageAndRefDomain(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/post?id=1", referrer: "https://www.google.com/search?q=x"}, 2),
		repeat(entry{host: "B", request: "/post?id=2", referrer: "http://google.com/"}, 1),
		repeat(entry{host: "C", request: "/other", referrer: "https://bing.com/"}, 4),
	)

	hosts := log.Hosts(10, Filter{Column: ColumnPage, Value: "/post"})
	if !reflect.DeepEqual(keys(hosts), []string{"A", "B"}) {
		t.Errorf("Expected hosts A and B for page filter, got %v", hosts)
	}

	hosts = log.Hosts(10, Filter{Column: ColumnRefDomain, Value: "google.com"})
	want := []RankedRow{{Key: "A", Count: 2}, {Key: "B", Count: 1}}
	if !reflect.DeepEqual(hosts, want) {
		t.Errorf("Expected %v for refDomain filter, got %v", want, hosts)
	}
}

func TestPages_ExcludesMedia(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/image.png"}, 50),
		repeat(entry{host: "A", request: "/about?ref=nav"}, 2),
		repeat(entry{host: "A", request: "/about"}, 1),
		repeat(entry{host: "A", request: "/"}, 1),
	)

	rows := log.Pages(10, NoFilter)
	if _, ok := countOf(rows, "/image.png"); ok {
		t.Error("Expected /image.png to be excluded from pages")
	}
	if count, _ := countOf(rows, "/about"); count != 3 {
		t.Errorf("Expected /about to collapse query strings to 3 hits, got %d", count)
	}
	if rows[0].Key != "/about" {
		t.Errorf("Expected /about first, got %v", rows)
	}
}

func TestCounter_Remove(t *testing.T) {
	c := newCounter()
	c.add("")
	c.add("/ok")
	c.add("")
	c.remove("", "missing")

	got := c.top(10)
	want := []RankedRow{{Key: "/ok", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestReferrers_ExcludesBlank(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/", referrer: "-"}, 10),
		repeat(entry{host: "A", request: "/", referrer: ""}, 10),
		repeat(entry{host: "A", request: "/", referrer: "https://example.com/a"}, 2),
	)

	rows := log.Referrers(10, NoFilter)
	want := []RankedRow{{Key: "https://example.com/a", Count: 2}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Expected %v, got %v", want, rows)
	}
}

func TestRefDomains(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/", referrer: "https://www.mysite.com/page"}, 6),
		repeat(entry{host: "A", request: "/", referrer: "https://news.ycombinator.com/item?id=1"}, 3),
		repeat(entry{host: "A", request: "/", referrer: "http://NEWS.ycombinator.com/"}, 1),
		repeat(entry{host: "A", request: "/", referrer: "-"}, 9),
	)

	rows := log.RefDomains(10, NoFilter)
	want := []RankedRow{{Key: "mysite.com", Count: 6}, {Key: "news.ycombinator.com", Count: 4}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Expected %v, got %v", want, rows)
	}
}

func TestErrors_OnlyNotFound(t *testing.T) {
	log := buildLog(t,
		repeat(entry{host: "A", request: "/ok", status: "200"}, 20),
		repeat(entry{host: "A", request: "/broken", status: "500"}, 5),
		repeat(entry{host: "A", request: "/missing", status: "404"}, 2),
		repeat(entry{host: "B", request: "/gone", status: "404"}, 1),
	)

	rows := log.Errors(10, NoFilter)
	want := []RankedRow{{Key: "/missing", Count: 2}, {Key: "/gone", Count: 1}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Expected %v, got %v", want, rows)
	}

	rows = log.Errors(10, Filter{Column: "host", Value: "B"})
	if !reflect.DeepEqual(keys(rows), []string{"/gone"}) {
		t.Errorf("Expected only /gone for host B, got %v", rows)
	}
}
