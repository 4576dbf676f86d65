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
package analytics

import (
	"sort"

	"logsight/internal/model"
)

// RankedRow is one row of a top-N table.
type RankedRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// counter counts keys and remembers the order in which they first appeared,
// which is how ties in the ranking are broken.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) remove(keys ...string) {
	for _, key := range keys {
		delete(c.counts, key)
	}
}

// top returns at most n rows by descending count.
func (c *counter) top(n int) []RankedRow {
	if n <= 0 {
		return []RankedRow{}
	}

	rows := make([]RankedRow, 0, len(c.counts))
	for _, key := range c.order {
		if count, ok := c.counts[key]; ok {
			rows = append(rows, RankedRow{Key: key, Count: count})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// keyFunc derives the ranking key of a record; false skips the record.
type keyFunc func(rec *model.Record) (string, bool)

// rank groups the filtered records by key and returns the top n.
func (l *Log) rank(n int, f Filter, key keyFunc, exclude ...string) []RankedRow {
	c := newCounter()
	for i := range l.records {
		rec := &l.records[i]
		if !f.Matches(rec) {
			continue
		}
		if k, ok := key(rec); ok {
			c.add(k)
		}
	}
	c.remove(exclude...)
	return c.top(n)
}

// Hosts ranks client hosts by number of requests.
func (l *Log) Hosts(n int, f Filter) []RankedRow {
	return l.rank(n, f, func(rec *model.Record) (string, bool) {
		return rec.Host, true
	})
}

// Requests ranks full request paths, query string included.
func (l *Log) Requests(n int, f Filter) []RankedRow {
	return l.rank(n, f, func(rec *model.Record) (string, bool) {
		return rec.Request, true
	})
}

// Pages ranks request paths without their query, ignoring media and other
// static files.
func (l *Log) Pages(n int, f Filter) []RankedRow {
	return l.rank(n, f, func(rec *model.Record) (string, bool) {
		if isMedia(rec.Request) {
			return "", false
		}
		return RemoveQueryAndFragment(rec.Request), true
	}, "")
}

// Referrers ranks full referrer URLs. Empty and "-" referrers are dropped.
func (l *Log) Referrers(n int, f Filter) []RankedRow {
	return l.rank(n, f, func(rec *model.Record) (string, bool) {
		return rec.Referrer, true
	}, "-", "")
}

// RefDomains ranks referring domains. The top row is usually the site
// itself; hiding it is up to the caller.
func (l *Log) RefDomains(n int, f Filter) []RankedRow {
	return l.rank(n, f, func(rec *model.Record) (string, bool) {
		return DomainFromURL(rec.Referrer), true
	}, "-", "")
}

// Errors ranks request paths that answered 404.
func (l *Log) Errors(n int, f Filter) []RankedRow {
	return l.rank(n, f, func(rec *model.Record) (string, bool) {
		return rec.Request, rec.Status == "404"
	})
}
