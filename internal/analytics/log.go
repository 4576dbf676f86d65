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
	"strings"
	"sync"
	"time"

	"logsight/internal/model"
	parsers "logsight/internal/parser"

	"github.com/pterm/pterm"
)

// DefaultTopN is the size of every table in the overview.
const DefaultTopN = 100

// Overview holds the unfiltered tables shown when a log is opened.
type Overview struct {
	Hosts      []RankedRow    `json:"hosts"`
	Requests   []RankedRow    `json:"requests"`
	Pages      []RankedRow    `json:"pages"`
	Referrers  []RankedRow    `json:"referrers"`
	RefDomains []RankedRow    `json:"ref_domains"`
	Errors     []RankedRow    `json:"errors"`
	Traffic    []TrafficPoint `json:"traffic"`
}

// Log is the parsed table of one access log file. It is never modified after
// Parse returns, so any number of goroutines may query it.
type Log struct {
	records       []model.Record
	parser        string
	parseDuration time.Duration
	logger        *pterm.Logger

	overviewOnce sync.Once
	overview     *Overview
}

// Parse builds a Log from the full contents of a file, one record per
// non-empty line, in file order. Lines are never rejected; callers gate on
// the parser's CanParse first.
func Parse(contents string, parser parsers.LogParser, logger *pterm.Logger) *Log {
	started := time.Now()

	records := make([]model.Record, 0, strings.Count(contents, "\n")+1)
	for len(contents) > 0 {
		line := contents
		if idx := strings.IndexByte(contents, '\n'); idx != -1 {
			line, contents = contents[:idx], contents[idx+1:]
		} else {
			contents = ""
		}

		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		records = append(records, parser.Parse(line))
	}

	l := &Log{
		records:       records,
		parser:        parser.Name(),
		parseDuration: time.Since(started),
		logger:        logger,
	}

	logger.Debug("Parsed log",
		logger.Args(
			"parser", l.parser,
			"records", len(records),
			"duration_ms", l.parseDuration.Milliseconds(),
		))

	return l
}

// Len returns the number of records.
func (l *Log) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in file order.
func (l *Log) Records() []model.Record {
	out := make([]model.Record, len(l.records))
	copy(out, l.records)
	return out
}

// ParserName returns the name of the parser that built the log.
func (l *Log) ParserName() string {
	return l.parser
}

// ParseDuration returns how long parsing took.
func (l *Log) ParseDuration() time.Duration {
	return l.parseDuration
}

// Overview returns the unfiltered top tables and traffic series. They are
// computed on first use and then reused.
func (l *Log) Overview() *Overview {
	l.overviewOnce.Do(func() {
		started := time.Now()
		l.overview = &Overview{
			Hosts:      l.Hosts(DefaultTopN, NoFilter),
			Requests:   l.Requests(DefaultTopN, NoFilter),
			Pages:      l.Pages(DefaultTopN, NoFilter),
			Referrers:  l.Referrers(DefaultTopN, NoFilter),
			RefDomains: l.RefDomains(DefaultTopN, NoFilter),
			Errors:     l.Errors(DefaultTopN, NoFilter),
			Traffic:    l.Traffic(NoFilter),
		}
		l.logger.Trace("Computed log overview",
			l.logger.Args("records", len(l.records), "duration_ms", time.Since(started).Milliseconds()))
	})
	return l.overview
}

// UserAgent returns the user agent of the first record from host that has
// one. Later changes of user agent by the same host are ignored.
func (l *Log) UserAgent(host string) (string, bool) {
	for i := range l.records {
		if l.records[i].Host == host && l.records[i].UserAgent != "" {
			return l.records[i].UserAgent, true
		}
	}
	return "", false
}
