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
package clf

import (
	"strings"

	"logsight/internal/model"

	"github.com/pterm/pterm"
)

// Name is the registry key of the Common/Combined parser.
const Name = "clf"

const (
	// dateWidth is how far past dateStart the terminating space is searched
	// for; dd/Mon/yyyy:HH:mm:ss never contains a space before that.
	dateWidth = 16
	// timeWidth is the ":HH:mm:ss" tail cut from the stored date.
	timeWidth = 9
)

// Parser implements the LogParser interface for Apache/Nginx Common and
// Combined Log Format lines. It scans by position instead of using a regex.
type Parser struct {
	logger *pterm.Logger
}

// NewParser creates a new Common/Combined parser instance
func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return Name
}

// CanParse reports whether the head of a log file looks like Common or Combined format.
func (p *Parser) CanParse(sample string) bool {
	ok := Sniff(sample)
	if !ok {
		p.logger.Trace("Sample rejected by CLF sniffer",
			p.logger.Args("preview", truncate(sample, 100)))
	}
	return ok
}

// Parse extracts the fields of one log line. Malformed lines never fail:
// whatever the positional scan yields is returned.
func (p *Parser) Parse(line string) model.Record {
	var rec model.Record

	// Host
	end := strings.IndexByte(line, ' ')
	rec.Host = substring(line, 0, end)

	// Date. A hyphen right after "host - " means identd and userid are both "-".
	var start int
	if at := end + 3; at >= 0 && at < len(line) && line[at] == '-' {
		start = end + 6
	} else {
		start = indexFrom(line, "[", end) + 1
	}
	end = indexFrom(line, " ", start+dateWidth)
	rec.Date = substring(line, start, end-timeWidth)

	// Request path only; method and protocol are dropped
	start = indexFrom(line, "/", end)
	end = indexFrom(line, " ", start)
	rec.Request = substring(line, start, end)

	// Status
	start = indexFrom(line, `" `, end) + 2
	end = start + 3
	rec.Status = substring(line, start, end)

	// Bytes. No trailing space means Common Log Format and the line ends here.
	start = end + 1
	end = indexFrom(line, " ", start)
	if end == -1 {
		rec.Bytes = substring(line, start, len(line))
		return rec
	}
	rec.Bytes = substring(line, start, end)

	// Referrer and user agent (Combined Log Format)
	start = indexFrom(line, `"`, end) + 1
	end = indexFrom(line, `"`, start)
	rec.Referrer = substring(line, start, end)

	start = indexFrom(line, `"`, end+1) + 1
	end = indexFrom(line, `"`, start)
	rec.UserAgent = substring(line, start, end)

	return rec
}

// indexFrom returns the index of sub in s at or after from, or -1.
// A negative from searches the whole string.
func indexFrom(s, sub string, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		return -1
	}
	idx := strings.Index(s[from:], sub)
	if idx == -1 {
		return -1
	}
	return from + idx
}

// substring clamps both bounds into s and swaps them when reversed,
// so out-of-range positions from a malformed line never panic.
func substring(s string, start, end int) string {
	start = clamp(start, 0, len(s))
	end = clamp(end, 0, len(s))
	if start > end {
		start, end = end, start
	}
	return s[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// truncate truncates a string to maxLen characters for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
