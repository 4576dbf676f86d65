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
	"math"
	"sort"
	"strconv"
	"time"
)

const megaByte = 1024 * 1024

// dateLayouts are tried in order when turning a record date into a timestamp.
// Dates without an offset are read as UTC.
var dateLayouts = []string{
	"02/Jan/2006",
	"02/Jan/2006:15:04:05",
	"02/Jan/2006:15:04:05 -0700",
}

// TrafficPoint is the traffic of one distinct record date.
type TrafficPoint struct {
	Date      string `json:"date"`
	UnixTime  int64  `json:"unixTime"` // milliseconds
	Hits      int    `json:"hits"`
	Bandwidth string `json:"bandwidth"` // MB, two decimals
}

// Traffic returns hits and bandwidth per date, oldest first. Records whose
// date cannot be parsed are left out.
func (l *Log) Traffic(f Filter) []TrafficPoint {
	type bucket struct {
		point TrafficPoint
		bytes float64
	}

	buckets := make(map[string]*bucket)
	order := []string{}
	dates := make(map[string]*time.Time) // parse each distinct date once

	for i := range l.records {
		rec := &l.records[i]
		if !f.Matches(rec) {
			continue
		}

		ts, seen := dates[rec.Date]
		if !seen {
			ts = parseDate(rec.Date)
			dates[rec.Date] = ts
		}
		if ts == nil {
			continue
		}

		b, exists := buckets[rec.Date]
		if !exists {
			b = &bucket{point: TrafficPoint{Date: rec.Date, UnixTime: ts.UnixMilli()}}
			buckets[rec.Date] = b
			order = append(order, rec.Date)
		}
		b.point.Hits++
		b.bytes += float64(leadingInt(rec.Bytes))
	}

	points := make([]TrafficPoint, 0, len(order))
	for _, date := range order {
		b := buckets[date]
		b.point.Bandwidth = strconv.FormatFloat(b.bytes/megaByte, 'f', 2, 64)
		points = append(points, b.point)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].UnixTime < points[j].UnixTime
	})

	return points
}

// parseDate returns nil when no layout matches.
func parseDate(date string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return &t
		}
	}
	return nil
}

// leadingInt reads an optionally signed decimal prefix, the way byte counts
// are read from logs: "512" is 512, "12abc" is 12, "-" and "" are 0.
// Values beyond int64 saturate at math.MaxInt64.
func leadingInt(s string) int64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	var n int64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (math.MaxInt64-9)/10 {
			n = math.MaxInt64
			break
		}
		n = n*10 + int64(s[i]-'0')
	}

	if neg {
		return -n
	}
	return n
}
