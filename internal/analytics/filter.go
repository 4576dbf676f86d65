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

import "logsight/internal/model"

// Derived filter columns understood in addition to the record columns.
const (
	ColumnPage      = "page"
	ColumnRefDomain = "refDomain"
)

// Filter restricts aggregation to records whose Column equals Value.
// A filter with an empty Column or Value matches everything.
type Filter struct {
	Column string
	Value  string
}

// NoFilter matches every record.
var NoFilter = Filter{}

// Active reports whether the filter restricts anything.
func (f Filter) Active() bool {
	return f.Column != "" && f.Value != ""
}

// Matches reports whether the record meets the filter condition.
// Unknown columns match nothing.
func (f Filter) Matches(rec *model.Record) bool {
	if !f.Active() {
		return true
	}

	switch f.Column {
	case ColumnRefDomain:
		return DomainFromURL(rec.Referrer) == f.Value
	case ColumnPage:
		return RemoveQueryAndFragment(rec.Request) == f.Value
	}

	value, ok := rec.Field(f.Column)
	return ok && value == f.Value
}
