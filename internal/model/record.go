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
package model

// Record is one parsed access log line.
// Bytes is kept verbatim because Common/Combined logs write "-" for empty bodies.
type Record struct {
	Host      string `json:"host"`
	Date      string `json:"date"`
	Request   string `json:"request"`
	Status    string `json:"status"`
	Bytes     string `json:"bytes"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"user_agent"`
}

// Field returns the value of a record column by its dashboard name.
// The second result is false for unknown columns.
func (r *Record) Field(column string) (string, bool) {
	switch column {
	case "host":
		return r.Host, true
	case "date":
		return r.Date, true
	case "request":
		return r.Request, true
	case "status":
		return r.Status, true
	case "bytes":
		return r.Bytes, true
	case "referrer":
		return r.Referrer, true
	case "userAgent", "user_agent":
		return r.UserAgent, true
	}
	return "", false
}
