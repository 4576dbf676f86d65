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
	"regexp"
	"strings"
)

// sniffWindow is how much of a file the sniffer looks at.
const sniffWindow = 1000

var (
	combinedPattern = regexp.MustCompile(`^\S+ \S+ \S+ \[[^\]]+\] "[^"]+" \d+ \d+ "[^"]*" "[^"]*".*$`)
	commonPattern   = regexp.MustCompile(`^\S+ \S+ \S+ \[[^\]]+\] "[^"]+" \d+ \d+$`)
)

// Sniff reports whether the first line of contents is in Combined or Common
// Log Format. Only the first sniffWindow bytes are inspected.
func Sniff(contents string) bool {
	head := contents
	if len(head) > sniffWindow {
		head = head[:sniffWindow]
	}

	first := head
	if idx := strings.IndexAny(head, "\r\n"); idx != -1 {
		first = head[:idx]
	}
	if first == "" {
		return false
	}

	return combinedPattern.MatchString(first) || commonPattern.MatchString(first)
}
