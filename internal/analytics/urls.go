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

import "strings"

// RemoveQueryAndFragment returns the page of a request path.
// Both passes cut at '?'; a '#' fragment is left in place.
func RemoveQueryAndFragment(url string) string {
	if idx := strings.IndexByte(url, '?'); idx != -1 {
		url = url[:idx]
	}
	if idx := strings.IndexByte(url, '?'); idx != -1 {
		url = url[:idx]
	}
	return url
}

// DomainFromURL returns the lowercased authority of a referrer URL with the
// scheme and a "www." prefix removed. Each literal is removed once, wherever
// it first occurs.
func DomainFromURL(url string) string {
	url = strings.Replace(url, "http://", "", 1)
	url = strings.Replace(url, "https://", "", 1)
	url = strings.Replace(url, "www.", "", 1)

	// remove everything after the authority
	if slash := strings.IndexByte(url, '/'); slash != -1 {
		url = url[:slash]
	}

	return strings.ToLower(url)
}

// mediaExtensions are skipped when ranking pages.
var mediaExtensions = []string{
	"jpg", "jpeg", "pdf", "mp3", "rar", "exe", "wmv", "doc", "avi", "ppt",
	"mpg", "mpeg", "tif", "wav", "psd", "txt", "bmp", "css", "js", "png",
	"gif", "swf", "dmg", "flv", "gz", "ico",
}

// isMedia reports whether a request path contains ".<ext>" for any media extension.
func isMedia(url string) bool {
	for _, ext := range mediaExtensions {
		if strings.Contains(url, "."+ext) {
			return true
		}
	}
	return false
}
