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
package discovery

import (
	"time"

	"logsight/internal/database/models"
)

// Listing is the chronological file list consumed by the dashboard.
type Listing struct {
	Files []ListingEntry `json:"files"`
}

type ListingEntry struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// NewListing keeps the order of files, which the catalog returns oldest first.
func NewListing(files []*models.LogFile) *Listing {
	listing := &Listing{Files: make([]ListingEntry, 0, len(files))}
	for _, f := range files {
		listing.Files = append(listing.Files, ListingEntry{Name: f.Name, Date: f.Period})
	}
	return listing
}
