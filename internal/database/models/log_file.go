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
package models

import (
	"time"
)

// LogFile is the catalog entry of one discovered access log. Parsed records
// are never stored; only the file's identity and its last parse statistics.
type LogFile struct {
	Name  string `gorm:"primaryKey" json:"name"`
	Path  string `gorm:"not null" json:"path"`
	Label string `json:"label"`
	Month string `json:"month"`
	Year  int    `json:"year"`

	// Period is the first day of Month/Year in UTC and orders the catalog.
	Period time.Time `gorm:"not null" json:"period"`

	Valid        bool       `gorm:"default:false" json:"valid"`
	Records      int        `gorm:"default:0" json:"records"`
	ParseMs      int64      `gorm:"default:0" json:"parse_ms"`
	LastParsedAt *time.Time `json:"last_parsed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (LogFile) TableName() string {
	return "log_files"
}
