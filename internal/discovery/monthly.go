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
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"logsight/internal/database/models"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pterm/pterm"
)

// DefaultPattern matches any file with at least two dashes in its name.
const DefaultPattern = "**/*-*-*"

// monthlyName matches <name>-<Month>-<Year>, with an optional extension.
// Nothing but the extension may follow the year.
var monthlyName = regexp.MustCompile(`^(.+)-([A-Za-z]+)-(\d{4})(?:\.[^-]*)?$`)

var monthLayouts = []string{"January 2006", "Jan 2006"}

// MonthlyDetector finds monthly access logs named like site-October-2023.log
// under a directory.
type MonthlyDetector struct {
	dir     string
	pattern string
	logger  *pterm.Logger
}

func NewMonthlyDetector(dir, pattern string, logger *pterm.Logger) *MonthlyDetector {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &MonthlyDetector{
		dir:     dir,
		pattern: pattern,
		logger:  logger,
	}
}

func (d *MonthlyDetector) Name() string {
	return "monthly"
}

// Detect returns the matching files ordered by period, then name.
func (d *MonthlyDetector) Detect() ([]*models.LogFile, error) {
	if !doublestar.ValidatePattern(d.pattern) {
		return nil, fmt.Errorf("invalid log pattern %q", d.pattern)
	}

	info, err := os.Stat(d.dir)
	if err != nil {
		return nil, fmt.Errorf("log directory %s: %w", d.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log directory %s is not a directory", d.dir)
	}

	d.logger.Trace("Scanning log directory", d.logger.Args("dir", d.dir, "pattern", d.pattern))
	matches, err := doublestar.Glob(os.DirFS(d.dir), d.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", d.dir, err)
	}

	seen := make(map[string]string, len(matches))
	files := make([]*models.LogFile, 0, len(matches))
	for _, match := range matches {
		name := path.Base(match)
		full := filepath.Join(d.dir, filepath.FromSlash(match))

		file, ok := ParseName(name)
		if !ok {
			d.logger.Trace("Skipping file without month and year", d.logger.Args("path", full))
			continue
		}
		if first, dup := seen[name]; dup {
			d.logger.Warn("Duplicate log file name, keeping the first",
				d.logger.Args("name", name, "kept", first, "skipped", full))
			continue
		}
		seen[name] = full

		file.Path = full
		files = append(files, file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].Period.Equal(files[j].Period) {
			return files[i].Period.Before(files[j].Period)
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// ParseName derives the catalog fields from a file name such as
// "example.com-October-2023.log". Path is left empty.
func ParseName(name string) (*models.LogFile, bool) {
	m := monthlyName.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}

	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false
	}

	var period time.Time
	parsed := false
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, m[2]+" "+m[3]); err == nil {
			period, parsed = t, true
			break
		}
	}
	if !parsed {
		return nil, false
	}

	month := period.Month().String()
	return &models.LogFile{
		Name:   name,
		Label:  fmt.Sprintf("%s-%d", month, year),
		Month:  month,
		Year:   year,
		Period: period,
	}, true
}
