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
package ingestion

import (
	"errors"
	"fmt"
	"os"

	"logsight/internal/analytics"
	parsers "logsight/internal/parser"

	"github.com/pterm/pterm"
)

var (
	// ErrInvalidFormat means no registered parser accepts the file.
	ErrInvalidFormat = errors.New("unsupported log format")
	// ErrNotLoaded means the log is catalogued but not parsed yet.
	ErrNotLoaded = errors.New("log not loaded yet")
	// ErrUnknownLog means the name is not in the catalog.
	ErrUnknownLog = errors.New("unknown log")
	// ErrLoadFailed means the file could not be read.
	ErrLoadFailed = errors.New("log failed to load")
)

// Loader reads a whole log file and turns it into an analytics.Log.
type Loader struct {
	registry *parsers.Registry
	logger   *pterm.Logger
}

func NewLoader(registry *parsers.Registry, logger *pterm.Logger) *Loader {
	return &Loader{
		registry: registry,
		logger:   logger,
	}
}

// Load reads path, picks a parser by sniffing the head of the file and
// parses every line. Files no parser accepts return ErrInvalidFormat
// without being parsed.
func (l *Loader) Load(path string) (*analytics.Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return l.Parse(string(data), path)
}

// Parse is Load for contents already in memory; name is only logged.
func (l *Loader) Parse(contents, name string) (*analytics.Log, error) {
	parser, ok := l.registry.Detect(contents)
	if !ok {
		l.logger.Warn("Log format not recognised, skipping parse", l.logger.Args("log", name))
		return nil, ErrInvalidFormat
	}

	log := analytics.Parse(contents, parser, l.logger)

	l.logger.Debug("Log loaded",
		l.logger.Args(
			"log", name,
			"parser", parser.Name(),
			"records", log.Len(),
			"parse_ms", log.ParseDuration().Milliseconds(),
		))
	return log, nil
}
