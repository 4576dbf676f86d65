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
	"errors"
	"fmt"

	"logsight/internal/database/models"
	"logsight/internal/database/repositories"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// Detector finds candidate log files.
type Detector interface {
	Name() string
	Detect() ([]*models.LogFile, error)
}

// Engine registers the files found by its detectors in the catalog.
type Engine struct {
	repo      repositories.LogFileRepository
	detectors []Detector
	logger    *pterm.Logger
}

func NewEngine(repo repositories.LogFileRepository, logger *pterm.Logger, detectors ...Detector) *Engine {
	return &Engine{
		repo:      repo,
		detectors: detectors,
		logger:    logger,
	}
}

// Run executes every detector and returns the names of newly catalogued
// files. A file that moved keeps its catalog entry with the new path.
func (e *Engine) Run() ([]string, error) {
	e.logger.Debug("Starting discovery...")

	var added []string
	for _, detector := range e.detectors {
		files, err := detector.Detect()
		e.logger.Trace("Detector executed.", e.logger.Args("name", detector.Name(), "found", len(files)))
		if err != nil {
			e.logger.WithCaller().Warn("Detection failed", e.logger.Args("detector", detector.Name(), "error", err))
			continue
		}

		for _, file := range files {
			isNew, err := e.register(file)
			if err != nil {
				return added, err
			}
			if isNew {
				added = append(added, file.Name)
			}
		}
	}

	e.logger.Debug("Discovery completed", e.logger.Args("added", len(added)))
	return added, nil
}

func (e *Engine) register(file *models.LogFile) (bool, error) {
	existing, err := e.repo.FindByName(file.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up %s: %w", file.Name, err)
	}

	if existing == nil {
		if err := e.repo.Create(file); err != nil {
			return false, fmt.Errorf("failed to register %s: %w", file.Name, err)
		}
		e.logger.Info("Registered new log file.", e.logger.Args("name", file.Name, "path", file.Path))
		return true, nil
	}

	if existing.Path != file.Path {
		e.logger.Debug("Log file moved", e.logger.Args("name", file.Name, "from", existing.Path, "to", file.Path))
		existing.Path = file.Path
		if err := e.repo.Update(existing); err != nil {
			return false, fmt.Errorf("failed to update %s: %w", file.Name, err)
		}
	}
	return false, nil
}

// Listing returns the catalog in the companion logs.json shape.
func (e *Engine) Listing() (*Listing, error) {
	files, err := e.repo.FindAll()
	if err != nil {
		return nil, err
	}
	return NewListing(files), nil
}
