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
package database

import (
	"strings"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// indexDefinition describes one managed index on the catalog table.
type indexDefinition struct {
	Name string
	SQL  string
}

var expectedIndexes = []indexDefinition{
	{Name: "idx_log_files_period", SQL: `CREATE INDEX IF NOT EXISTS idx_log_files_period ON log_files(period, name)`},
	{Name: "idx_log_files_valid", SQL: `CREATE INDEX IF NOT EXISTS idx_log_files_valid ON log_files(valid, period)`},
}

// OptimizeDatabase reconciles the catalog indexes and refreshes planner
// statistics.
func OptimizeDatabase(db *gorm.DB, logger *pterm.Logger) error {
	logger.Debug("Applying database optimizations...")

	var journalMode string
	if err := db.Raw("PRAGMA journal_mode").Scan(&journalMode).Error; err != nil {
		logger.Debug("Failed to check journal mode", logger.Args("error", err))
	} else {
		logger.Trace("Database journal mode", logger.Args("mode", journalMode))
	}

	created, dropped, err := ensureIndexes(db, logger)
	if err != nil {
		return err
	}
	logger.Debug("Catalog indexes reconciled", logger.Args("created", created, "dropped", dropped))

	if err := db.Exec("PRAGMA optimize").Error; err != nil {
		logger.Debug("PRAGMA optimize failed", logger.Args("error", err))
	}

	return nil
}

// ensureIndexes drops unmanaged indexes on log_files and creates missing ones.
func ensureIndexes(db *gorm.DB, logger *pterm.Logger) (created int, dropped int, err error) {
	existing, err := fetchExistingIndexes(db)
	if err != nil {
		return 0, 0, err
	}

	expected := make(map[string]struct{}, len(expectedIndexes))
	for _, def := range expectedIndexes {
		expected[def.Name] = struct{}{}
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
		if _, ok := expected[name]; ok {
			continue
		}
		if err := db.Exec("DROP INDEX IF EXISTS " + name).Error; err != nil {
			logger.Warn("Failed to drop index", logger.Args("index", name, "error", err))
			continue
		}
		dropped++
	}

	for _, def := range expectedIndexes {
		if err := db.Exec(def.SQL).Error; err != nil {
			logger.Warn("Failed to create index", logger.Args("index", def.Name, "error", err))
			return created, dropped, err
		}
		if _, ok := existingSet[def.Name]; !ok {
			created++
		}
	}

	return created, dropped, nil
}

// fetchExistingIndexes lists explicit indexes; sqlite_* autoindexes back the
// primary key and are left alone.
func fetchExistingIndexes(db *gorm.DB) ([]string, error) {
	rows, err := db.Raw(`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='log_files' AND name NOT LIKE 'sqlite_%'`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}
