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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN keeps the catalog in a shared in-memory database.
const MemoryDSN = "file::memory:?cache=shared"

type Config struct {
	// Path of the sqlite file. Empty or MemoryDSN keeps the catalog in memory.
	Path         string
	MaxOpenConns int
	ConnMaxLife  time.Duration
	SlowQuery    time.Duration
}

// SlowQueryLogger routes gorm logging through pterm and flags slow queries.
type SlowQueryLogger struct {
	logger            *pterm.Logger
	slowThreshold     time.Duration
	logLevel          logger.LogLevel
	ignoreNotFoundErr bool
}

func NewSlowQueryLogger(ptermLogger *pterm.Logger, slowThreshold time.Duration) *SlowQueryLogger {
	return &SlowQueryLogger{
		logger:            ptermLogger,
		slowThreshold:     slowThreshold,
		logLevel:          logger.Warn,
		ignoreNotFoundErr: true,
	}
}

func (l *SlowQueryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *SlowQueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.logger.Info(msg, l.logger.Args("data", data))
	}
}

func (l *SlowQueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.logger.Warn(msg, l.logger.Args("data", data))
	}
}

func (l *SlowQueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.logger.Error(msg, l.logger.Args("data", data))
	}
}

func (l *SlowQueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if elapsed >= l.slowThreshold {
		l.logger.Debug("Slow catalog query",
			l.logger.Args(
				"duration_ms", elapsed.Milliseconds(),
				"rows", rows,
				"sql", sql,
			))
	} else if l.logLevel >= logger.Info {
		l.logger.Trace("Catalog query",
			l.logger.Args(
				"duration_ms", elapsed.Milliseconds(),
				"rows", rows,
				"sql", sql,
			))
	}

	if err != nil && (!l.ignoreNotFoundErr || !errors.Is(err, gorm.ErrRecordNotFound)) {
		l.logger.Error("Catalog query error",
			l.logger.Args(
				"error", err,
				"duration_ms", elapsed.Milliseconds(),
				"sql", sql,
			))
	}
}

// NewConnection opens the catalog database and migrates its schema.
func NewConnection(cfg *Config, logger *pterm.Logger) (*gorm.DB, error) {
	dsn, persistent := buildDSN(cfg.Path)

	if persistent {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
		logger.Debug("Opening catalog database", logger.Args("path", cfg.Path))
	} else {
		logger.Debug("Opening in-memory catalog database")
	}

	slowQuery := cfg.SlowQuery
	if slowQuery <= 0 {
		slowQuery = 100 * time.Millisecond
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewSlowQueryLogger(logger, slowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 4
	}
	if !persistent {
		// Every new connection to a private in-memory database would be empty.
		maxOpenConns = 1
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)

	logger.Trace("Running database migrations.")
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := OptimizeDatabase(db, logger); err != nil {
		logger.Warn("Database optimization had warnings", logger.Args("error", err))
	}

	logger.Info("Catalog database ready", logger.Args("persistent", persistent))
	return db, nil
}

// buildDSN adds WAL and busy-timeout pragmas to file databases.
func buildDSN(path string) (dsn string, persistent bool) {
	if path == "" {
		return MemoryDSN, false
	}
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return path, false
	}
	if strings.Contains(path, "?") {
		return path, true
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", true
}

// Close releases the catalog connections. Closing the last connection to a
// shared in-memory database discards it.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
