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
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logsight/internal/api"
	"logsight/internal/banner"
	"logsight/internal/database"
	"logsight/internal/database/repositories"
	"logsight/internal/discovery"
	"logsight/internal/enrichment"
	"logsight/internal/ingestion"
	parsers "logsight/internal/parser"
	"logsight/internal/realtime"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Catalog the log directory and serve the dashboard API",
	Long: `Discover every <name>-<Month>-<Year> log under LOG_DIR, parse them one at a
time (oldest first) and serve their tables and traffic over HTTP. With
WATCH_ENABLED the directory is watched and changed files are re-parsed.

Examples:
  logsight serve
  logsight serve --dir /var/log/apache2 --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides SERVER_PORT)")
	serveCmd.Flags().StringVarP(&serveDir, "dir", "d", "", "log directory (overrides LOG_DIR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("dir") {
		cfg.Logs.Dir = serveDir
	}

	banner.Print(cfg.Logs.Dir, cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openCatalog()
	if err != nil {
		return err
	}
	defer closeCatalog(db)

	repo := repositories.NewLogFileRepository(db)
	engine := discovery.NewEngine(repo, logger,
		discovery.NewMonthlyDetector(cfg.Logs.Dir, cfg.Logs.Pattern, logger))

	rescan := func() error {
		if _, err := database.PruneMissing(db, logger); err != nil {
			return err
		}
		_, err := engine.Run()
		return err
	}
	if err := rescan(); err != nil {
		return fmt.Errorf("initial discovery failed: %w", err)
	}

	events := realtime.NewBroadcaster(logger)
	defer events.Close()

	locator := enrichment.NewHostLocator(enrichment.Config{
		CityDB:    cfg.GeoIP.CityDB,
		CountryDB: cfg.GeoIP.CountryDB,
		ASNDB:     cfg.GeoIP.ASNDB,
		CacheSize: cfg.GeoIP.CacheSize,
	}, logger)
	defer locator.Close()

	loader := ingestion.NewLoader(parsers.NewRegistry(logger), logger)
	coordinator := ingestion.NewCoordinator(repo, loader, events, logger, rescan)

	go func() {
		if err := coordinator.LoadAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithCaller().Error("Initial load failed", logger.Args("error", err))
		}
	}()

	if cfg.Logs.WatchEnabled {
		watcher, err := ingestion.NewFileWatcher(cfg.Logs.Dir, cfg.Logs.WatchDebounce, logger)
		if err != nil {
			logger.Warn("File watching disabled", logger.Args("dir", cfg.Logs.Dir, "error", err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx, coordinator)
			go func() {
				for err := range watcher.Errors() {
					logger.Debug("Watcher error received", logger.Args("error", err))
				}
			}()
		}
	}

	server := api.NewServer(&api.Config{
		Port:             cfg.Server.Port,
		GinMode:          cfg.Server.GinMode,
		ProfilingEnabled: cfg.Profiling,
		DefaultRows:      cfg.Logs.TopN,
		DatabasePath:     cfg.Database.Path,
	}, coordinator, events, locator, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server did not shut down cleanly", logger.Args("error", err))
	}

	logger.Info("LogSight stopped")
	return nil
}

func openCatalog() (*gorm.DB, error) {
	return database.NewConnection(&database.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		ConnMaxLife:  cfg.Database.ConnMaxLife,
		SlowQuery:    cfg.Database.SlowQuery,
	}, logger)
}

func closeCatalog(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		logger.Debug("Failed to close catalog database", logger.Args("error", err))
	}
}
