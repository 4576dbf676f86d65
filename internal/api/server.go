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
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"logsight/internal/api/handlers"
	"logsight/internal/enrichment"
	"logsight/internal/ingestion"
	"logsight/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// Config holds the HTTP server settings.
type Config struct {
	Port             int
	GinMode          string
	ProfilingEnabled bool
	// DefaultRows is the table size used when a request omits n.
	DefaultRows int
	// DatabasePath is reported by /api/system.
	DatabasePath string
}

// Server exposes the catalog and the per-log dashboards over HTTP.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *pterm.Logger

	dashboard *handlers.DashboardHandler
	system    *handlers.SystemHandler
	events    *handlers.EventsHandler
}

// NewServer builds the gin engine and registers every route.
func NewServer(
	cfg *Config,
	coordinator *ingestion.Coordinator,
	broadcaster *realtime.Broadcaster,
	locator *enrichment.HostLocator,
	logger *pterm.Logger,
) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:    engine,
		logger:    logger,
		dashboard: handlers.NewDashboardHandler(coordinator, locator, logger, cfg.DefaultRows),
		system:    handlers.NewSystemHandler(coordinator, broadcaster, locator, logger, cfg.DatabasePath),
		events:    handlers.NewEventsHandler(broadcaster, logger),
	}
	s.setupRoutes(cfg.ProfilingEnabled)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(profiling bool) {
	s.engine.GET("/healthz", s.system.Health)
	s.engine.GET("/ws", s.events.StreamEvents)

	api := s.engine.Group("/api")
	{
		api.GET("/system", s.system.GetSystemStats)

		logs := api.Group("/logs")
		logs.GET("", s.dashboard.ListLogs)
		logs.GET("/:name/overview", s.dashboard.GetOverview)
		logs.GET("/:name/tables/:section", s.dashboard.GetTable)
		logs.GET("/:name/traffic", s.dashboard.GetTraffic)
		logs.GET("/:name/hosts/:host", s.dashboard.GetHostDetail)
		logs.GET("/:name/sections/:section/detail", s.dashboard.GetSectionDetail)
		logs.POST("/:name/reload", s.dashboard.ReloadLog)
	}

	if profiling {
		s.logger.Warn("Profiling endpoints enabled under /debug/pprof")
		s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
		s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
		s.engine.GET("/debug/pprof/allocs", gin.WrapH(pprof.Handler("allocs")))
		s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
		s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", s.logger.Args("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs every request at debug level, server errors at warn.
func requestLogger(logger *pterm.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := logger.Args(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("HTTP request failed", args)
			return
		}
		logger.Debug("HTTP request", args)
	}
}
