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
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"logsight/internal/enrichment"
	"logsight/internal/ingestion"
	"logsight/internal/realtime"
	"logsight/internal/version"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SystemHandler handles system statistics requests
type SystemHandler struct {
	coordinator *ingestion.Coordinator
	events      *realtime.Broadcaster
	locator     *enrichment.HostLocator
	logger      *pterm.Logger
	startTime   time.Time
	dbPath      string
}

// SystemStats holds process and catalog statistics
type SystemStats struct {
	// Process Info
	AppVersion    string  `json:"app_version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`
	GoVersion     string  `json:"go_version"`
	NumCPU        int     `json:"num_cpu"`
	NumGoroutines int     `json:"num_goroutines"`
	MemoryAlloc   string  `json:"memory_alloc"`
	MemorySys     string  `json:"memory_sys"`
	GCPauseMs     float64 `json:"gc_pause_ms"`

	// Catalog Info
	LogsCatalogued int    `json:"logs_catalogued"`
	LogsLoaded     int    `json:"logs_loaded"`
	LogsInvalid    int    `json:"logs_invalid"`
	TotalRecords   int    `json:"total_records"`
	TotalRecordsH  string `json:"total_records_human"`
	DatabasePath   string `json:"database_path"`
	DatabaseSize   string `json:"database_size"`

	// Enrichment and streaming
	GeoIPEnabled     bool  `json:"geoip_enabled"`
	GeoIPCacheSize   int   `json:"geoip_cache_size"`
	EventSubscribers int   `json:"event_subscribers"`
	EventsDropped    int64 `json:"events_dropped"`
}

// NewSystemHandler creates a new system handler. locator may be nil.
func NewSystemHandler(
	coordinator *ingestion.Coordinator,
	events *realtime.Broadcaster,
	locator *enrichment.HostLocator,
	logger *pterm.Logger,
	dbPath string,
) *SystemHandler {
	return &SystemHandler{
		coordinator: coordinator,
		events:      events,
		locator:     locator,
		logger:      logger,
		startTime:   time.Now(),
		dbPath:      dbPath,
	}
}

// GetSystemStats returns process and catalog statistics
func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.collectSystemStats())
}

// Health reports liveness.
func (h *SystemHandler) Health(c *gin.Context) {
	logs, records := h.coordinator.Totals()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  formatDuration(time.Since(h.startTime)),
		"logs":    logs,
		"records": records,
	})
}

// collectSystemStats gathers all system statistics
func (h *SystemHandler) collectSystemStats() *SystemStats {
	stats := &SystemStats{
		AppVersion:    version.Version,
		StartTime:     h.startTime.Format(time.RFC3339),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		DatabasePath:  h.dbPath,
	}

	uptime := time.Since(h.startTime)
	stats.UptimeSeconds = int64(uptime.Seconds())
	stats.Uptime = formatDuration(uptime)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryAlloc = humanize.IBytes(m.Alloc)
	stats.MemorySys = humanize.IBytes(m.Sys)
	stats.GCPauseMs = float64(m.PauseNs[(m.NumGC+255)%256]) / 1000000

	for _, s := range h.coordinator.Status() {
		stats.LogsCatalogued++
		if s.State == ingestion.StateInvalid {
			stats.LogsInvalid++
		}
	}
	stats.LogsLoaded, stats.TotalRecords = h.coordinator.Totals()
	stats.TotalRecordsH = humanize.Comma(int64(stats.TotalRecords))

	if h.dbPath != "" {
		if fileInfo, err := os.Stat(h.dbPath); err == nil {
			stats.DatabaseSize = humanize.IBytes(uint64(fileInfo.Size()))
		}
	}

	if h.locator != nil {
		stats.GeoIPEnabled = h.locator.Enabled()
		stats.GeoIPCacheSize = h.locator.CacheSize()
	}
	if h.events != nil {
		stats.EventSubscribers = h.events.Subscribers()
		stats.EventsDropped = h.events.Dropped()
	}

	return stats
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return formatPlural(days, "day", hours, "hour")
	}
	if hours > 0 {
		return formatPlural(hours, "hour", minutes, "minute")
	}
	if minutes > 0 {
		return formatPlural(minutes, "minute", seconds, "second")
	}
	return formatPlural(seconds, "second", 0, "")
}

// formatPlural formats numbers with proper pluralization
func formatPlural(n1 int, unit1 string, n2 int, unit2 string) string {
	result := formatSingle(n1, unit1)
	if n2 > 0 && unit2 != "" {
		result += ", " + formatSingle(n2, unit2)
	}
	return result
}

// formatSingle formats a single value with pluralization
func formatSingle(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

