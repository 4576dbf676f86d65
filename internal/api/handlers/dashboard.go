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
	"errors"
	"net/http"
	"strconv"

	"logsight/internal/analytics"
	"logsight/internal/enrichment"
	"logsight/internal/ingestion"
	"logsight/internal/parser/useragent"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	// MaxTableRows caps the n query parameter.
	MaxTableRows = 1000
	// DetailRows is the size of the drill-down tables.
	DetailRows = 1000
)

type ranker func(l *analytics.Log, n int, f analytics.Filter) []analytics.RankedRow

type section struct {
	rank ranker
	// column is the filter column used when drilling into one row.
	column string
}

var sections = map[string]section{
	"hosts":      {rank: (*analytics.Log).Hosts, column: "host"},
	"requests":   {rank: (*analytics.Log).Requests, column: "request"},
	"pages":      {rank: (*analytics.Log).Pages, column: analytics.ColumnPage},
	"ref":        {rank: (*analytics.Log).Referrers, column: "referrer"},
	"refdomains": {rank: (*analytics.Log).RefDomains, column: analytics.ColumnRefDomain},
	"errors":     {rank: (*analytics.Log).Errors, column: "request"},
}

// DashboardHandler serves the per-log tables, traffic and drill-downs.
type DashboardHandler struct {
	coordinator *ingestion.Coordinator
	locator     *enrichment.HostLocator
	logger      *pterm.Logger
	defaultRows int
}

// NewDashboardHandler creates a dashboard handler. locator may be nil.
func NewDashboardHandler(coordinator *ingestion.Coordinator, locator *enrichment.HostLocator, logger *pterm.Logger, defaultRows int) *DashboardHandler {
	if defaultRows <= 0 {
		defaultRows = analytics.DefaultTopN
	}
	return &DashboardHandler{
		coordinator: coordinator,
		locator:     locator,
		logger:      logger,
		defaultRows: defaultRows,
	}
}

// ListLogs returns the catalog oldest first.
func (h *DashboardHandler) ListLogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"files": h.coordinator.Status()})
}

// GetOverview returns the cached unfiltered tables and traffic of a log.
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	log, ok := h.getLog(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"log":      c.Param("name"),
		"records":  log.Len(),
		"overview": log.Overview(),
	})
}

// GetTable returns one ranked table, optionally filtered by ?column=&value=.
func (h *DashboardHandler) GetTable(c *gin.Context) {
	sec, ok := h.getSection(c)
	if !ok {
		return
	}
	log, ok := h.getLog(c)
	if !ok {
		return
	}

	n := h.rowsParam(c)
	filter := filterParam(c)

	c.JSON(http.StatusOK, gin.H{
		"section": c.Param("section"),
		"column":  filter.Column,
		"value":   filter.Value,
		"rows":    sec.rank(log, n, filter),
	})
}

// GetTraffic returns the per-day traffic series, optionally filtered.
func (h *DashboardHandler) GetTraffic(c *gin.Context) {
	log, ok := h.getLog(c)
	if !ok {
		return
	}

	filter := filterParam(c)
	c.JSON(http.StatusOK, gin.H{
		"column":  filter.Column,
		"value":   filter.Value,
		"traffic": log.Traffic(filter),
	})
}

// GetHostDetail describes one client host: its user agent, location, the
// requests it made and its traffic.
func (h *DashboardHandler) GetHostDetail(c *gin.Context) {
	log, ok := h.getLog(c)
	if !ok {
		return
	}

	host := c.Param("host")
	filter := analytics.Filter{Column: "host", Value: host}

	response := gin.H{
		"host":     host,
		"requests": log.Requests(DetailRows, filter),
		"traffic":  log.Traffic(filter),
	}

	if ua, found := log.UserAgent(host); found {
		response["user_agent"] = ua
		response["client"] = useragent.Parse(ua)
	}

	if h.locator != nil {
		if loc, found := h.locator.Lookup(host); found {
			response["location"] = loc
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetSectionDetail returns the hosts behind one row of a table and their
// traffic.
func (h *DashboardHandler) GetSectionDetail(c *gin.Context) {
	sec, ok := h.getSection(c)
	if !ok {
		return
	}
	if c.Param("section") == "hosts" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "use /hosts/:host for host details"})
		return
	}

	value := c.Query("value")
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	log, ok := h.getLog(c)
	if !ok {
		return
	}

	filter := analytics.Filter{Column: sec.column, Value: value}
	c.JSON(http.StatusOK, gin.H{
		"section": c.Param("section"),
		"column":  filter.Column,
		"value":   value,
		"hosts":   log.Hosts(DetailRows, filter),
		"traffic": log.Traffic(filter),
	})
}

// ReloadLog re-reads and re-parses a log file.
func (h *DashboardHandler) ReloadLog(c *gin.Context) {
	name := c.Param("name")

	err := h.coordinator.Reload(c.Request.Context(), name)
	if err != nil {
		h.writeLogError(c, name, err)
		return
	}

	log, err := h.coordinator.Get(name)
	if err != nil {
		h.writeLogError(c, name, err)
		return
	}

	h.logger.Info("Log reloaded via API", h.logger.Args("log", name, "records", log.Len()))
	c.JSON(http.StatusOK, gin.H{
		"log":      name,
		"records":  log.Len(),
		"parse_ms": log.ParseDuration().Milliseconds(),
	})
}

func (h *DashboardHandler) getLog(c *gin.Context) (*analytics.Log, bool) {
	name := c.Param("name")
	log, err := h.coordinator.Get(name)
	if err != nil {
		h.writeLogError(c, name, err)
		return nil, false
	}
	return log, true
}

func (h *DashboardHandler) getSection(c *gin.Context) (section, bool) {
	sec, ok := sections[c.Param("section")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown section: " + c.Param("section")})
	}
	return sec, ok
}

func (h *DashboardHandler) writeLogError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, ingestion.ErrUnknownLog):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown log: " + name})
	case errors.Is(err, ingestion.ErrNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "log is still loading: " + name})
	case errors.Is(err, ingestion.ErrInvalidFormat):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not a Common or Combined access log: " + name})
	default:
		h.logger.WithCaller().Error("Failed to serve log", h.logger.Args("log", name, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load log: " + name})
	}
}

// rowsParam reads ?n=, falling back to the default and capping at MaxTableRows.
func (h *DashboardHandler) rowsParam(c *gin.Context) int {
	n := h.defaultRows
	if raw := c.Query("n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			n = v
		}
	}
	if n > MaxTableRows {
		n = MaxTableRows
	}
	return n
}

func filterParam(c *gin.Context) analytics.Filter {
	return analytics.Filter{Column: c.Query("column"), Value: c.Query("value")}
}
