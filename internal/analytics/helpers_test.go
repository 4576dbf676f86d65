package analytics

import (
	"fmt"
	"strings"
	"testing"

	"logsight/internal/parser/clf"

	"github.com/pterm/pterm"
)

type entry struct {
	host, date, request, status, bytes, referrer, userAgent string
}

// combined renders an entry as a Combined Log Format line.
func (e entry) combined() string {
	date := e.date
	if date == "" {
		date = "10/Oct/2023:13:55:36"
	}
	status := e.status
	if status == "" {
		status = "200"
	}
	bytes := e.bytes
	if bytes == "" {
		bytes = "100"
	}
	return fmt.Sprintf(`%s - - [%s +0000] "GET %s HTTP/1.1" %s %s "%s" "%s"`,
		e.host, date, e.request, status, bytes, e.referrer, e.userAgent)
}

func repeat(e entry, n int) []entry {
	out := make([]entry, n)
	for i := range out {
		out[i] = e
	}
	return out
}

func buildLog(t *testing.T, entries ...[]entry) *Log {
	t.Helper()

	var sb strings.Builder
	for _, group := range entries {
		for _, e := range group {
			sb.WriteString(e.combined())
			sb.WriteByte('\n')
		}
	}

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	return Parse(sb.String(), clf.NewParser(logger), logger)
}

func keys(rows []RankedRow) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Key
	}
	return out
}

func countOf(rows []RankedRow, key string) (int, bool) {
	for _, row := range rows {
		if row.Key == key {
			return row.Count, true
		}
	}
	return 0, false
}
