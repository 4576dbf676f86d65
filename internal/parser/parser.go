package parsers

import (
	"logsight/internal/model"
)

// LogParser turns raw access log lines into records.
// Parse is best-effort and never fails on malformed lines; CanParse is the
// format gate and is given the head of a whole file.
type LogParser interface {
	Name() string
	Parse(line string) model.Record
	CanParse(sample string) bool
}
