package clf

import (
	"strings"
	"testing"
)

func TestSniff(t *testing.T) {
	combined := `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 1024 "http://example.com/" "Mozilla/5.0"`
	common := `127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 1024`

	tests := []struct {
		name     string
		contents string
		want     bool
	}{
		{"combined", combined, true},
		{"common", common, true},
		{"combined followed by more lines", combined + "\n" + common + "\n", true},
		{"crlf line endings", common + "\r\n" + common, true},
		{"free text", "not a log line at all", false},
		{"empty", "", false},
		{"leading blank line", "\n" + combined, false},
		{"dash bytes", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 304 -`, false},
		{"only second line valid", "garbage\n" + combined, false},
		{"json", `{"level":"info","msg":"handled request"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.contents); got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSniff_OnlyInspectsWindow(t *testing.T) {
	// A first line longer than the window is cut, so the trailing fields are lost.
	long := `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /` + strings.Repeat("a", sniffWindow) + ` HTTP/1.1" 200 1024`
	if Sniff(long) {
		t.Error("Expected a first line longer than the sniff window to be rejected")
	}
}
