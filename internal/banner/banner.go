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
package banner

import (
	"fmt"
	"strings"

	"logsight/internal/version"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

// Print writes the startup banner to the terminal.
func Print(logDir string, port int) {
	pterm.Println(Render(logDir, port))
}

// Render returns the banner: the logo, a version header and a box telling
// where logs are read from and where the dashboard is served.
func Render(logDir string, port int) string {
	logo, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Log", pterm.FgLightBlue.ToStyle()),
		putils.LettersFromStringWithStyle("Sight", pterm.FgGray.ToStyle())).
		Srender()

	header := pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgBlue)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Sprint("LogSight " + version.Version)

	details := strings.Join([]string{
		"Logs       " + logDir,
		fmt.Sprintf("Dashboard  http://localhost:%d/api/logs", port),
		"Formats    Common, Combined",
	}, "\n")
	box := pterm.DefaultBox.WithTitle("Access log dashboards").Sprint(details)

	var sb strings.Builder
	sb.WriteString(pterm.DefaultCenter.Sprint(logo))
	sb.WriteString("\n")
	sb.WriteString(pterm.DefaultCenter.Sprint(header))
	sb.WriteString("\n")
	sb.WriteString(box)
	return sb.String()
}
