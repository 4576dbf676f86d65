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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"logsight/internal/analytics"
	"logsight/internal/ingestion"
	parsers "logsight/internal/parser"
	"logsight/internal/parser/useragent"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	inspectTop    int
	inspectColumn string
	inspectValue  string
	inspectHost   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Parse one access log and print its tables",
	Long: `Sniff and parse a single Common or Combined Log Format file and print the
ranked tables and per-day traffic. Exits with an error if the file is not an
access log.

Examples:
  logsight inspect access-October-2023.log
  logsight inspect access.log --top 20 --column host --value 10.0.0.1
  logsight inspect access.log --host 10.0.0.1`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectTop, "top", "n", 10, "rows per table")
	inspectCmd.Flags().StringVar(&inspectColumn, "column", "", "filter column (host, request, status, referrer, page, refDomain, ...)")
	inspectCmd.Flags().StringVar(&inspectValue, "value", "", "filter value")
	inspectCmd.Flags().StringVar(&inspectHost, "host", "", "describe the client behind one host")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	loader := ingestion.NewLoader(parsers.NewRegistry(logger), logger)
	log, err := loader.Load(path)
	if errors.Is(err, ingestion.ErrInvalidFormat) {
		pterm.Error.Printfln("%s is not a Common or Combined access log", filepath.Base(path))
		return err
	}
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println(filepath.Base(path))
	pterm.Info.Printfln("%s records, %s on disk, parsed in %s",
		humanize.Comma(int64(log.Len())),
		humanize.Bytes(uint64(info.Size())),
		log.ParseDuration().Round(time.Millisecond))

	filter := analytics.Filter{Column: inspectColumn, Value: inspectValue}
	if filter.Active() {
		pterm.Info.Printfln("Filtered on %s = %s", filter.Column, filter.Value)
	}

	tables := []struct {
		title string
		rows  []analytics.RankedRow
	}{
		{"Hosts", log.Hosts(inspectTop, filter)},
		{"Requests", log.Requests(inspectTop, filter)},
		{"Pages", log.Pages(inspectTop, filter)},
		{"Referrers", log.Referrers(inspectTop, filter)},
		{"Referring domains", log.RefDomains(inspectTop, filter)},
		{"Not found (404)", log.Errors(inspectTop, filter)},
	}
	for _, t := range tables {
		if err := renderRanked(t.title, t.rows); err != nil {
			return err
		}
	}

	if err := renderTraffic(log.Traffic(filter)); err != nil {
		return err
	}

	if inspectHost != "" {
		renderHost(log, inspectHost)
	}
	return nil
}

func renderRanked(title string, rows []analytics.RankedRow) error {
	pterm.DefaultSection.WithLevel(2).Println(title)
	if len(rows) == 0 {
		pterm.Println(pterm.Gray("  (none)"))
		return nil
	}

	data := pterm.TableData{{"#", "Value", "Count"}}
	for i, row := range rows {
		data = append(data, []string{fmt.Sprint(i + 1), row.Key, humanize.Comma(int64(row.Count))})
	}
	return pterm.DefaultTable.WithHasHeader().WithRightAlignment().WithData(data).Render()
}

func renderTraffic(points []analytics.TrafficPoint) error {
	pterm.DefaultSection.WithLevel(2).Println("Traffic")
	if len(points) == 0 {
		pterm.Println(pterm.Gray("  (none)"))
		return nil
	}

	data := pterm.TableData{{"Date", "Hits", "MB"}}
	for _, p := range points {
		data = append(data, []string{p.Date, humanize.Comma(int64(p.Hits)), p.Bandwidth})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderHost(log *analytics.Log, host string) {
	pterm.DefaultSection.WithLevel(2).Println("Host " + host)

	ua, ok := log.UserAgent(host)
	if !ok {
		pterm.Warning.Printfln("No user agent recorded for %s", host)
		return
	}
	pterm.Info.Println(ua)
	pterm.Info.Println(useragent.Parse(ua).String())
}
