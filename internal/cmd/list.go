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
	"encoding/json"
	"os"

	"logsight/internal/database"
	"logsight/internal/database/repositories"
	"logsight/internal/discovery"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	listDir  string
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Discover log files and print the catalog",
	Long: `Scan LOG_DIR for <name>-<Month>-<Year> files and print them oldest first.
With --json the catalog is written in the dashboard listing format.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listDir, "dir", "d", "", "log directory (overrides LOG_DIR)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the listing as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("dir") {
		cfg.Logs.Dir = listDir
	}

	db, err := openCatalog()
	if err != nil {
		return err
	}
	defer closeCatalog(db)

	if _, err := database.PruneMissing(db, logger); err != nil {
		return err
	}

	repo := repositories.NewLogFileRepository(db)
	engine := discovery.NewEngine(repo, logger,
		discovery.NewMonthlyDetector(cfg.Logs.Dir, cfg.Logs.Pattern, logger))
	if _, err := engine.Run(); err != nil {
		return err
	}

	if listJSON {
		listing, err := engine.Listing()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}

	files, err := repo.FindAll()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		pterm.Warning.Printfln("No logs found under %s matching %s", cfg.Logs.Dir, cfg.Logs.Pattern)
		return nil
	}

	data := pterm.TableData{{"Name", "Period", "Size", "Records", "Last parsed"}}
	for _, f := range files {
		size := "-"
		if info, err := os.Stat(f.Path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		records, parsed := "-", "never"
		if f.LastParsedAt != nil {
			records = humanize.Comma(int64(f.Records))
			parsed = humanize.Time(*f.LastParsedAt)
		}
		data = append(data, []string{f.Name, f.Label, size, records, parsed})
	}

	pterm.Info.Printfln("%d log(s) under %s", len(files), cfg.Logs.Dir)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
