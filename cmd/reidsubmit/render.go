package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"reidsubmit/internal/history"
	"reidsubmit/internal/services/reidhota"
	"reidsubmit/internal/submission"
)

// printer formats counts with digit grouping for the human-facing
// summaries.
var printer = message.NewPrinter(language.English)

// writeJSON is the machine-readable sibling of the render functions: every
// command with a --json flag emits its report through it.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderReport prints the validation outcome: a summary line on success, a
// violation table plus summary on failure.
func renderReport(w io.Writer, report *submission.Report) {
	if report.OK() {
		printer.Fprintf(w, "Validation passed: %d file(s), %d record(s), dataset %s, task mode %s\n",
			report.Files, report.Records, report.Dataset, report.TaskMode)
		return
	}

	rows := make([][]string, 0, len(report.Violations))
	for _, violation := range report.Violations {
		row := ""
		if violation.Row != submission.FileLevelRow {
			row = strconv.Itoa(violation.Row)
		}
		rows = append(rows, []string{
			violation.File,
			row,
			violation.Field,
			string(violation.Kind),
			violation.Message,
		})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"File", "Row", "Field", "Kind", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
	printer.Fprintf(w, "Validation failed: %d violation(s) across %d file(s)\n",
		len(report.Violations), report.Files)
}

// renderMetrics prints the scoring report as shown on the leaderboard.
func renderMetrics(w io.Writer, report *reidhota.Report) {
	rows := [][]string{
		{"iou_HOTA", formatMetric(report.IOUHOTA)},
		{"iou_IDF1", formatMetric(report.IOUIDF1)},
		{"latlon_HOTA", formatMetric(report.LatLonHOTA)},
		{"latlon_IDF1", formatMetric(report.LatLonIDF1)},
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"Metric", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
	if !report.LatLonScored {
		fmt.Fprintln(w, "lat/long metrics were not computed (no geolocation values in the submission)")
	}
}

// renderRuns prints the packaging history.
func renderRuns(w io.Writer, runs []history.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Dataset,
			run.Submission,
			string(run.Outcome),
			strconv.Itoa(run.Files),
			strconv.Itoa(run.Violations),
			shortSHA(run.ArchiveSHA),
		})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"When", "Dataset", "Name", "Outcome", "Files", "Violations", "SHA256"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
