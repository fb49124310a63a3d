package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/batchconv/internal/charset"
	"github.com/pdiddy/batchconv/internal/history"
	"github.com/pdiddy/batchconv/pkg/types"
)

// newTable returns a rounded table with the given header. Columns listed in
// right (1-based) are right-aligned; headers always align left.
func newTable(header table.Row, right ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	configs := make([]table.ColumnConfig, 0, len(right))
	for _, n := range right {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// renderFailures lists failed files with their error messages.
func renderFailures(outcomes []types.Outcome) string {
	tw := newTable(table.Row{"File", "Error"})
	for _, o := range outcomes {
		tw.AppendRow(table.Row{o.Item.Path, o.Message})
	}
	return tw.Render()
}

// renderRuns summarizes recorded runs, most recent first.
func renderRuns(runs []types.RunResult) string {
	tw := newTable(table.Row{"Run", "Started", "Config", "Output", "Converted", "Failed", "Elapsed"}, 5, 6, 7)
	for _, r := range runs {
		elapsed := "-"
		if !r.Finished.IsZero() {
			elapsed = r.Elapsed().Round(time.Millisecond).String()
		}
		output := r.OutputDir
		if output == "" {
			output = "(in place)"
		}
		tw.AppendRow(table.Row{
			r.ID.String(),
			r.Started.Local().Format("2006-01-02 15:04:05"),
			r.ConfigID,
			output,
			r.Converted,
			r.Failed,
			elapsed,
		})
	}
	return tw.Render()
}

// renderEntries lists the per-file outcomes of one recorded run.
func renderEntries(entries []history.Entry) string {
	tw := newTable(table.Row{"File", "Status", "Charset", "ms", "Output / Error"}, 4)
	for _, e := range entries {
		status, detail := "ok", e.OutputPath
		if !e.Success {
			status, detail = "failed", e.Message
		}
		tw.AppendRow(table.Row{e.Path, status, e.Charset, e.Duration.Milliseconds(), detail})
	}
	return tw.Render()
}

// detection is one row of the detect command's output.
type detection struct {
	path string
	det  charset.Detection
	err  error
}

// renderDetections lists the detected charset of each file. Failed
// detections show the error in the note column.
func renderDetections(rows []detection) string {
	tw := newTable(table.Row{"File", "Charset", "Confidence", "Supported", "Note"}, 3)
	for _, d := range rows {
		if d.err != nil {
			tw.AppendRow(table.Row{d.path, "-", "-", "-", d.err.Error()})
			continue
		}
		tw.AppendRow(table.Row{
			d.path,
			charset.Canonical(d.det.Charset),
			fmt.Sprintf("%d%%", d.det.Confidence),
			yesNo(charset.Supported(d.det.Charset)),
			detectionNote(d.det),
		})
	}
	return tw.Render()
}

func detectionNote(d charset.Detection) string {
	switch {
	case d.BOM:
		return "byte-order mark"
	case charset.Recognized(d.Charset):
		return "legacy Chinese"
	default:
		return d.Language
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
