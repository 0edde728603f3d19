package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"rejoin/internal/merge"
	"rejoin/internal/state"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "

	// Long ffmpeg or filesystem errors wrap instead of stretching the table.
	detailWidthMax = 60
	nameWidthMax   = 48
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newTable returns a rounded table writer with the given header.
func newTable(out io.Writer, headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	return tw
}

func printChains(out io.Writer, chains []state.Chain) {
	if len(chains) == 0 {
		fmt.Fprintln(out, "No chains found")
		return
	}
	tw := newTable(out, "#", "Files", "First", "Last", "Output")
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Name: "Files", Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Name: "Output", WidthMax: nameWidthMax, WidthMaxEnforcer: text.WrapHard},
	})
	for i, c := range chains {
		tw.AppendRow(table.Row{
			i + 1,
			len(c),
			filepath.Base(c.First()),
			filepath.Base(c.Last()),
			merge.OutputName(c),
		})
	}
	tw.AppendFooter(table.Row{"", totalFiles(chains)})
	tw.Render()
}

func totalFiles(chains []state.Chain) int {
	total := 0
	for _, c := range chains {
		total += len(c)
	}
	return total
}

func printMergeReport(out io.Writer, report merge.Report) {
	if len(report.Results) == 0 {
		return
	}
	tw := newTable(out, "Output", "Status", "Size", "Deleted", "Detail")
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Output", WidthMax: nameWidthMax, WidthMaxEnforcer: text.WrapHard},
		{Name: "Status", Transformer: statusTransformer(shouldColorize(out))},
		{Name: "Size", Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Name: "Deleted", Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Name: "Detail", WidthMax: detailWidthMax, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, res := range report.Results {
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		size := ""
		if res.Bytes > 0 {
			size = humanize.IBytes(uint64(res.Bytes))
		}
		tw.AppendRow(table.Row{
			filepath.Base(res.Output),
			res.Status,
			size,
			res.Deleted,
			detail,
		})
	}
	tw.Render()
	fmt.Fprintf(out, "Merged %d, skipped %d, failed %d\n", report.Merged(), report.Skipped(), report.Failed())
}

func statusTransformer(colorize bool) text.Transformer {
	return func(val any) string {
		status, ok := val.(merge.Status)
		if !ok {
			return fmt.Sprint(val)
		}
		if !colorize {
			return string(status)
		}
		return mergeStatusColor(status) + string(status) + ansiReset
	}
}

func mergeStatusColor(status merge.Status) string {
	switch status {
	case merge.StatusMerged:
		return ansiGreen
	case merge.StatusFailed:
		return ansiRed
	default:
		return ansiYellow
	}
}
