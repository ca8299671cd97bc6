package main

import (
	"fmt"
	"io"
	"strings"

	"dirsort/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("213")).
			Padding(0, 1)
)

func successText(s string) string { return successStyle.Render(s) }
func errorText(s string) string   { return errorStyle.Render(s) }
func warningText(s string) string { return warningStyle.Render(s) }
func headerText(s string) string  { return headerStyle.Render(s) }

// printSummary renders the run's counters in a box
func printSummary(w io.Writer, stats types.Statistics, dryRun bool) {
	title := "Organization summary"
	moved := "moved"
	if dryRun {
		title += " (dry run)"
		moved = "would move"
	}

	rows := []struct {
		label string
		value int
	}{
		{"Files processed", stats.FilesProcessed},
		{"Files " + moved, stats.FilesMoved},
		{"Files skipped", stats.FilesSkipped},
		{"Directories processed", stats.DirectoriesProcessed},
		{"Directories " + moved, stats.DirectoriesMoved},
		{"Directories skipped", stats.DirectoriesSkipped},
		{"Excluded", stats.Excluded},
		{"Errors", stats.Errors},
	}

	var b strings.Builder
	b.WriteString(headerText(title))
	for _, row := range rows {
		value := humanize.Comma(int64(row.value))
		if row.label == "Errors" && row.value > 0 {
			value = errorText(value)
		}
		fmt.Fprintf(&b, "\n%-24s %s", row.label+":", value)
	}

	fmt.Fprintln(w, boxStyle.Render(b.String()))
	if stats.Failed() {
		fmt.Fprintln(w, errorText("Finished with errors, see the log for details"))
	} else if dryRun {
		fmt.Fprintln(w, warningText("Dry run complete. No files were moved."))
	} else {
		fmt.Fprintln(w, successText("Organization complete."))
	}
}
