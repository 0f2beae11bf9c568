// Package display renders CLI output: the driver capability table,
// dataset inspection reports, and conversion summaries.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/geoyogesh/GeoETL/pkg/drivers"
	"github.com/geoyogesh/GeoETL/pkg/ops"
)

var (
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// Drivers renders the driver capability table.
func Drivers(list []*drivers.Driver) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf("Available Drivers (%d total)", len(list))))

	rows := make([][5]string, 0, len(list)+1)
	rows = append(rows, [5]string{"Short Name", "Long Name", "Info", "Read", "Write"})
	for _, d := range list {
		rows = append(rows, [5]string{
			d.ShortName,
			d.LongName,
			d.Capabilities.Info.String(),
			d.Capabilities.Read.String(),
			d.Capabilities.Write.String(),
		})
	}

	widths := columnWidths(rows)
	for i, row := range rows {
		line := formatRow(row, widths)
		if i == 0 {
			b.WriteString(headerStyle.Render(line))
			b.WriteByte('\n')
			b.WriteString(mutedStyle.Render(strings.Repeat("─", len(line))))
		} else {
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DatasetInfo renders a dataset inspection report.
func DatasetInfo(info *ops.DatasetInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Dataset:"), titleStyle.Render(info.Dataset))
	fmt.Fprintf(&b, "%s %s (%s)\n", mutedStyle.Render("Driver:"), info.Driver, info.DriverLongName)
	if info.Files > 1 {
		fmt.Fprintf(&b, "%s %d\n", mutedStyle.Render("Files:"), info.Files)
	}

	if len(info.GeometryColumns) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Geometry Columns"))
		b.WriteString("\n")
		rows := [][5]string{{"Column", "Type", "Extension", "CRS", ""}}
		for _, g := range info.GeometryColumns {
			crs := g.CRS
			if crs == "" {
				crs = "N/A"
			}
			rows = append(rows, [5]string{g.Name, g.DataType, g.Extension, crs, ""})
		}
		writeRows(&b, rows)
	}

	if len(info.Fields) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Fields"))
		b.WriteString("\n")
		rows := [][5]string{{"Field", "Type", "Nullable", "", ""}}
		for _, f := range info.Fields {
			nullable := "No"
			if f.Nullable {
				nullable = "Yes"
			}
			rows = append(rows, [5]string{f.Name, f.DataType, nullable, "", ""})
		}
		writeRows(&b, rows)
	}
	return b.String()
}

// ConvertResult renders the post-conversion summary.
func ConvertResult(res *ops.ConvertResult, input, output string) string {
	var b strings.Builder
	b.WriteString(successStyle.Render("✓ Conversion completed"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s → %s\n", mutedStyle.Render("Dataset:"), input, output)
	fmt.Fprintf(&b, "  %s %d rows in %d batch(es)\n", mutedStyle.Render("Rows:"), res.Rows, res.Batches)
	fmt.Fprintf(&b, "  %s %s (%.0f rows/sec)\n", mutedStyle.Render("Duration:"), res.Duration.Round(time.Millisecond), res.Throughput)
	return b.String()
}

func columnWidths(rows [][5]string) [5]int {
	var widths [5]int
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func formatRow(row [5]string, widths [5]int) string {
	var cells []string
	for i, cell := range row {
		if widths[i] == 0 {
			continue
		}
		cells = append(cells, fmt.Sprintf("%-*s", widths[i], cell))
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

func writeRows(b *strings.Builder, rows [][5]string) {
	widths := columnWidths(rows)
	for i, row := range rows {
		line := formatRow(row, widths)
		if i == 0 {
			b.WriteString(headerStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
}
