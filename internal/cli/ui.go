package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kubetopo/pkg/diagram"
)

// stdout receives all human-facing output; logs go to the logger's writer.
var stdout io.Writer = os.Stdout

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorTeal).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	styleTableNumber = lipgloss.NewStyle().Foreground(colorTeal).Padding(0, 1).Align(lipgloss.Right)
)

// Status icons, each with its color.
var (
	iconSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	iconError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	iconWarning = lipgloss.NewStyle().Foreground(colorAmber).Render("!")
	iconInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	iconArrow   = styleDim.Render("→")
	separator   = styleDim.Render(" · ")

	badgeCached = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	badgeFresh  = lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
)

func status(icon, format string, args ...any) {
	fmt.Fprintln(stdout, icon+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(iconSuccess, format, args...) }
func printError(format string, args ...any)   { status(iconError, format, args...) }
func printInfo(format string, args ...any)    { status(iconInfo, format, args...) }

func printWarning(format string, args ...any) {
	status(iconWarning, "%s", styleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+iconArrow+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints node and edge counts on one line, plus the surviving
// count when grouping absorbed nodes.
func printStats(nodeCount, edgeCount, surviving int, cached bool) {
	fmt.Fprintln(stdout, "  "+statsLine(nodeCount, edgeCount, surviving, cached))
}

func statsLine(nodeCount, edgeCount, surviving int, cached bool) string {
	parts := []string{
		styleDim.Render(strconv.Itoa(nodeCount) + " nodes"),
		styleDim.Render(strconv.Itoa(edgeCount) + " edges"),
	}
	if surviving != nodeCount {
		parts = append(parts, styleDim.Render(strconv.Itoa(surviving)+" after grouping"))
	}
	if cached {
		parts = append(parts, badgeCached)
	} else {
		parts = append(parts, badgeFresh)
	}
	return strings.Join(parts, separator)
}

// sectionTable renders one row per section of d.
func sectionTable(d diagram.Diagram) string {
	rows := make([][]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		rows = append(rows, []string{
			s.Kind,
			s.Group,
			s.Primitive,
			strconv.Itoa(s.Nodes),
			strconv.Itoa(s.Edges),
			fmt.Sprintf("%.0fx%.0f", s.Width, s.Height),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("KIND", "GROUP", "PRIMITIVE", "NODES", "EDGES", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleTableHeader
			case col == 3 || col == 4:
				return styleTableNumber
			default:
				return styleTableCell
			}
		}).
		String()
}

func printSections(d diagram.Diagram) {
	if len(d.Sections) > 0 {
		fmt.Fprintln(stdout, sectionTable(d))
	}
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, styleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
