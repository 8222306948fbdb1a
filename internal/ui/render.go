package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"svcwiki/internal/report"
)

// RenderMarkdown renders Markdown for the terminal, falling back to the
// source text if the renderer cannot be built.
func RenderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

// Level renders a maturity level with its colour.
func Level(l report.Level) string {
	switch {
	case l == report.LevelBlocked:
		return blockedStyle.Render(l.String())
	case l == report.LevelCompliant:
		return compliantStyle.Render(l.String())
	default:
		return partialStyle.Render(l.String())
	}
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return cellStyle
		})
	return t.String()
}

// KeyValues renders aligned "key: value" lines.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "%s%s %s\n", keyStyle.Render(p[0]+":"), strings.Repeat(" ", width-len(p[0])), p[1])
	}
	return b.String()
}
