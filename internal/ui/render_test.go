package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	output := RenderMarkdown("# Occurrence Search\n\n- Add contact\n", 80)
	assert.NotEmpty(t, output)
	assert.Contains(t, output, "Occurrence Search")
	assert.Contains(t, output, "Add contact")
}

func TestTable(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	defer lipgloss.SetColorProfile(termenv.TrueColor)

	out := Table([]string{"ID", "Name"}, [][]string{{"1", "BLAST"}, {"22", "Occurrence Search"}})
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "BLAST")
	assert.Contains(t, out, "Occurrence Search")
	assert.Contains(t, out, "╭", "rounded border")
}

func TestKeyValues(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	defer lipgloss.SetColorProfile(termenv.TrueColor)

	out := KeyValues([][2]string{{"ID", "4711"}, {"Version", "7"}})
	assert.Contains(t, out, "ID:      4711\n")
	assert.Contains(t, out, "Version: 7\n")
}
