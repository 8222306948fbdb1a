package report

import (
	"fmt"
	"sort"
	"strings"
)

// IndexEntry is one link on the index page.
type IndexEntry struct {
	Name  string // link text
	Title string // target page title
}

// IndexOptions configures the index page layout.
type IndexOptions struct {
	Columns    int
	FooterHTML string
}

// BuildIndex renders the index page: entries sorted case-insensitively by
// name, split over equal-width columns, each in a panel.
func BuildIndex(entries []IndexEntry, opts IndexOptions) (string, error) {
	var sectionType string
	switch opts.Columns {
	case 2:
		sectionType = "two_equal"
	case 3:
		sectionType = "three_equal"
	default:
		return "", fmt.Errorf("index columns must be 2 or 3, got %d", opts.Columns)
	}

	sorted := make([]IndexEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	var b strings.Builder
	b.WriteString("<ac:layout>")
	fmt.Fprintf(&b, "<ac:layout-section ac:type=%q>\n", sectionType)

	split := (len(sorted) + opts.Columns - 1) / opts.Columns
	if split == 0 {
		split = 1
	}
	cells := 0
	for i := 0; i < len(sorted); i += split {
		end := i + split
		if end > len(sorted) {
			end = len(sorted)
		}
		b.WriteString("<ac:layout-cell>")
		for _, e := range sorted[i:end] {
			b.WriteString(panel(indexPanel, "<p><b>"+pageLink(e.Title, e.Name)+"</b></p>"))
		}
		b.WriteString("</ac:layout-cell>\n")
		cells++
	}
	// A layout section must have as many cells as its type declares.
	for ; cells < opts.Columns; cells++ {
		b.WriteString("<ac:layout-cell></ac:layout-cell>\n")
	}
	b.WriteString("</ac:layout-section>\n")

	if opts.FooterHTML != "" {
		b.WriteString(`<ac:layout-section ac:type="single"><ac:layout-cell>`)
		b.WriteString(opts.FooterHTML)
		b.WriteString("</ac:layout-cell></ac:layout-section>\n")
	}
	b.WriteString("</ac:layout>\n")
	return b.String(), nil
}
