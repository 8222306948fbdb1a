package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"svcwiki/internal/confluence"
	"svcwiki/internal/report"
)

// Options controls one run.
type Options struct {
	RunID string
	Space string
	// ParentTitle is the page the service pages live under. The index is
	// published with this title.
	ParentTitle string
	// IndexParentTitle is the page the index lives under.
	IndexParentTitle string
	// PageTitle returns the title of a service page.
	PageTitle func(id, name string) string

	Index      report.IndexOptions
	ExtraPages []report.IndexEntry

	UpdateServicePages bool
	DryRun             bool
	IndexOnly          bool

	// ConfirmIndex, when set, is asked before the index page is published.
	ConfirmIndex ConfirmFunc
}

// PageResult is the fate of one page in a run.
type PageResult struct {
	Title   string            `yaml:"title"`
	Service string            `yaml:"service,omitempty"`
	Action  confluence.Action `yaml:"action"`
	PageID  string            `yaml:"page_id,omitempty"`
	Level   *report.Level     `yaml:"level,omitempty"`
}

// Summary counts what a run did. On failure it holds the work done before the
// error.
type Summary struct {
	RunID    string                    `yaml:"run_id"`
	Services int                       `yaml:"services"`
	Included int                       `yaml:"included"`
	Excluded []string                  `yaml:"excluded,omitempty"`
	Failed   []string                  `yaml:"failed,omitempty"`
	Levels   map[report.Level]int      `yaml:"levels,omitempty"`
	Actions  map[confluence.Action]int `yaml:"actions,omitempty"`
	Pages    []PageResult              `yaml:"pages,omitempty"`
	Duration time.Duration             `yaml:"duration"`
}

func newSummary(runID string) *Summary {
	return &Summary{
		RunID:   runID,
		Levels:  make(map[report.Level]int),
		Actions: make(map[confluence.Action]int),
	}
}

func (s *Summary) addPage(p PageResult) {
	s.Pages = append(s.Pages, p)
	s.Actions[p.Action]++
}

// String formats the summary as a one-paragraph notification.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "svcwiki run %s: %d services, %d included, %d excluded", s.RunID, s.Services, s.Included, len(s.Excluded))
	if len(s.Failed) > 0 {
		fmt.Fprintf(&b, ", %d failed", len(s.Failed))
	}

	var parts []string
	for _, a := range []confluence.Action{confluence.ActionCreated, confluence.ActionUpdated, confluence.ActionUnchanged, confluence.ActionSkipped} {
		if n := s.Actions[a]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, a))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, "; pages: %s", strings.Join(parts, ", "))
	}
	if s.Duration > 0 {
		fmt.Fprintf(&b, " in %s", s.Duration.Round(time.Second))
	}
	return b.String()
}
